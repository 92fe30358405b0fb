package entity

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"opsdeck.io/internal/gateway"
	"opsdeck.io/internal/notify"
	"opsdeck.io/internal/session"
)

// End-to-end wiring over a fake API: real gateway, real session, real
// stores, only the server is canned.

func newConsole(t *testing.T, handler http.Handler) (*session.Session, *Registry, *notify.Bus, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	bus := notify.New()
	sess := session.New(context.Background(), session.NewMemoryStore(), nil)
	gw := gateway.New(srv.URL, sess, bus, gateway.WithAuthExpiredHook(sess.ForceExpire))
	sess.AttachGateway(gw)
	return sess, NewRegistry(gw), bus, srv.Close
}

const integrationLogin = `{
	"token": "T1",
	"user": {"id": 7, "name": "Ana", "email": "a@b.com", "permissions": ["view contracts", "delete contracts"]}
}`

func TestExpiryDuringDeleteClearsSessionAndKeepsList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, integrationLogin)
	})
	mux.HandleFunc("GET /contracts", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data": [{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]}`)
	})
	mux.HandleFunc("DELETE /contracts/2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	sess, reg, bus, done := newConsole(t, mux)
	defer done()
	ctx := context.Background()

	if err := sess.Login(ctx, "a@b.com", "x"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := reg.Contracts.FetchAll(ctx); err != nil {
		t.Fatalf("fetch contracts: %v", err)
	}

	err := reg.Contracts.Delete(ctx, 2)
	if err != gateway.ErrAuthExpired {
		t.Fatalf("err = %v, want ErrAuthExpired", err)
	}
	// The expiry wins: session cleared, list untouched, one toast.
	if sess.State() != session.StateAnonymous {
		t.Fatalf("state = %v, want anonymous", sess.State())
	}
	if items := reg.Contracts.Items(); len(items) != 2 {
		t.Fatalf("list mutated despite failed delete: %+v", items)
	}
	recent := bus.Recent()
	if len(recent) != 1 || !strings.Contains(recent[0].Message, "Session expired") {
		t.Fatalf("notices = %+v", recent)
	}
}

func TestMultipartCompanyCreateRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, integrationLogin)
	})
	mux.HandleFunc("POST /companies", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("name") != "Acme" {
			http.Error(w, "missing name", http.StatusUnprocessableEntity)
			return
		}
		file, header, err := r.FormFile("logo")
		if err != nil {
			http.Error(w, "missing logo", http.StatusUnprocessableEntity)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		if header.Filename != "logo.png" || string(content) != "PNGBYTES" {
			http.Error(w, "bad upload", http.StatusUnprocessableEntity)
			return
		}
		io.WriteString(w, `{"company": {"id": 11, "name": "Acme", "email": "hq@acme.io", "logo": "/logos/11.png"}}`)
	})
	sess, reg, _, done := newConsole(t, mux)
	defer done()
	ctx := context.Background()

	if err := sess.Login(ctx, "a@b.com", "x"); err != nil {
		t.Fatalf("login: %v", err)
	}
	form, err := CompanyInput{
		Name:     "Acme",
		Email:    "hq@acme.io",
		LogoName: "logo.png",
		Logo:     strings.NewReader("PNGBYTES"),
	}.Form()
	if err != nil {
		t.Fatalf("form: %v", err)
	}

	rec, err := reg.Companies.Create(ctx, form)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != 11 || rec.Logo != "/logos/11.png" {
		t.Fatalf("created company = %+v", rec)
	}
	if items := reg.Companies.Items(); len(items) != 1 || items[0].ID != 11 {
		t.Fatalf("server record not appended: %+v", items)
	}
}
