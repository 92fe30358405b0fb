package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"opsdeck.io/internal/gateway"
)

type widget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (w widget) RecordID() int { return w.ID }

var widgetConfig = Config{
	Name:     "widgets",
	Path:     "/widgets",
	ListKeys: []string{"widgets", "data"},
	ItemKeys: []string{"widget", "data"},
}

type stubDoer struct {
	mu    sync.Mutex
	calls []string
	reply func(method, path string, body any) (json.RawMessage, error)
}

func (d *stubDoer) Do(_ context.Context, method, path string, body any) (json.RawMessage, error) {
	d.mu.Lock()
	d.calls = append(d.calls, method+" "+path)
	d.mu.Unlock()
	return d.reply(method, path, body)
}

func (d *stubDoer) DoForm(ctx context.Context, method, path string, form *gateway.Form) (json.RawMessage, error) {
	return d.Do(ctx, method, path, form)
}

func (d *stubDoer) callList() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

func TestFetchAllPreservesServerOrder(t *testing.T) {
	doer := &stubDoer{reply: func(string, string, any) (json.RawMessage, error) {
		return json.RawMessage(`{"widgets": [{"id": 3, "name": "c"}, {"id": 1, "name": "a"}, {"id": 2, "name": "b"}]}`), nil
	}}
	s := New[widget](doer, widgetConfig)

	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	items := s.Items()
	if len(items) != 3 || items[0].ID != 3 || items[1].ID != 1 || items[2].ID != 2 {
		t.Fatalf("order not preserved: %+v", items)
	}
	if st, _ := s.Status(); st != StatusIdle {
		t.Fatalf("status = %v, want idle", st)
	}
}

func TestFetchAllFailureSetsErrorAndKeepsStale(t *testing.T) {
	fail := false
	doer := &stubDoer{reply: func(string, string, any) (json.RawMessage, error) {
		if fail {
			return nil, &gateway.ServerError{Status: 500}
		}
		return json.RawMessage(`{"widgets": [{"id": 1, "name": "a"}]}`), nil
	}}
	s := New[widget](doer, widgetConfig)
	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	fail = true
	if err := s.FetchAll(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
	st, msg := s.Status()
	if st != StatusError {
		t.Fatalf("status = %v, want error", st)
	}
	if msg == "" {
		t.Fatal("error status carries no message")
	}
	// Stale data stays readable alongside the error.
	if items := s.Items(); len(items) != 1 {
		t.Fatalf("stale list dropped: %+v", items)
	}
}

func TestCreateAppendsServerRecord(t *testing.T) {
	doer := &stubDoer{reply: func(method, path string, body any) (json.RawMessage, error) {
		if method == "POST" {
			// Server computes the id; the response, not the input, is appended.
			return json.RawMessage(`{"widget": {"id": 42, "name": "fresh"}}`), nil
		}
		return json.RawMessage(`{"widgets": [{"id": 1, "name": "a"}]}`), nil
	}}
	s := New[widget](doer, widgetConfig)
	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	rec, err := s.Create(context.Background(), map[string]string{"name": "fresh"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != 42 {
		t.Fatalf("created id = %d, want 42", rec.ID)
	}
	items := s.Items()
	if len(items) != 2 || items[1].ID != 42 {
		t.Fatalf("record not appended: %+v", items)
	}
	if st, _ := s.Status(); st != StatusIdle {
		t.Fatalf("create must not toggle status, got %v", st)
	}
}

func TestCreateFailureLeavesListUntouched(t *testing.T) {
	doer := &stubDoer{reply: func(method, _ string, _ any) (json.RawMessage, error) {
		if method == "POST" {
			return nil, &gateway.ValidationError{Message: "The name field is required.",
				Fields: map[string][]string{"name": {"The name field is required."}}}
		}
		return json.RawMessage(`{"widgets": [{"id": 1, "name": "a"}]}`), nil
	}}
	s := New[widget](doer, widgetConfig)
	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	_, err := s.Create(context.Background(), map[string]string{})
	var verr *gateway.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(verr.Fields["name"]) != 1 {
		t.Fatalf("field errors = %+v", verr.Fields)
	}
	if items := s.Items(); len(items) != 1 {
		t.Fatalf("failed create mutated the list: %+v", items)
	}
}

func TestUpdateReplacesListAndDetailTogether(t *testing.T) {
	doer := &stubDoer{reply: func(method, path string, body any) (json.RawMessage, error) {
		switch {
		case method == "GET" && path == "/widgets":
			return json.RawMessage(`{"widgets": [{"id": 1, "name": "old"}, {"id": 2, "name": "b"}]}`), nil
		case method == "GET" && path == "/widgets/1":
			return json.RawMessage(`{"widget": {"id": 1, "name": "old"}}`), nil
		case method == "PUT" && path == "/widgets/1":
			return json.RawMessage(`{"widget": {"id": 1, "name": "new"}}`), nil
		}
		return nil, fmt.Errorf("unexpected call %s %s", method, path)
	}}
	s := New[widget](doer, widgetConfig)
	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if _, err := s.FetchOne(context.Background(), 1); err != nil {
		t.Fatalf("fetch one: %v", err)
	}

	if _, err := s.Update(context.Background(), 1, map[string]string{"name": "new"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if items := s.Items(); items[0].Name != "new" {
		t.Fatalf("list copy not updated: %+v", items)
	}
	detail, ok := s.Detail()
	if !ok || detail.Name != "new" {
		t.Fatalf("detail copy not updated: %+v ok=%v", detail, ok)
	}
}

func TestDeleteRemovesAndClearsMatchingDetail(t *testing.T) {
	doer := &stubDoer{reply: func(method, path string, body any) (json.RawMessage, error) {
		switch {
		case method == "GET" && path == "/widgets":
			return json.RawMessage(`{"widgets": [{"id": 1, "name": "a"}, {"id": 2, "name": "b"}]}`), nil
		case method == "GET" && path == "/widgets/2":
			return json.RawMessage(`{"widget": {"id": 2, "name": "b"}}`), nil
		case method == "DELETE":
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected call %s %s", method, path)
	}}
	s := New[widget](doer, widgetConfig)
	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if _, err := s.FetchOne(context.Background(), 2); err != nil {
		t.Fatalf("fetch one: %v", err)
	}

	if err := s.Delete(context.Background(), 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items := s.Items()
	if len(items) != 1 || items[0].ID != 1 {
		t.Fatalf("list after delete: %+v", items)
	}
	if _, ok := s.Detail(); ok {
		t.Fatal("matching detail must be cleared on delete")
	}

	// Deleting an already-absent record is a no-op, not a failure.
	if err := s.Delete(context.Background(), 2); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestDeleteKeepsUnrelatedDetail(t *testing.T) {
	doer := &stubDoer{reply: func(method, path string, body any) (json.RawMessage, error) {
		switch {
		case method == "GET" && path == "/widgets":
			return json.RawMessage(`{"widgets": [{"id": 1, "name": "a"}, {"id": 2, "name": "b"}]}`), nil
		case method == "GET" && path == "/widgets/1":
			return json.RawMessage(`{"widget": {"id": 1, "name": "a"}}`), nil
		case method == "DELETE":
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected call %s %s", method, path)
	}}
	s := New[widget](doer, widgetConfig)
	s.FetchAll(context.Background())
	s.FetchOne(context.Background(), 1)

	if err := s.Delete(context.Background(), 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if detail, ok := s.Detail(); !ok || detail.ID != 1 {
		t.Fatal("unrelated detail must survive a delete")
	}
}

func TestMultipartPayloadRoutesThroughForm(t *testing.T) {
	var sawForm bool
	doer := &stubDoer{reply: func(method, path string, body any) (json.RawMessage, error) {
		if _, ok := body.(*gateway.Form); ok {
			sawForm = true
		}
		return json.RawMessage(`{"widget": {"id": 9, "name": "f"}}`), nil
	}}
	s := New[widget](doer, widgetConfig)

	form := gateway.NewForm()
	form.Set("name", "f")
	if _, err := s.Create(context.Background(), form); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !sawForm {
		t.Fatal("form payload did not route through DoForm")
	}
}

func TestUnwrapVariants(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"named key", `{"widgets": [{"id": 1}]}`, 1},
		{"data key", `{"data": [{"id": 1}, {"id": 2}]}`, 2},
		{"nested data", `{"data": {"data": [{"id": 1}]}}`, 1},
		{"bare array", `[{"id": 1}, {"id": 2}, {"id": 3}]`, 3},
		{"empty body", ``, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := UnwrapList[widget](json.RawMessage(tc.raw), widgetConfig.ListKeys)
			if err != nil {
				t.Fatalf("unwrap: %v", err)
			}
			if len(items) != tc.want {
				t.Fatalf("len = %d, want %d", len(items), tc.want)
			}
		})
	}

	if _, err := UnwrapList[widget](json.RawMessage(`{"unrelated": 1}`), widgetConfig.ListKeys); err == nil {
		t.Fatal("envelope without any known key must fail")
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	doer := &stubDoer{reply: func(string, string, any) (json.RawMessage, error) {
		return json.RawMessage(`{"widgets": [{"id": 1, "name": "a"}]}`), nil
	}}
	s := New[widget](doer, widgetConfig)
	s.FetchAll(context.Background())

	items := s.Items()
	items[0].Name = "mutated"
	if s.Items()[0].Name != "a" {
		t.Fatal("Items must return a copy, not the live slice")
	}
}
