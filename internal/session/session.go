// Package session owns the authenticated identity: the bearer credential,
// the resolved Principal, the tenant theme, and their persistence. The
// session is the only writer of this state; everything else reads through
// the operation contract.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"opsdeck.io/internal/gateway"
	"opsdeck.io/internal/obs"
)

// State is the session lifecycle position.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Doer is the slice of the gateway the session needs. The gateway itself
// depends on the session only through the CredentialSource interface, so the
// two are wired together after construction.
type Doer interface {
	Do(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// ThemeApplier receives the tenant's style tokens on login and rehydration.
// The terminal front end maps them onto its palette; a browser shell would
// write CSS custom properties.
type ThemeApplier interface {
	ApplyTheme(tokens map[string]string)
}

// NopApplier ignores theme tokens.
type NopApplier struct{}

func (NopApplier) ApplyTheme(map[string]string) {}

const (
	prefLocale    = "locale"
	defaultLocale = "en"

	loginFallbackMessage = "Login failed. Please try again."
)

// Session is the identity state machine:
// Anonymous → Authenticating → Authenticated, and back to Anonymous on
// logout or forced expiry.
type Session struct {
	store   Store
	applier ThemeApplier
	logger  *slog.Logger

	mu        sync.RWMutex
	gw        Doer
	state     State
	token     string
	principal *Principal
	lastErr   string
}

// New builds a session and rehydrates it from the store: a persisted
// credential and principal restore Authenticated directly, trusting the
// stored state without a network round trip.
func New(ctx context.Context, store Store, applier ThemeApplier) *Session {
	if applier == nil {
		applier = NopApplier{}
	}
	s := &Session{
		store:   store,
		applier: applier,
		logger:  obs.Logger(),
		state:   StateAnonymous,
	}
	s.rehydrate(ctx)
	return s
}

func (s *Session) rehydrate(ctx context.Context) {
	token, raw, ok, err := s.store.LoadSession(ctx)
	if err != nil {
		s.logger.Warn("session rehydration failed", "err", err)
		return
	}
	if !ok {
		return
	}
	var p Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		s.logger.Warn("persisted principal unreadable, discarding", "err", err)
		if err := s.store.ClearSession(ctx); err != nil {
			s.logger.Warn("clear session failed", "err", err)
		}
		return
	}
	s.token = token
	s.principal = &p
	s.state = StateAuthenticated
	if tokens := p.ThemeTokens(); len(tokens) > 0 {
		s.applier.ApplyTheme(tokens)
	}
}

// AttachGateway wires the gateway in after both sides exist.
func (s *Session) AttachGateway(gw Doer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gw = gw
}

// Token implements gateway.CredentialSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Principal returns a copy of the authenticated identity.
func (s *Session) Principal() (Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return Principal{}, false
	}
	return *s.principal, true
}

// LastError returns the retained message from the most recent failed login.
func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  Principal `json:"user"`
}

// Login authenticates against POST /login. On success the credential and
// Principal are stored and persisted, the tenant theme is applied, and the
// session becomes Authenticated. On failure it stays Anonymous and retains
// the error message; nothing is persisted.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	gw := s.gw
	s.state = StateAuthenticating
	s.lastErr = ""
	s.mu.Unlock()

	if gw == nil {
		s.failLogin(loginFallbackMessage)
		return errors.New("session: no gateway attached")
	}

	raw, err := gw.Do(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password})
	if err != nil {
		s.failLogin(gateway.UserMessage(err, loginFallbackMessage))
		return err
	}
	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Token == "" {
		s.failLogin(loginFallbackMessage)
		return errors.New("session: malformed login response")
	}

	persisted, err := json.Marshal(resp.User)
	if err != nil {
		s.failLogin(loginFallbackMessage)
		return err
	}
	if err := s.store.SaveSession(ctx, resp.Token, persisted); err != nil {
		s.logger.Warn("persist session failed", "err", err)
	}

	s.mu.Lock()
	s.token = resp.Token
	user := resp.User
	s.principal = &user
	s.state = StateAuthenticated
	s.mu.Unlock()

	if tokens := resp.User.ThemeTokens(); len(tokens) > 0 {
		s.applier.ApplyTheme(tokens)
	}
	return nil
}

func (s *Session) failLogin(message string) {
	s.mu.Lock()
	s.state = StateAnonymous
	s.lastErr = message
	s.mu.Unlock()
}

// Logout notifies the server best-effort, then unconditionally clears the
// credential, the Principal, and the persisted session. A failing notify
// never blocks the local clear.
func (s *Session) Logout(ctx context.Context) {
	s.mu.RLock()
	gw := s.gw
	s.mu.RUnlock()

	if gw != nil {
		if _, err := gw.Do(ctx, http.MethodPost, "/logout", nil); err != nil {
			s.logger.Warn("logout notify failed", "err", err)
		}
	}
	s.clearLocal(ctx)
}

// ForceExpire is the gateway's 401 hook: the local-clear half of logout,
// without the server notify (that request already failed).
func (s *Session) ForceExpire() {
	s.clearLocal(context.Background())
}

func (s *Session) clearLocal(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.principal = nil
	s.state = StateAnonymous
	s.mu.Unlock()

	if err := s.store.ClearSession(ctx); err != nil {
		s.logger.Warn("clear persisted session failed", "err", err)
	}
}

// Locale returns the durably persisted locale flag.
func (s *Session) Locale() string {
	loc, ok, err := s.store.Preference(context.Background(), prefLocale)
	if err != nil || !ok || loc == "" {
		return defaultLocale
	}
	return loc
}

// SetLocale persists the locale across sessions, independent of the
// principal's lifetime.
func (s *Session) SetLocale(ctx context.Context, locale string) error {
	return s.store.SetPreference(ctx, prefLocale, locale)
}

// TextDirection flips with the locale: right-to-left for Arabic, otherwise
// left-to-right.
func (s *Session) TextDirection() string {
	if s.Locale() == "ar" {
		return "rtl"
	}
	return "ltr"
}
