// Package gateway is the single HTTP boundary between the console core and
// the platform API. Every request passes through here: credential
// attachment, error classification, expiry handling, metrics and logging.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"opsdeck.io/internal/notify"
	"opsdeck.io/internal/obs"
)

// CredentialSource supplies the current bearer token. An empty token means
// no Authorization header is attached.
type CredentialSource interface {
	Token() string
}

// Gateway wraps one http.Client against one API base URL.
type Gateway struct {
	baseURL string
	client  *http.Client
	creds   CredentialSource
	bus     *notify.Bus
	limiter *rate.Limiter
	logger  *slog.Logger

	// onAuthExpired clears local session state on a 401. It runs before the
	// call returns ErrAuthExpired so no caller can observe a stale credential.
	onAuthExpired func()
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithAuthExpiredHook installs the forced-logout callback invoked on 401.
func WithAuthExpiredHook(fn func()) Option {
	return func(g *Gateway) { g.onAuthExpired = fn }
}

// WithRateLimit bounds outgoing request rate with a token bucket.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(g *Gateway) { g.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithLogger replaces the shared logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

func New(baseURL string, creds CredentialSource, bus *notify.Bus, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		creds:   creds,
		bus:     bus,
		logger:  obs.Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do issues a JSON request and returns the raw response body. A nil body
// sends no payload. The error is always one of the typed gateway errors.
func (g *Gateway) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	return g.send(ctx, method, path, reader, "application/json")
}

// DoForm issues a multipart request. When method is PUT the call tunnels
// through POST with a "_method=PUT" override field, matching the upload
// endpoints' POST-only contract.
func (g *Gateway) DoForm(ctx context.Context, method, path string, form *Form) (json.RawMessage, error) {
	if method == http.MethodPut {
		method = http.MethodPost
		if !form.HasField("_method") {
			form.Set("_method", "PUT")
		}
	}
	buf, contentType, err := form.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	return g.send(ctx, method, path, buf, contentType)
}

func (g *Gateway) send(ctx context.Context, method, path string, body io.Reader, contentType string) (json.RawMessage, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token := g.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		obs.ObserveRequest(method, path, "0", elapsed.Seconds())
		g.logger.Warn("api call failed", "method", method, "path", path, "err", err)
		if g.bus != nil {
			g.bus.Error(genericNetworkMessage)
		}
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	obs.ObserveRequest(method, path, strconv.Itoa(resp.StatusCode), elapsed.Seconds())
	g.logger.Info("api call", "method", method, "path", path, "status", resp.StatusCode, "duration", elapsed)

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		if g.bus != nil {
			g.bus.Error(genericNetworkMessage)
		}
		return nil, &TransportError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Unconditional: forced expiry takes precedence over whatever the
		// caller was doing.
		if g.onAuthExpired != nil {
			g.onAuthExpired()
		}
		if g.bus != nil {
			g.bus.Error(sessionExpiredMessage)
		}
		return nil, ErrAuthExpired

	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, decodeValidation(payload)

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		msg := serverMessage(payload)
		if msg == "" {
			msg = genericClientMessage
		}
		if g.bus != nil {
			g.bus.Error(msg)
		}
		return nil, &ClientError{Status: resp.StatusCode, Message: msg}

	case resp.StatusCode >= 500:
		if g.bus != nil {
			g.bus.Error(genericServerMessage)
		}
		return nil, &ServerError{Status: resp.StatusCode}
	}

	if len(payload) == 0 {
		return nil, nil
	}
	return json.RawMessage(payload), nil
}

// serverMessage pulls the conventional {"message": "..."} field out of an
// error body, tolerating any other shape.
func serverMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Message
}

func decodeValidation(payload []byte) *ValidationError {
	var body struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return &ValidationError{Message: genericClientMessage}
	}
	return &ValidationError{Message: body.Message, Fields: body.Errors}
}
