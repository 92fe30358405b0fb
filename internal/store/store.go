// Package store provides the generic entity store: the client-side
// authoritative cache of one entity type's list and detail data plus its
// fetch/mutate operations. One parametrized implementation replaces the
// per-entity copies the console grew historically, so loading-state and
// consistency behavior cannot drift between entities.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"opsdeck.io/internal/gateway"
)

// Record is any server entity with a stable integer identifier.
type Record interface {
	RecordID() int
}

// Status is the store's primary loading state. Secondary-cache fetches never
// touch it.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
)

// Doer is the gateway surface the store consumes.
type Doer interface {
	Do(ctx context.Context, method, path string, body any) (json.RawMessage, error)
	DoForm(ctx context.Context, method, path string, form *gateway.Form) (json.RawMessage, error)
}

// Config fixes one entity's wire contract.
type Config struct {
	// Name is the plural slug used in paths and messages, e.g. "companies".
	Name string
	// Path is the collection endpoint, e.g. "/companies".
	Path string
	// ListKeys are the envelope keys tried, in order, when unwrapping list
	// responses; a bare JSON array is also accepted.
	ListKeys []string
	// ItemKeys are the envelope keys tried for single-record responses; a
	// bare object is the final fallback.
	ItemKeys []string
}

// Store holds one entity type's canonical list, optional detail slot, and
// primary status. All state is replaced wholesale under the lock; readers
// get copies, never views into live slices.
type Store[T Record] struct {
	gw  Doer
	cfg Config

	mu     sync.RWMutex
	items  []T
	detail *T
	status Status
	errMsg string
}

func New[T Record](gw Doer, cfg Config) *Store[T] {
	return &Store[T]{gw: gw, cfg: cfg}
}

// Name returns the entity slug.
func (s *Store[T]) Name() string { return s.cfg.Name }

// FetchAll loads the canonical list. Server order is preserved; the list is
// never re-sorted client-side. Concurrent calls are not deduplicated: each
// runs independently and the last response wins.
func (s *Store[T]) FetchAll(ctx context.Context) error {
	s.setLoading()
	raw, err := s.gw.Do(ctx, http.MethodGet, s.cfg.Path, nil)
	if err != nil {
		s.setError(gateway.UserMessage(err, "Failed to fetch "+s.cfg.Name))
		return err
	}
	items, err := UnwrapList[T](raw, s.cfg.ListKeys)
	if err != nil {
		s.setError(err.Error())
		return err
	}
	s.mu.Lock()
	s.items = items
	s.status = StatusIdle
	s.errMsg = ""
	s.mu.Unlock()
	return nil
}

// FetchOne loads a single record into the detail slot. The slot is not
// cleared automatically on navigation; callers invoke ClearDetail when the
// consuming view goes away.
func (s *Store[T]) FetchOne(ctx context.Context, id int) (T, error) {
	var zero T
	s.setLoading()
	raw, err := s.gw.Do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", s.cfg.Path, id), nil)
	if err != nil {
		s.setError(gateway.UserMessage(err, "Failed to load record"))
		return zero, err
	}
	rec, err := UnwrapItem[T](raw, s.cfg.ItemKeys)
	if err != nil {
		s.setError(err.Error())
		return zero, err
	}
	s.mu.Lock()
	s.detail = &rec
	s.status = StatusIdle
	s.errMsg = ""
	s.mu.Unlock()
	return rec, nil
}

// ClearDetail empties the detail slot. Advisory cleanup: a fetch already in
// flight may still land afterwards, and that is tolerated.
func (s *Store[T]) ClearDetail() {
	s.mu.Lock()
	s.detail = nil
	s.mu.Unlock()
}

// Create posts a new record and appends the server's returned canonical
// representation (never the input payload, which lacks server-computed
// fields). Failures leave the list untouched.
func (s *Store[T]) Create(ctx context.Context, payload any) (T, error) {
	var zero T
	raw, err := s.request(ctx, http.MethodPost, s.cfg.Path, payload)
	if err != nil {
		return zero, err
	}
	rec, err := UnwrapItem[T](raw, s.cfg.ItemKeys)
	if err != nil {
		return zero, err
	}
	s.mu.Lock()
	s.items = append(append(make([]T, 0, len(s.items)+1), s.items...), rec)
	s.mu.Unlock()
	return rec, nil
}

// Update replaces the matching record in the list and, when the detail slot
// holds the same identifier, the detail copy too, so the two views of a
// record never diverge.
func (s *Store[T]) Update(ctx context.Context, id int, payload any) (T, error) {
	var zero T
	raw, err := s.request(ctx, http.MethodPut, fmt.Sprintf("%s/%d", s.cfg.Path, id), payload)
	if err != nil {
		return zero, err
	}
	rec, err := UnwrapItem[T](raw, s.cfg.ItemKeys)
	if err != nil {
		return zero, err
	}
	s.ApplyUpdate(rec)
	return rec, nil
}

// Delete removes the record from the list and clears a matching detail. A
// record already absent (double-delete race) is a safe no-op.
func (s *Store[T]) Delete(ctx context.Context, id int) error {
	if _, err := s.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", s.cfg.Path, id), nil); err != nil {
		return err
	}
	s.ApplyDelete(id)
	return nil
}

// request routes multipart payloads (*gateway.Form) through DoForm and
// everything else through the JSON path.
func (s *Store[T]) request(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	if form, ok := payload.(*gateway.Form); ok {
		return s.gw.DoForm(ctx, method, path, form)
	}
	return s.gw.Do(ctx, method, path, payload)
}

// ApplyUpdate patches a server-returned record into both resident copies.
// Entity-specific operations (assign, membership updates) reuse it so their
// responses flow through the same consistency rule as Update.
func (s *Store[T]) ApplyUpdate(rec T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].RecordID() == rec.RecordID() {
			next := make([]T, len(s.items))
			copy(next, s.items)
			next[i] = rec
			s.items = next
			break
		}
	}
	if s.detail != nil && (*s.detail).RecordID() == rec.RecordID() {
		s.detail = &rec
	}
}

// ApplyDelete removes a record by identifier and clears a matching detail.
func (s *Store[T]) ApplyDelete(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]T, 0, len(s.items))
	for _, it := range s.items {
		if it.RecordID() != id {
			next = append(next, it)
		}
	}
	s.items = next
	if s.detail != nil && (*s.detail).RecordID() == id {
		s.detail = nil
	}
}

// Items returns a copy of the canonical list in server order.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Detail returns the detail slot.
func (s *Store[T]) Detail() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.detail == nil {
		var zero T
		return zero, false
	}
	return *s.detail, true
}

// Status returns the primary loading state and its error message.
func (s *Store[T]) Status() (Status, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.errMsg
}

func (s *Store[T]) setLoading() {
	s.mu.Lock()
	s.status = StatusLoading
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *Store[T]) setError(msg string) {
	s.mu.Lock()
	s.status = StatusError
	s.errMsg = msg
	s.mu.Unlock()
}
