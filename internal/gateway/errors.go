package gateway

import (
	"errors"
	"fmt"
)

// ErrAuthExpired signals that a call hit a 401. The gateway has already
// cleared the session and notified the user; callers treat this as "abort
// whatever you were doing" and must not retry with the now-empty credential.
var ErrAuthExpired = errors.New("gateway: session expired")

// ValidationError is a 422-shaped response: a field→messages mapping meant
// for inline form feedback. It never passes through the notification bus.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ClientError is any other 4xx, carrying the server-supplied message when
// one was present.
type ClientError struct {
	Status  int
	Message string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error (%d): %s", e.Status, e.Message)
}

// ServerError is a 5xx. Server detail is never surfaced to the user.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d)", e.Status)
}

// TransportError means no response was received at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

const (
	genericClientMessage  = "Something went wrong."
	genericServerMessage  = "Server error. Please try again later."
	genericNetworkMessage = "Network error. Please check your connection."
	sessionExpiredMessage = "Session expired. Please log in again."
)

// UserMessage normalizes any gateway error into text fit for the user.
func UserMessage(err error, fallback string) string {
	var ve *ValidationError
	var ce *ClientError
	switch {
	case errors.Is(err, ErrAuthExpired):
		return sessionExpiredMessage
	case errors.As(err, &ve):
		if ve.Message != "" {
			return ve.Message
		}
	case errors.As(err, &ce):
		if ce.Message != "" {
			return ce.Message
		}
	}
	var se *ServerError
	if errors.As(err, &se) {
		return genericServerMessage
	}
	var te *TransportError
	if errors.As(err, &te) {
		return genericNetworkMessage
	}
	if fallback != "" {
		return fallback
	}
	return genericClientMessage
}
