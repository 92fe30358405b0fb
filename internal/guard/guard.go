// Package guard decides what happens when the user navigates to a route:
// render it, bounce to login remembering where they were headed, or show
// access denied. The decision is pure; it never fetches.
package guard

import (
	"opsdeck.io/internal/authz"
	"opsdeck.io/internal/session"
)

// Route is a guarded destination. Empty Required means the route only needs
// an authenticated session.
type Route struct {
	Path     string
	Required []authz.Capability
}

// Action is the guard's verdict.
type Action int

const (
	// Render lets the route through.
	Render Action = iota
	// RedirectLogin sends an anonymous user to the login screen; Origin
	// carries the path to return to after authenticating.
	RedirectLogin
	// AccessDenied shows the denied screen to an authenticated user who
	// lacks the capability. No redirect: the address stays visible so the
	// user can ask for the right grant.
	AccessDenied
)

func (a Action) String() string {
	switch a {
	case RedirectLogin:
		return "redirect-login"
	case AccessDenied:
		return "access-denied"
	default:
		return "render"
	}
}

// Decision is the evaluated outcome for one navigation.
type Decision struct {
	Action Action
	Origin string
}

// Evaluate guards one navigation. An authenticated user passes when holding
// any required capability or its own-scoped variant; anonymous users are
// redirected regardless of the route's requirements.
func Evaluate(state session.State, caps authz.Set, route Route) Decision {
	if state != session.StateAuthenticated {
		return Decision{Action: RedirectLogin, Origin: route.Path}
	}
	if len(route.Required) == 0 {
		return Decision{Action: Render}
	}
	for _, c := range route.Required {
		if caps.Allows(c) {
			return Decision{Action: Render}
		}
		if own, ok := authz.OwnVariant(c); ok && caps.Allows(own) {
			return Decision{Action: Render}
		}
	}
	return Decision{Action: AccessDenied}
}

// AfterLogin resolves where a fresh login lands: the remembered origin when
// there is one, otherwise the fallback. The login page itself is never a
// valid origin.
func AfterLogin(origin, fallback string) string {
	if origin == "" || origin == "/login" {
		return fallback
	}
	return origin
}
