package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                        "/",
		"/companies":              "/companies",
		"/companies/42":           "/companies/:id",
		"/teams/7/members":        "/teams/:id/members",
		"/tickets/13/assign":      "/tickets/:id/assign",
		"/agents?company_id=3":    "/agents",
		"/teams?company_id=9":     "/teams",
		"/users/5/permissions":    "/users/:id/permissions",
		"/projects/abc":           "/projects/abc",
		"/dashboard":              "/dashboard",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
