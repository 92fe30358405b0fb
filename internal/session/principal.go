package session

import "opsdeck.io/internal/authz"

// Theme is the tenant's visual theme: four color tokens applied to the
// process-wide style scope on login and rehydration.
type Theme struct {
	PrimaryColor    string `json:"primaryColor,omitempty"`
	SecondaryColor  string `json:"secondaryColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
}

// Tokens maps the theme onto named style tokens, omitting unset colors.
func (t Theme) Tokens() map[string]string {
	tokens := make(map[string]string, 4)
	if t.PrimaryColor != "" {
		tokens["--primary-color"] = t.PrimaryColor
	}
	if t.SecondaryColor != "" {
		tokens["--secondary-color"] = t.SecondaryColor
	}
	if t.BackgroundColor != "" {
		tokens["--background-color"] = t.BackgroundColor
	}
	if t.TextColor != "" {
		tokens["--text-color"] = t.TextColor
	}
	return tokens
}

// Tenant is the principal's company reference, carrying the optional theme.
type Tenant struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Style *Theme `json:"style,omitempty"`
}

// Principal is the authenticated identity as resolved by the server: display
// data, role names, and the flat permission-string set.
type Principal struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Company     *Tenant  `json:"company,omitempty"`
}

// PermissionSet resolves the principal's permissions into an authz.Set.
func (p Principal) PermissionSet() authz.Set {
	return authz.NewSet(p.Permissions)
}

// HasRole reports role membership by exact name.
func (p Principal) HasRole(name string) bool {
	return authz.HasRole(p.Roles, name)
}

// ThemeTokens returns the tenant theme tokens, or nil when the principal's
// company carries no style.
func (p Principal) ThemeTokens() map[string]string {
	if p.Company == nil || p.Company.Style == nil {
		return nil
	}
	return p.Company.Style.Tokens()
}
