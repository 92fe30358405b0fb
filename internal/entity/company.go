package entity

import (
	"io"

	"opsdeck.io/internal/gateway"
	"opsdeck.io/internal/store"
)

// Company is a tenant on the platform.
type Company struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
	Logo    string `json:"logo,omitempty"`
}

func (c Company) RecordID() int { return c.ID }

// CompanyInput is the create/update payload. Companies carry a logo upload,
// so the payload encodes as multipart rather than JSON.
type CompanyInput struct {
	Name     string
	Email    string
	Phone    string
	Website  string
	LogoName string
	Logo     io.Reader
}

// Form validates the input locally and encodes it. Name and email are
// required before anything goes on the wire; a logo, when present, must be a
// png or jpeg.
func (in CompanyInput) Form() (*gateway.Form, error) {
	fields := map[string][]string{}
	if in.Name == "" {
		fields["name"] = []string{"The name field is required."}
	}
	if in.Email == "" {
		fields["email"] = []string{"The email field is required."}
	}
	if in.Logo != nil {
		if err := gateway.ValidateImageName(in.LogoName); err != nil {
			fields["logo"] = []string{err.Error()}
		}
	}
	if len(fields) > 0 {
		return nil, &gateway.ValidationError{Message: "The given data was invalid.", Fields: fields}
	}
	form := gateway.NewForm().
		Set("name", in.Name).
		Set("email", in.Email).
		Set("phone", in.Phone).
		Set("website", in.Website)
	if in.Logo != nil {
		form.AddFile("logo", in.LogoName, in.Logo)
	}
	return form, nil
}

func NewCompanies(gw store.Doer) *store.Store[Company] {
	return store.New[Company](gw, store.Config{
		Name:     "companies",
		Path:     "/companies",
		ListKeys: []string{"companies", "data"},
		ItemKeys: []string{"company", "data"},
	})
}
