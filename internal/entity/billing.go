package entity

import (
	"io"
	"strconv"

	"opsdeck.io/internal/gateway"
	"opsdeck.io/internal/store"
)

// Contract is a client agreement with an attached document.
type Contract struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	File      string `json:"file,omitempty"`
	Client    *Ref   `json:"client,omitempty"`
	Project   *Ref   `json:"project,omitempty"`
}

func (c Contract) RecordID() int { return c.ID }

// OwnerID scopes a contract to its client.
func (c Contract) OwnerID() int {
	if c.Client == nil {
		return 0
	}
	return c.Client.ID
}

// Invoice is a billing document issued against a client.
type Invoice struct {
	ID      int     `json:"id"`
	Number  string  `json:"number,omitempty"`
	Amount  float64 `json:"amount,omitempty"`
	Status  string  `json:"status,omitempty"`
	DueDate string  `json:"due_date,omitempty"`
	File    string  `json:"file,omitempty"`
	Client  *Ref    `json:"client,omitempty"`
	Project *Ref    `json:"project,omitempty"`
}

func (i Invoice) RecordID() int { return i.ID }

// OwnerID scopes an invoice to its client.
func (i Invoice) OwnerID() int {
	if i.Client == nil {
		return 0
	}
	return i.Client.ID
}

// DocumentInput is the shared create/update payload for contracts and
// invoices: scalar fields plus one optional file attachment, encoded as
// multipart.
type DocumentInput struct {
	Name      string
	ClientID  int
	ProjectID int
	StartDate string
	EndDate   string
	DueDate   string
	Amount    float64
	FileName  string
	File      io.Reader
}

// Form validates and encodes the payload. Name and client are required.
func (in DocumentInput) Form() (*gateway.Form, error) {
	fields := map[string][]string{}
	if in.Name == "" {
		fields["name"] = []string{"The name field is required."}
	}
	if in.ClientID == 0 {
		fields["client_id"] = []string{"The client field is required."}
	}
	if len(fields) > 0 {
		return nil, &gateway.ValidationError{Message: "The given data was invalid.", Fields: fields}
	}
	form := gateway.NewForm().
		Set("name", in.Name).
		SetInt("client_id", in.ClientID).
		SetInt("project_id", in.ProjectID).
		Set("start_date", in.StartDate).
		Set("end_date", in.EndDate).
		Set("due_date", in.DueDate)
	if in.Amount != 0 {
		form.Set("amount", strconv.FormatFloat(in.Amount, 'f', 2, 64))
	}
	if in.File != nil {
		form.AddFile("file", in.FileName, in.File)
	}
	return form, nil
}

func NewContracts(gw store.Doer) *store.Store[Contract] {
	return store.New[Contract](gw, store.Config{
		Name:     "contracts",
		Path:     "/contracts",
		ListKeys: []string{"data"},
		ItemKeys: []string{"data"},
	})
}

func NewInvoices(gw store.Doer) *store.Store[Invoice] {
	return store.New[Invoice](gw, store.Config{
		Name:     "invoices",
		Path:     "/invoices",
		ListKeys: []string{"data"},
		ItemKeys: []string{"data"},
	})
}
