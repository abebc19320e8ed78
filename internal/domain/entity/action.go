package entity

import "time"

// FollowUpAction is a scheduled commercial reminder tied to a client and an
// invoice reference. Created by user-facing CRUD; the notifier only ever flips
// the sent flag and timestamp, never deletes.
type FollowUpAction struct {
	ID           int64
	ClientID     string // client store identifier
	Tercero      string // ledger tercero as recorded on the invoice
	InvoiceType  string
	InvoiceEntry string
	Kind         string // Email, Llamada, Teams
	Description  string
	RemindAt     *time.Time // nil means no reminder scheduled
	Author       string
	CreatedAt    time.Time
	Sent         bool
	SentAt       *time.Time
}

// Due reports whether the action's reminder has come due and has not yet been
// dispatched.
func (a *FollowUpAction) Due(now time.Time) bool {
	return a.RemindAt != nil && !a.RemindAt.After(now) && !a.Sent
}

// InvoiceRef renders the invoice reference for logs and reminder bodies.
func (a *FollowUpAction) InvoiceRef() string {
	if a.InvoiceType == "" && a.InvoiceEntry == "" {
		return ""
	}
	return a.InvoiceType + "-" + a.InvoiceEntry
}
