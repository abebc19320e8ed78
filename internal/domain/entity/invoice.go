package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is one accounts-receivable line from the external ledger. It is
// sourced read-only and re-read on every query; this system never mutates it.
type Invoice struct {
	Type             string // ledger document type code
	Entry            string // document/entry number
	Company          string // legal entity code (sociedad)
	Plant            string
	Currency         string
	Collective       string // accounting collective code
	Client           string // tercero, may carry leading zeros
	DueDate          time.Time
	PaymentMethod    string
	Sign             string // debit/credit direction
	Amount           decimal.Decimal
	Paid             decimal.Decimal
	ReclamationLevel *int
	ReclamationDate  *time.Time
	PaidFlag         *bool
}

// Status derives the escalation status from the reclamation level.
func (i *Invoice) Status() Status {
	return ClassifyStatus(i.ReclamationLevel)
}

// Outstanding is the unpaid balance: amount minus amount paid. It can be
// negative when the company owes the client.
func (i *Invoice) Outstanding() decimal.Decimal {
	return i.Amount.Sub(i.Paid)
}

// Settled reports whether the ledger marks this invoice as paid. A nil flag
// means the ledger has not cleared it.
func (i *Invoice) Settled() bool {
	return i.PaidFlag != nil && *i.PaidFlag
}

// Overdue reports whether the due date has elapsed at the given instant.
func (i *Invoice) Overdue(now time.Time) bool {
	return i.DueDate.Before(now)
}
