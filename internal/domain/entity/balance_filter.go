package entity

import "fmt"

// BalanceFilter selects invoices by the sign of their outstanding balance. It
// is applied per invoice, before aggregation.
type BalanceFilter string

const (
	// BalanceAll keeps every invoice with a nonzero outstanding balance.
	BalanceAll BalanceFilter = "todas"
	// BalancePositive keeps invoices where the client owes the company.
	BalancePositive BalanceFilter = "positivas"
	// BalanceNegative keeps invoices where the company owes the client.
	BalanceNegative BalanceFilter = "negativas"
)

// ParseBalanceFilter maps the API's saldo parameter to a filter. Empty input
// defaults to BalanceAll.
func ParseBalanceFilter(s string) (BalanceFilter, error) {
	switch BalanceFilter(s) {
	case "":
		return BalanceAll, nil
	case BalanceAll, BalancePositive, BalanceNegative:
		return BalanceFilter(s), nil
	default:
		return "", &ValidationError{Field: "saldo", Reason: fmt.Sprintf("unknown value %q", s)}
	}
}

// Keep reports whether an invoice's outstanding balance passes the filter.
// Zero-balance invoices are dropped under every filter.
func (f BalanceFilter) Keep(inv *Invoice) bool {
	balance := inv.Outstanding()
	if balance.IsZero() {
		return false
	}
	switch f {
	case BalancePositive:
		return balance.IsPositive()
	case BalanceNegative:
		return balance.IsNegative()
	default:
		return true
	}
}
