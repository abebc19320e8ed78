package entity

import "strings"

// Client is the external party behind one or more invoices. Sourced read-only
// from the client store; not guaranteed to exist for every invoice's tercero.
type Client struct {
	ID    string // tercero without leading zeros
	Name  string // razón social
	TaxID string // CIF
}

// NormalizeTercero strips leading zeros from a ledger tercero so it matches
// the client store's key format. An all-zero tercero normalizes to "0".
func NormalizeTercero(tercero string) string {
	trimmed := strings.TrimLeft(tercero, "0")
	if trimmed == "" {
		if tercero == "" {
			return ""
		}
		return "0"
	}
	return trimmed
}
