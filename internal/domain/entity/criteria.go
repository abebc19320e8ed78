package entity

import (
	"fmt"
	"time"
)

// ValidationError marks malformed criteria, rejected before any query runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid criteria: %s %s", e.Field, e.Reason)
}

// Criteria is the single immutable description of which ledger rows a query
// covers. Every reader (statistics, client summaries, report) takes a Criteria
// value; no call site assembles its own filtering, so two renderings of "the
// same report" cannot drift apart.
//
// The fixed predicates (excluded types, collective, pending flag) come from
// configuration via DefaultCriteria; the With* methods add the optional ones,
// returning a copy each time.
type Criteria struct {
	ExcludedTypes []string
	Collective    string
	PendingOnly   bool

	Companies        []string // empty means all configured companies
	Tercero          string
	DueFrom          *time.Time
	DueTo            *time.Time
	ReclamationLevel *int
	OverdueOnly      bool

	knownCompanies []string
}

// DefaultCriteria builds the fixed-predicate criteria every query starts from.
// knownCompanies is the configured closed company set, used by Validate.
func DefaultCriteria(excludedTypes []string, collective string, knownCompanies []string) Criteria {
	return Criteria{
		ExcludedTypes:  append([]string(nil), excludedTypes...),
		Collective:     collective,
		PendingOnly:    true,
		knownCompanies: append([]string(nil), knownCompanies...),
	}
}

// WithCompanies restricts the criteria to a subset of companies.
func (c Criteria) WithCompanies(companies ...string) Criteria {
	c.Companies = append([]string(nil), companies...)
	return c
}

// WithTercero restricts the criteria to a single client identifier.
func (c Criteria) WithTercero(tercero string) Criteria {
	c.Tercero = tercero
	return c
}

// WithDueRange restricts the criteria to due dates within [from, to]. Either
// bound may be nil.
func (c Criteria) WithDueRange(from, to *time.Time) Criteria {
	c.DueFrom = from
	c.DueTo = to
	return c
}

// WithReclamationLevel restricts the criteria to one reclamation level.
func (c Criteria) WithReclamationLevel(level int) Criteria {
	c.ReclamationLevel = &level
	return c
}

// WithOverdueOnly restricts the criteria to invoices already past due.
func (c Criteria) WithOverdueOnly() Criteria {
	c.OverdueOnly = true
	return c
}

// EffectiveCompanies returns the company restriction in force: the explicit
// selection when one was made, otherwise the full configured set. The ledger
// is shared with other tenants, so an unrestricted query is never issued.
func (c Criteria) EffectiveCompanies() []string {
	if len(c.Companies) > 0 {
		return c.Companies
	}
	return c.knownCompanies
}

// Validate rejects malformed criteria before any query executes.
func (c Criteria) Validate() error {
	if c.DueFrom != nil && c.DueTo != nil && c.DueFrom.After(*c.DueTo) {
		return &ValidationError{Field: "due date range", Reason: "start is after end"}
	}
	if c.ReclamationLevel != nil && *c.ReclamationLevel < 0 {
		return &ValidationError{Field: "reclamation level", Reason: "must not be negative"}
	}
	if len(c.knownCompanies) > 0 {
		for _, company := range c.Companies {
			if !containsString(c.knownCompanies, company) {
				return &ValidationError{Field: "company", Reason: fmt.Sprintf("%q is not a recognized company", company)}
			}
		}
	}
	return nil
}

// Matches is the predicate authority: it decides, for one invoice, whether the
// criteria covers it. The SQL pushdown in the invoice repository is generated
// from the same Criteria value and must agree with this function.
func (c Criteria) Matches(inv *Invoice, now time.Time) bool {
	if containsString(c.ExcludedTypes, inv.Type) {
		return false
	}
	if c.Collective != "" && inv.Collective != c.Collective {
		return false
	}
	if c.PendingOnly && inv.Settled() {
		return false
	}
	if companies := c.EffectiveCompanies(); len(companies) > 0 && !containsString(companies, inv.Company) {
		return false
	}
	if c.Tercero != "" && inv.Client != c.Tercero {
		return false
	}
	if c.DueFrom != nil && inv.DueDate.Before(*c.DueFrom) {
		return false
	}
	if c.DueTo != nil && inv.DueDate.After(*c.DueTo) {
		return false
	}
	if c.ReclamationLevel != nil {
		level := 0
		if inv.ReclamationLevel != nil {
			level = *inv.ReclamationLevel
		}
		if level != *c.ReclamationLevel {
			return false
		}
	}
	if c.OverdueOnly && !inv.Overdue(now) {
		return false
	}
	return true
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
