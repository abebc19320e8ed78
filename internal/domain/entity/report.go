package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report is the company-grouped export structure. A client appears once per
// company it has balances under, so it may show up in several sections; the
// grand total still counts it exactly once.
type Report struct {
	GeneratedAt time.Time
	Filter      BalanceFilter
	Sections    []CompanySection
	GrandTotal  ReportGrandTotal
}

// CompanySection groups the report lines of one legal entity.
type CompanySection struct {
	Company     string
	CompanyName string
	Clients     []ReportLine
	Total       decimal.Decimal
}

// ReportLine is one client's rollup inside a company section.
type ReportLine struct {
	Tercero    string
	ClientName string
	ClientCIF  string
	Invoices   int
	Amount     decimal.Decimal
	Status     Status
}

// ReportGrandTotal dedupes clients across sections: unique client count and
// total amount attribute each client exactly once.
type ReportGrandTotal struct {
	UniqueClients int
	TotalAmount   decimal.Decimal
}
