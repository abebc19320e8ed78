// Package aggregate groups filtered invoice sets into per-client and
// per-company totals. All state is function-local to one call; nothing here
// touches storage or leaks accumulators across requests.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// ClientAggregate is the per-client rollup of one aggregation call.
type ClientAggregate struct {
	Client   string
	Invoices int
	Amount   decimal.Decimal
	Worst    entity.Status
}

// CompanyAggregate is the per-company rollup. A client contributes to every
// company it has invoices under, so summing company amounts double-counts
// shared clients; the grand total never does.
type CompanyAggregate struct {
	Company string
	Amount  decimal.Decimal
	Clients int // distinct clients with invoices under this company
}

// GrandTotal counts each distinct client exactly once, no matter how many
// companies it appears under.
type GrandTotal struct {
	UniqueClients int
	Amount        decimal.Decimal
}

// Aggregate runs a single pass over an already-filtered invoice set. The
// grand total is computed from the per-client aggregates, never from the
// company aggregates, so a client spanning several companies is counted once.
// Input ordering is irrelevant; the maps carry no order.
func Aggregate(invoices []entity.Invoice) (map[string]*ClientAggregate, map[string]*CompanyAggregate, GrandTotal) {
	clients := make(map[string]*ClientAggregate)
	companies := make(map[string]*CompanyAggregate)
	companyClients := make(map[string]map[string]struct{})

	for i := range invoices {
		inv := &invoices[i]
		outstanding := inv.Outstanding()

		ca, ok := clients[inv.Client]
		if !ok {
			ca = &ClientAggregate{Client: inv.Client, Worst: entity.StatusGreen}
			clients[inv.Client] = ca
		}
		ca.Invoices++
		ca.Amount = ca.Amount.Add(outstanding)
		ca.Worst = entity.WorstStatus(ca.Worst, inv.Status())

		co, ok := companies[inv.Company]
		if !ok {
			co = &CompanyAggregate{Company: inv.Company}
			companies[inv.Company] = co
			companyClients[inv.Company] = make(map[string]struct{})
		}
		co.Amount = co.Amount.Add(outstanding)
		if _, seen := companyClients[inv.Company][inv.Client]; !seen {
			companyClients[inv.Company][inv.Client] = struct{}{}
			co.Clients++
		}
	}

	var total GrandTotal
	for _, ca := range clients {
		total.UniqueClients++
		total.Amount = total.Amount.Add(ca.Amount)
	}

	return clients, companies, total
}

// SortedClients returns the client aggregates ordered by descending amount,
// ties broken by client identifier ascending for determinism.
func SortedClients(clients map[string]*ClientAggregate) []*ClientAggregate {
	out := make([]*ClientAggregate, 0, len(clients))
	for _, ca := range clients {
		out = append(out, ca)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Client < out[j].Client
	})
	return out
}

// SortedCompanies returns the company aggregates ordered by descending amount,
// ties broken by company code ascending.
func SortedCompanies(companies map[string]*CompanyAggregate) []*CompanyAggregate {
	out := make([]*CompanyAggregate, 0, len(companies))
	for _, co := range companies {
		out = append(out, co)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Company < out[j].Company
	})
	return out
}
