package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/port"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/aggregate"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// Snapshot is the dashboard summary. Every numeric field derives from one
// aggregation pass over one Criteria; no field is computed by a side query.
type Snapshot struct {
	TotalCompaniesPending int
	TotalInvoicesPending  int
	TotalAmountOwed       decimal.Decimal
	TopCompanies          []TopCompany
	MostOverdue           []OverdueInvoice
}

// TopCompany is one client-level entry of the snapshot's top list.
type TopCompany struct {
	Tercero    string
	ClientName string
	Amount     decimal.Decimal
}

// OverdueInvoice is one line of the most-overdue listing.
type OverdueInvoice struct {
	Tercero string
	Type    string
	Entry   string
	Company string
	DueDate time.Time
	Amount  decimal.Decimal
	Status  entity.Status
}

// ClientSummary is one row of the per-client dashboard listing.
type ClientSummary struct {
	Tercero    string
	ClientName string
	ClientCIF  string
	Invoices   int
	Amount     decimal.Decimal
	Status     entity.Status
}

// ClientSummaryResult wraps the listing with an explicit degraded marker. When
// the ledger is unavailable the endpoint returns an empty list flagged
// Degraded instead of failing, a deliberate availability trade that is always
// logged, never silent.
type ClientSummaryResult struct {
	Degraded bool
	Clients  []ClientSummary
}

// StatisticsService assembles the dashboard snapshot and the per-client
// summary listing from the ledger and client stores.
type StatisticsService struct {
	invoices     port.InvoiceRepository
	clients      port.ClientRepository
	topCompanies int
	overduePage  int
	logger       *zap.Logger
}

// NewStatisticsService creates the statistics assembler. topCompanies and
// overduePage bound the snapshot's two lists; non-positive values fall back
// to the defaults.
func NewStatisticsService(
	invoices port.InvoiceRepository,
	clients port.ClientRepository,
	topCompanies int,
	overduePage int,
	logger *zap.Logger,
) *StatisticsService {
	if topCompanies <= 0 {
		topCompanies = entity.DefaultTopCompanies
	}
	if overduePage <= 0 {
		overduePage = entity.DefaultOverduePage
	}
	return &StatisticsService{
		invoices:     invoices,
		clients:      clients,
		topCompanies: topCompanies,
		overduePage:  overduePage,
		logger:       logger,
	}
}

// Snapshot builds the dashboard summary for the given criteria. now anchors
// the overdue predicate and ordering.
func (s *StatisticsService) Snapshot(ctx context.Context, criteria entity.Criteria, now time.Time) (*Snapshot, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.invoices.Query(ctx, criteria, now)
	if err != nil {
		s.logger.Error("Failed to query invoices for snapshot", zap.Error(err))
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}

	clientAggs, _, total := aggregate.Aggregate(invoices)

	snapshot := &Snapshot{
		TotalCompaniesPending: total.UniqueClients,
		TotalInvoicesPending:  len(invoices),
		TotalAmountOwed:       total.Amount,
	}

	sorted := aggregate.SortedClients(clientAggs)
	if len(sorted) > s.topCompanies {
		sorted = sorted[:s.topCompanies]
	}

	lookup := s.lookupClients(ctx, terceroIDs(sorted))
	for _, ca := range sorted {
		name := entity.UnknownClientName
		if c, ok := lookup[entity.NormalizeTercero(ca.Client)]; ok {
			name = c.Name
		}
		snapshot.TopCompanies = append(snapshot.TopCompanies, TopCompany{
			Tercero:    ca.Client,
			ClientName: name,
			Amount:     ca.Amount,
		})
	}

	snapshot.MostOverdue = mostOverdue(invoices, s.overduePage)

	s.logger.Info("Snapshot assembled",
		zap.Int("clients", total.UniqueClients),
		zap.Int("invoices", len(invoices)),
		zap.String("amount_owed", total.Amount.StringFixed(2)))

	return snapshot, nil
}

// ClientSummaries builds the per-client listing for the given criteria.
// Storage failures degrade to an empty, flagged result rather than an error;
// validation failures are still rejected up front.
func (s *StatisticsService) ClientSummaries(ctx context.Context, criteria entity.Criteria, now time.Time) (*ClientSummaryResult, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.invoices.Query(ctx, criteria, now)
	if err != nil {
		s.logger.Warn("Client summary degraded: ledger unavailable, returning empty list", zap.Error(err))
		return &ClientSummaryResult{Degraded: true}, nil
	}

	clientAggs, _, _ := aggregate.Aggregate(invoices)
	sorted := aggregate.SortedClients(clientAggs)
	lookup := s.lookupClients(ctx, terceroIDs(sorted))

	result := &ClientSummaryResult{Clients: make([]ClientSummary, 0, len(sorted))}
	for _, ca := range sorted {
		summary := ClientSummary{
			Tercero:    ca.Client,
			ClientName: entity.UnknownClientName,
			ClientCIF:  entity.UnknownClientCIF,
			Invoices:   ca.Invoices,
			Amount:     ca.Amount,
			Status:     ca.Worst,
		}
		if c, ok := lookup[entity.NormalizeTercero(ca.Client)]; ok {
			summary.ClientName = c.Name
			summary.ClientCIF = c.TaxID
		}
		result.Clients = append(result.Clients, summary)
	}

	return result, nil
}

// lookupClients resolves client records, tolerating both misses and a failing
// client store: enrichment degrades to placeholders, it never fails a query.
func (s *StatisticsService) lookupClients(ctx context.Context, ids []string) map[string]entity.Client {
	if len(ids) == 0 {
		return nil
	}
	lookup, err := s.clients.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Client enrichment unavailable, using placeholders", zap.Error(err))
		return nil
	}
	return lookup
}

func terceroIDs(aggs []*aggregate.ClientAggregate) []string {
	ids := make([]string, 0, len(aggs))
	for _, ca := range aggs {
		ids = append(ids, entity.NormalizeTercero(ca.Client))
	}
	return ids
}

// mostOverdue sorts by due date ascending (most overdue first), tie-broken by
// tercero then entry for determinism, and truncates to the page size.
func mostOverdue(invoices []entity.Invoice, page int) []OverdueInvoice {
	sorted := make([]entity.Invoice, len(invoices))
	copy(sorted, invoices)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].DueDate.Equal(sorted[j].DueDate) {
			return sorted[i].DueDate.Before(sorted[j].DueDate)
		}
		if sorted[i].Client != sorted[j].Client {
			return sorted[i].Client < sorted[j].Client
		}
		return sorted[i].Entry < sorted[j].Entry
	})
	if len(sorted) > page {
		sorted = sorted[:page]
	}

	out := make([]OverdueInvoice, 0, len(sorted))
	for i := range sorted {
		inv := &sorted[i]
		out = append(out, OverdueInvoice{
			Tercero: inv.Client,
			Type:    inv.Type,
			Entry:   inv.Entry,
			Company: inv.Company,
			DueDate: inv.DueDate,
			Amount:  inv.Outstanding(),
			Status:  inv.Status(),
		})
	}
	return out
}
