package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/port"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/aggregate"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// ErrExportUnavailable signals that no report sink is configured in this
// deployment. Callers surface it as an explicit "feature unavailable" rather
// than attempting an export that would corrupt output.
var ErrExportUnavailable = errors.New("report export is not available in this configuration")

// ReportService builds the company-grouped report and hands it to the sink.
// It takes the same Criteria value as the statistics assembler; with the
// all-balance filter and identical criteria, its grand total matches the
// snapshot's owed amount to the cent.
type ReportService struct {
	invoices     port.InvoiceRepository
	clients      port.ClientRepository
	sink         port.ReportSink
	companyNames map[string]string
	logger       *zap.Logger
}

// NewReportService creates the report builder. sink may be nil when the
// deployment has no export target; Export then returns ErrExportUnavailable.
func NewReportService(
	invoices port.InvoiceRepository,
	clients port.ClientRepository,
	sink port.ReportSink,
	companyNames map[string]string,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		invoices:     invoices,
		clients:      clients,
		sink:         sink,
		companyNames: companyNames,
		logger:       logger,
	}
}

// Build assembles the report for the given criteria and balance filter. A
// client appears in every section it has balances under; the grand total
// still counts it exactly once.
func (s *ReportService) Build(ctx context.Context, criteria entity.Criteria, filter entity.BalanceFilter, now time.Time) (*entity.Report, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.invoices.Query(ctx, criteria, now)
	if err != nil {
		s.logger.Error("Failed to query invoices for report", zap.Error(err))
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}

	// Balance filter applies per invoice, before any grouping.
	filtered := invoices[:0:0]
	for i := range invoices {
		if filter.Keep(&invoices[i]) {
			filtered = append(filtered, invoices[i])
		}
	}

	clientAggs, companyAggs, total := aggregate.Aggregate(filtered)
	lookup := s.lookupClients(ctx, clientAggs)

	report := &entity.Report{
		GeneratedAt: now,
		Filter:      filter,
		GrandTotal: entity.ReportGrandTotal{
			UniqueClients: total.UniqueClients,
			TotalAmount:   total.Amount,
		},
	}

	// Per-company sections, largest outstanding first. Each section is its
	// own aggregation over that company's invoices only.
	for _, co := range aggregate.SortedCompanies(companyAggs) {
		var companyInvoices []entity.Invoice
		for i := range filtered {
			if filtered[i].Company == co.Company {
				companyInvoices = append(companyInvoices, filtered[i])
			}
		}
		sectionAggs, _, sectionTotal := aggregate.Aggregate(companyInvoices)

		section := entity.CompanySection{
			Company:     co.Company,
			CompanyName: s.companyName(co.Company),
			Total:       sectionTotal.Amount,
		}
		for _, ca := range aggregate.SortedClients(sectionAggs) {
			line := entity.ReportLine{
				Tercero:    ca.Client,
				ClientName: entity.UnknownClientName,
				ClientCIF:  entity.UnknownClientCIF,
				Invoices:   ca.Invoices,
				Amount:     ca.Amount,
				Status:     ca.Worst,
			}
			if c, ok := lookup[entity.NormalizeTercero(ca.Client)]; ok {
				line.ClientName = c.Name
				line.ClientCIF = c.TaxID
			}
			section.Clients = append(section.Clients, line)
		}
		report.Sections = append(report.Sections, section)
	}

	s.logger.Info("Report built",
		zap.String("filter", string(filter)),
		zap.Int("sections", len(report.Sections)),
		zap.Int("unique_clients", report.GrandTotal.UniqueClients),
		zap.String("total_amount", report.GrandTotal.TotalAmount.StringFixed(2)))

	return report, nil
}

// Export hands a finalized report to the sink and returns the produced file
// path.
func (s *ReportService) Export(ctx context.Context, report *entity.Report) (string, error) {
	if s.sink == nil {
		return "", ErrExportUnavailable
	}
	path, err := s.sink.Write(ctx, report, report.Filter)
	if err != nil {
		s.logger.Error("Failed to export report", zap.Error(err))
		return "", fmt.Errorf("failed to export report: %w", err)
	}
	s.logger.Info("Report exported", zap.String("path", path))
	return path, nil
}

func (s *ReportService) companyName(code string) string {
	if name, ok := s.companyNames[code]; ok {
		return name
	}
	return code
}

func (s *ReportService) lookupClients(ctx context.Context, aggs map[string]*aggregate.ClientAggregate) map[string]entity.Client {
	ids := make([]string, 0, len(aggs))
	for tercero := range aggs {
		ids = append(ids, entity.NormalizeTercero(tercero))
	}
	if len(ids) == 0 {
		return nil
	}
	lookup, err := s.clients.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Client enrichment unavailable for report, using placeholders", zap.Error(err))
		return nil
	}
	return lookup
}
