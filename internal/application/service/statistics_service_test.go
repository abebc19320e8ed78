package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

var testNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func testCriteria() entity.Criteria {
	return entity.DefaultCriteria(entity.DefaultExcludedTypes, entity.DefaultCollective, entity.DefaultCompanies)
}

func fixtureInvoice(client, company, amount string, level *int, due time.Time) entity.Invoice {
	return entity.Invoice{
		Type:             "FC",
		Entry:            "E" + client + due.Format("0102"),
		Company:          company,
		Collective:       entity.DefaultCollective,
		Client:           client,
		DueDate:          due,
		Amount:           decimal.RequireFromString(amount),
		Paid:             decimal.Zero,
		ReclamationLevel: level,
	}
}

func intPtr(v int) *int { return &v }

func TestStatisticsService_Snapshot(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	invoices := &mockInvoiceRepo{invoices: []entity.Invoice{
		fixtureInvoice("00542", "S005", "1500.50", intPtr(1), due),
		fixtureInvoice("00542", "S001", "200.00", nil, due.AddDate(0, 0, 5)),
		fixtureInvoice("00777", "S010", "3000.00", intPtr(3), due.AddDate(0, 0, -10)),
		// Excluded by type: must not affect any total.
		{Type: "AA", Company: "S005", Collective: entity.DefaultCollective, Client: "00999",
			DueDate: due, Amount: decimal.RequireFromString("9999.00"), Paid: decimal.Zero},
	}}
	clients := &mockClientRepo{clients: map[string]entity.Client{
		"542": {ID: "542", Name: "Construcciones Vega SL", TaxID: "B11111111"},
		"777": {ID: "777", Name: "Hoteles del Sur SA", TaxID: "A22222222"},
	}}

	svc := NewStatisticsService(invoices, clients, 50, 50, zap.NewNop())
	snapshot, err := svc.Snapshot(context.Background(), testCriteria(), testNow)
	require.NoError(t, err)

	assert.Equal(t, 2, snapshot.TotalCompaniesPending)
	assert.Equal(t, 3, snapshot.TotalInvoicesPending)
	assert.True(t, snapshot.TotalAmountOwed.Equal(decimal.RequireFromString("4700.50")))

	require.Len(t, snapshot.TopCompanies, 2)
	assert.Equal(t, "00777", snapshot.TopCompanies[0].Tercero)
	assert.Equal(t, "Hoteles del Sur SA", snapshot.TopCompanies[0].ClientName)
	assert.Equal(t, "00542", snapshot.TopCompanies[1].Tercero)

	// Most overdue first.
	require.Len(t, snapshot.MostOverdue, 3)
	assert.Equal(t, "00777", snapshot.MostOverdue[0].Tercero)
	assert.Equal(t, entity.StatusRed, snapshot.MostOverdue[0].Status)
}

func TestStatisticsService_SnapshotTruncation(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockInvoiceRepo{}
	for i := 0; i < 10; i++ {
		repo.invoices = append(repo.invoices, fixtureInvoice(
			string(rune('A'+i))+"0001", "S005", "100.00", nil, due.AddDate(0, 0, i)))
	}

	svc := NewStatisticsService(repo, &mockClientRepo{}, 3, 2, zap.NewNop())
	snapshot, err := svc.Snapshot(context.Background(), testCriteria(), testNow)
	require.NoError(t, err)

	assert.Len(t, snapshot.TopCompanies, 3)
	assert.Len(t, snapshot.MostOverdue, 2)
	assert.Equal(t, 10, snapshot.TotalCompaniesPending)
}

func TestStatisticsService_SnapshotValidatesCriteria(t *testing.T) {
	svc := NewStatisticsService(&mockInvoiceRepo{}, &mockClientRepo{}, 0, 0, zap.NewNop())

	_, err := svc.Snapshot(context.Background(), testCriteria().WithCompanies("S999"), testNow)
	var validation *entity.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestStatisticsService_SnapshotStorageFailure(t *testing.T) {
	repo := &mockInvoiceRepo{queryFunc: func(context.Context, entity.Criteria, time.Time) ([]entity.Invoice, error) {
		return nil, errors.New("connection busy")
	}}
	svc := NewStatisticsService(repo, &mockClientRepo{}, 0, 0, zap.NewNop())

	_, err := svc.Snapshot(context.Background(), testCriteria(), testNow)
	require.Error(t, err)
}

func TestStatisticsService_ClientSummaries(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	invoices := &mockInvoiceRepo{invoices: []entity.Invoice{
		fixtureInvoice("00542", "S005", "100.00", intPtr(2), due),
		fixtureInvoice("00542", "S001", "50.00", nil, due),
		fixtureInvoice("00777", "S010", "500.00", nil, due),
	}}
	clients := &mockClientRepo{clients: map[string]entity.Client{
		"542": {ID: "542", Name: "Construcciones Vega SL", TaxID: "B11111111"},
	}}

	svc := NewStatisticsService(invoices, clients, 0, 0, zap.NewNop())
	result, err := svc.ClientSummaries(context.Background(), testCriteria(), testNow)
	require.NoError(t, err)
	require.False(t, result.Degraded)
	require.Len(t, result.Clients, 2)

	assert.Equal(t, "00777", result.Clients[0].Tercero)
	// Missing client degrades to placeholders, never fails the query.
	assert.Equal(t, entity.UnknownClientName, result.Clients[0].ClientName)
	assert.Equal(t, entity.UnknownClientCIF, result.Clients[0].ClientCIF)

	assert.Equal(t, "00542", result.Clients[1].Tercero)
	assert.Equal(t, "Construcciones Vega SL", result.Clients[1].ClientName)
	assert.Equal(t, 2, result.Clients[1].Invoices)
	assert.Equal(t, entity.StatusYellow, result.Clients[1].Status)
}

// Ledger failure degrades the listing to an explicit empty result instead of
// an error.
func TestStatisticsService_ClientSummariesDegraded(t *testing.T) {
	repo := &mockInvoiceRepo{queryFunc: func(context.Context, entity.Criteria, time.Time) ([]entity.Invoice, error) {
		return nil, errors.New("connection busy")
	}}
	svc := NewStatisticsService(repo, &mockClientRepo{}, 0, 0, zap.NewNop())

	result, err := svc.ClientSummaries(context.Background(), testCriteria(), testNow)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Empty(t, result.Clients)
}

// A failing client store must not fail the snapshot, only the enrichment.
func TestStatisticsService_EnrichmentFailureTolerated(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	invoices := &mockInvoiceRepo{invoices: []entity.Invoice{
		fixtureInvoice("00542", "S005", "100.00", nil, due),
	}}
	clients := &mockClientRepo{getByIDsFunc: func(context.Context, []string) (map[string]entity.Client, error) {
		return nil, errors.New("client store down")
	}}

	svc := NewStatisticsService(invoices, clients, 0, 0, zap.NewNop())
	snapshot, err := svc.Snapshot(context.Background(), testCriteria(), testNow)
	require.NoError(t, err)
	require.Len(t, snapshot.TopCompanies, 1)
	assert.Equal(t, entity.UnknownClientName, snapshot.TopCompanies[0].ClientName)
}
