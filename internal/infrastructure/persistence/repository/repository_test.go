package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
	"github.com/developersatisa/gestor-back-facturas-pendientes/pkg/database"
)

var repoNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func openStore(t *testing.T, migrations []database.Migration) *database.DB {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.Open(database.Config{
		Path:         filepath.Join(t.TempDir(), "store.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Apply(migrations))
	return db
}

func insertInvoice(t *testing.T, db *database.DB, tipo, asiento, sociedad, colectivo, tercero, vencimiento, importe string, nivel interface{}, checkPago interface{}) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO gaccdudate (tipo, asiento, sociedad, colectivo, tercero, vencimiento, importe, nivel_reclamacion, check_pago)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tipo, asiento, sociedad, colectivo, tercero, vencimiento, importe, nivel, checkPago)
	require.NoError(t, err)
}

func baseCriteria() entity.Criteria {
	return entity.DefaultCriteria(entity.DefaultExcludedTypes, entity.DefaultCollective, entity.DefaultCompanies)
}

func TestInvoiceRepository_QueryAppliesFixedFilters(t *testing.T) {
	db := openStore(t, database.LedgerMigrations)
	repo := NewInvoiceRepository(db.DB, zap.NewNop())

	due := repoNow.AddDate(0, 0, 30).Format(time.RFC3339)
	insertInvoice(t, db, "FC", "000001", "S001", "4300", "00542", due, "1500.50", 3, nil)
	insertInvoice(t, db, "FC", "000006", "S005", "4300", "00777", due, "200.00", nil, 0)
	// Filtered out: excluded type, wrong collective, settled, and a company
	// outside the configured set.
	insertInvoice(t, db, "AA", "000002", "S001", "4300", "00542", due, "99.00", nil, nil)
	insertInvoice(t, db, "FC", "000003", "S001", "9999", "00542", due, "99.00", nil, nil)
	insertInvoice(t, db, "FC", "000004", "S001", "4300", "00542", due, "99.00", nil, 1)
	insertInvoice(t, db, "FC", "000005", "S999", "4300", "00542", due, "99.00", nil, nil)

	invoices, err := repo.Query(context.Background(), baseCriteria(), repoNow)
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	byEntry := make(map[string]entity.Invoice)
	for _, inv := range invoices {
		byEntry[inv.Entry] = inv
	}

	first := byEntry["000001"]
	assert.Equal(t, "00542", first.Client)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("1500.50")))
	require.NotNil(t, first.ReclamationLevel)
	assert.Equal(t, 3, *first.ReclamationLevel)
	assert.Equal(t, entity.StatusRed, first.Status())
	assert.Nil(t, first.PaidFlag)

	second := byEntry["000006"]
	assert.Nil(t, second.ReclamationLevel)
	assert.Equal(t, entity.StatusGreen, second.Status())
	require.NotNil(t, second.PaidFlag)
	assert.False(t, *second.PaidFlag)
}

func TestInvoiceRepository_QueryOptionalPredicates(t *testing.T) {
	db := openStore(t, database.LedgerMigrations)
	repo := NewInvoiceRepository(db.DB, zap.NewNop())

	past := repoNow.AddDate(0, 0, -10).Format(time.RFC3339)
	future := repoNow.AddDate(0, 0, 10).Format(time.RFC3339)
	insertInvoice(t, db, "FC", "000001", "S001", "4300", "00542", past, "100.00", nil, nil)
	insertInvoice(t, db, "FC", "000002", "S005", "4300", "00777", future, "200.00", 2, nil)

	// Tercero narrows to one client.
	invoices, err := repo.Query(context.Background(), baseCriteria().WithTercero("00542"), repoNow)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "000001", invoices[0].Entry)

	// A NULL stored level matches the level-zero predicate.
	invoices, err = repo.Query(context.Background(), baseCriteria().WithReclamationLevel(0), repoNow)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "000001", invoices[0].Entry)

	invoices, err = repo.Query(context.Background(), baseCriteria().WithReclamationLevel(2), repoNow)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "000002", invoices[0].Entry)

	// Only the past-due row is overdue at the reference instant.
	invoices, err = repo.Query(context.Background(), baseCriteria().WithOverdueOnly(), repoNow)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "000001", invoices[0].Entry)

	// Date range keeps the future row only.
	from := repoNow
	invoices, err = repo.Query(context.Background(), baseCriteria().WithDueRange(&from, nil), repoNow)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "000002", invoices[0].Entry)
}

func TestClientRepository_GetByIDs(t *testing.T) {
	db := openStore(t, database.ManagementMigrations)
	repo := NewClientRepository(db.DB, zap.NewNop())

	_, err := db.Exec(`INSERT INTO clientes (idcliente, razsoc, cif) VALUES (?, ?, ?)`,
		"542", "Transportes Vega SL", "B12345678")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO clientes (idcliente, razsoc, cif) VALUES (?, NULL, NULL)`, "777")
	require.NoError(t, err)

	clients, err := repo.GetByIDs(context.Background(), []string{"542", "777", "999"})
	require.NoError(t, err)
	require.Len(t, clients, 2)

	assert.Equal(t, "Transportes Vega SL", clients["542"].Name)
	assert.Equal(t, "B12345678", clients["542"].TaxID)

	// NULL columns come back as empty strings; the caller substitutes the
	// placeholders.
	assert.Equal(t, "", clients["777"].Name)
	assert.Equal(t, "", clients["777"].TaxID)

	// Unknown identifiers are omitted, not an error.
	_, ok := clients["999"]
	assert.False(t, ok)

	empty, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func insertAction(t *testing.T, db *database.DB, tercero string, aviso interface{}, enviada int) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO acciones_factura (idcliente, tercero, tipo, asiento, accion_tipo, descripcion, aviso, usuario, enviada)
		VALUES (?, ?, 'FC', '000123', 'Llamada', 'Reclamar pago', ?, 'gestor@atisa.es', ?)
	`, entity.NormalizeTercero(tercero), tercero, aviso, enviada)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestActionRepository_ListDue(t *testing.T) {
	db := openStore(t, database.ManagementMigrations)
	repo := NewActionRepository(db, zap.NewNop())

	later := insertAction(t, db, "00542", repoNow.Add(-time.Hour).Format(time.RFC3339), 0)
	earlier := insertAction(t, db, "00777", repoNow.AddDate(0, 0, -1).Format(time.RFC3339), 0)
	// Not due: future reminder, already sent, no reminder scheduled.
	insertAction(t, db, "00888", repoNow.AddDate(0, 0, 5).Format(time.RFC3339), 0)
	insertAction(t, db, "00999", repoNow.Add(-time.Hour).Format(time.RFC3339), 1)
	insertAction(t, db, "00111", nil, 0)

	actions, err := repo.ListDue(context.Background(), repoNow)
	require.NoError(t, err)
	require.Len(t, actions, 2)

	// Oldest reminder first.
	assert.Equal(t, earlier, actions[0].ID)
	assert.Equal(t, later, actions[1].ID)

	assert.Equal(t, "00777", actions[0].Tercero)
	assert.Equal(t, "777", actions[0].ClientID)
	assert.Equal(t, "Llamada", actions[0].Kind)
	assert.Equal(t, "FC-000123", actions[0].InvoiceRef())
	assert.False(t, actions[0].Sent)
	require.NotNil(t, actions[0].RemindAt)
	assert.Equal(t, repoNow.AddDate(0, 0, -1), actions[0].RemindAt.UTC())
}

func TestActionRepository_MarkSentGuardsSentFlag(t *testing.T) {
	db := openStore(t, database.ManagementMigrations)
	repo := NewActionRepository(db, zap.NewNop())

	id := insertAction(t, db, "00542", repoNow.Add(-time.Hour).Format(time.RFC3339), 0)

	require.NoError(t, repo.MarkSent(context.Background(), id, repoNow))

	actions, err := repo.ListDue(context.Background(), repoNow)
	require.NoError(t, err)
	assert.Empty(t, actions)

	// Marking twice or marking an unknown action is a visible error.
	assert.Error(t, repo.MarkSent(context.Background(), id, repoNow))
	assert.Error(t, repo.MarkSent(context.Background(), 9999, repoNow))
}
