// Package repository implements the storage ports over database/sql. Every
// method fully materializes its result set before returning, so two logical
// queries never interleave on one physical connection.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/port"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// InvoiceRepository reads the accounts-receivable ledger. The WHERE clause is
// generated from the Criteria value, never hand-assembled per call site, so
// the SQL pushdown matches entity.Criteria.Matches.
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a ledger reader.
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) port.InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

// Query returns the invoices covered by the criteria, fully materialized.
func (r *InvoiceRepository) Query(ctx context.Context, criteria entity.Criteria, now time.Time) ([]entity.Invoice, error) {
	where, args := buildInvoiceWhere(criteria, now)
	query := `
		SELECT tipo, asiento, sociedad, planta, moneda, colectivo, tercero,
			vencimiento, forma_pago, sentido, importe, pago,
			nivel_reclamacion, fecha_reclamacion, check_pago
		FROM gaccdudate
	` + where

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read invoices: %w", err)
	}

	return invoices, nil
}

// buildInvoiceWhere translates a Criteria value into SQL. The predicate set
// and semantics mirror entity.Criteria.Matches exactly.
func buildInvoiceWhere(c entity.Criteria, now time.Time) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if len(c.ExcludedTypes) > 0 {
		clauses = append(clauses, fmt.Sprintf("tipo NOT IN (%s)", placeholders(len(c.ExcludedTypes))))
		for _, t := range c.ExcludedTypes {
			args = append(args, t)
		}
	}
	if c.Collective != "" {
		clauses = append(clauses, "colectivo = ?")
		args = append(args, c.Collective)
	}
	if c.PendingOnly {
		clauses = append(clauses, "(check_pago IS NULL OR check_pago = 0)")
	}
	if companies := c.EffectiveCompanies(); len(companies) > 0 {
		clauses = append(clauses, fmt.Sprintf("sociedad IN (%s)", placeholders(len(companies))))
		for _, company := range companies {
			args = append(args, company)
		}
	}
	if c.Tercero != "" {
		clauses = append(clauses, "tercero = ?")
		args = append(args, c.Tercero)
	}
	if c.DueFrom != nil {
		clauses = append(clauses, "vencimiento >= ?")
		args = append(args, c.DueFrom.Format(time.RFC3339))
	}
	if c.DueTo != nil {
		clauses = append(clauses, "vencimiento <= ?")
		args = append(args, c.DueTo.Format(time.RFC3339))
	}
	if c.ReclamationLevel != nil {
		clauses = append(clauses, "COALESCE(nivel_reclamacion, 0) = ?")
		args = append(args, *c.ReclamationLevel)
	}
	if c.OverdueOnly {
		clauses = append(clauses, "vencimiento < ?")
		args = append(args, now.Format(time.RFC3339))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanInvoice(rows *sql.Rows) (entity.Invoice, error) {
	var inv entity.Invoice
	var dueDate string
	var amount, paid string
	var level sql.NullInt64
	var reclamationDate sql.NullString
	var paidFlag sql.NullBool

	err := rows.Scan(
		&inv.Type,
		&inv.Entry,
		&inv.Company,
		&inv.Plant,
		&inv.Currency,
		&inv.Collective,
		&inv.Client,
		&dueDate,
		&inv.PaymentMethod,
		&inv.Sign,
		&amount,
		&paid,
		&level,
		&reclamationDate,
		&paidFlag,
	)
	if err != nil {
		return entity.Invoice{}, fmt.Errorf("failed to scan invoice: %w", err)
	}

	if inv.DueDate, err = time.Parse(time.RFC3339, dueDate); err != nil {
		return entity.Invoice{}, fmt.Errorf("failed to parse due date %q: %w", dueDate, err)
	}
	// Amounts are stored as decimal text; float round-tripping would break
	// the to-the-cent parity between snapshot and report.
	if inv.Amount, err = decimal.NewFromString(amount); err != nil {
		return entity.Invoice{}, fmt.Errorf("failed to parse amount %q: %w", amount, err)
	}
	if inv.Paid, err = decimal.NewFromString(paid); err != nil {
		return entity.Invoice{}, fmt.Errorf("failed to parse paid amount %q: %w", paid, err)
	}
	if level.Valid {
		v := int(level.Int64)
		inv.ReclamationLevel = &v
	}
	if reclamationDate.Valid {
		t, err := time.Parse(time.RFC3339, reclamationDate.String)
		if err != nil {
			return entity.Invoice{}, fmt.Errorf("failed to parse reclamation date %q: %w", reclamationDate.String, err)
		}
		inv.ReclamationDate = &t
	}
	if paidFlag.Valid {
		v := paidFlag.Bool
		inv.PaidFlag = &v
	}

	return inv, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
