package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/port"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// DueScanner finds follow-up actions whose reminder has come due. It is
// read-only: it never flips sent flags, so a scan doubles as a dry run.
type DueScanner struct {
	actions port.ActionRepository
	ledger  port.InvoiceRepository // nil disables the settled-invoice check
	base    entity.Criteria
	logger  *zap.Logger
}

// NewDueScanner creates a scanner. ledger, when non-nil, is used to skip
// actions whose referenced invoice the ledger already marks as paid.
func NewDueScanner(actions port.ActionRepository, ledger port.InvoiceRepository, base entity.Criteria, logger *zap.Logger) *DueScanner {
	return &DueScanner{actions: actions, ledger: ledger, base: base, logger: logger}
}

// ScanResult separates the actions to dispatch from those skipped because
// their invoice is already settled.
type ScanResult struct {
	Due     []entity.FollowUpAction
	Skipped []entity.FollowUpAction
}

// Scan returns actions with a reminder at or before now that have not been
// marked sent, minus those whose referenced invoice is settled.
func (s *DueScanner) Scan(ctx context.Context, now time.Time) (*ScanResult, error) {
	actions, err := s.actions.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due actions: %w", err)
	}

	result := &ScanResult{}
	for _, action := range actions {
		settled, err := s.invoiceSettled(ctx, &action, now)
		if err != nil {
			// A ledger hiccup must not drop a reminder; dispatch anyway.
			s.logger.Warn("Could not verify invoice state, keeping action",
				zap.Int64("action_id", action.ID), zap.Error(err))
			settled = false
		}
		if settled {
			s.logger.Info("Skipping action: referenced invoice is settled",
				zap.Int64("action_id", action.ID),
				zap.String("tercero", action.Tercero),
				zap.String("invoice", action.InvoiceRef()))
			result.Skipped = append(result.Skipped, action)
			continue
		}
		result.Due = append(result.Due, action)
	}

	return result, nil
}

// invoiceSettled checks the ledger for the action's invoice reference. The
// lookup deliberately drops the pending-only predicate so a settled row is
// visible at all.
func (s *DueScanner) invoiceSettled(ctx context.Context, action *entity.FollowUpAction, now time.Time) (bool, error) {
	if s.ledger == nil || action.Tercero == "" || action.InvoiceEntry == "" {
		return false, nil
	}

	criteria := s.base.WithTercero(action.Tercero)
	criteria.PendingOnly = false

	invoices, err := s.ledger.Query(ctx, criteria, now)
	if err != nil {
		return false, err
	}
	for i := range invoices {
		inv := &invoices[i]
		if inv.Type == action.InvoiceType && inv.Entry == action.InvoiceEntry {
			return inv.Settled(), nil
		}
	}
	return false, nil
}
