package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/port"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// JobSummary aggregates one notifier run for logging and alerting.
type JobSummary struct {
	Attempted int
	Sent      int
	Failed    int
	Skipped   int
}

// NotifierService drives one notifier run: scan due actions, dispatch each,
// persist outcomes, summarize. Safe to invoke repeatedly on a schedule: only
// not-yet-sent actions are ever selected, and an action is marked sent only
// after its primary channel succeeded. A transient outage therefore means a
// retry on the next run, never a dropped reminder.
type NotifierService struct {
	scanner    *DueScanner
	dispatcher *Dispatcher
	actions    port.ActionRepository
	clients    port.ClientRepository
	logger     *zap.Logger
}

// NewNotifierService creates the job driver.
func NewNotifierService(
	scanner *DueScanner,
	dispatcher *Dispatcher,
	actions port.ActionRepository,
	clients port.ClientRepository,
	logger *zap.Logger,
) *NotifierService {
	return &NotifierService{
		scanner:    scanner,
		dispatcher: dispatcher,
		actions:    actions,
		clients:    clients,
		logger:     logger,
	}
}

// ListDue returns the actions a run at now would dispatch, without side
// effects. This is the CLI's dry-run mode.
func (n *NotifierService) ListDue(ctx context.Context, now time.Time) (*ScanResult, error) {
	return n.scanner.Scan(ctx, now)
}

// RunOnce executes one notifier run. A single action's failure is isolated:
// it is counted and logged, and the batch continues.
func (n *NotifierService) RunOnce(ctx context.Context, now time.Time) (JobSummary, error) {
	scan, err := n.scanner.Scan(ctx, now)
	if err != nil {
		return JobSummary{}, fmt.Errorf("failed to scan due actions: %w", err)
	}

	summary := JobSummary{Skipped: len(scan.Skipped)}
	for i := range scan.Due {
		action := &scan.Due[i]
		summary.Attempted++

		client := n.resolveClient(ctx, action)
		result := n.dispatcher.Dispatch(ctx, action, client)

		if !result.PrimarySucceeded() {
			summary.Failed++
			n.logger.Warn("Action dispatch failed, will retry on next run",
				zap.Int64("action_id", action.ID),
				zap.String("overall", string(result.Overall)))
			continue
		}

		summary.Sent++
		if err := n.actions.MarkSent(ctx, action.ID, now); err != nil {
			// The reminder went out but the flag did not stick; the next run
			// will resend. Preferred over silently dropping a reminder.
			n.logger.Error("Failed to mark action sent, duplicate possible on next run",
				zap.Int64("action_id", action.ID), zap.Error(err))
			continue
		}
		n.logger.Info("Action reminder sent",
			zap.Int64("action_id", action.ID),
			zap.String("tercero", action.Tercero),
			zap.String("overall", string(result.Overall)))
	}

	n.logger.Info("Notifier run finished",
		zap.Int("attempted", summary.Attempted),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))

	return summary, nil
}

func (n *NotifierService) resolveClient(ctx context.Context, action *entity.FollowUpAction) entity.Client {
	id := entity.NormalizeTercero(action.Tercero)
	if id == "" {
		id = action.ClientID
	}
	if id == "" {
		return entity.Client{}
	}
	lookup, err := n.clients.GetByIDs(ctx, []string{id})
	if err != nil {
		n.logger.Warn("Client lookup failed for action, sending without enrichment",
			zap.Int64("action_id", action.ID), zap.Error(err))
		return entity.Client{}
	}
	return lookup[id]
}
