package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/service"
)

// NotifierWorker invokes the notifier job on a fixed interval. Runs never
// overlap within one process: a tick arriving while a run is in progress is
// skipped and logged. Overlap with external cron invocations of the same job
// cannot be prevented here and remains a deployment concern.
type NotifierWorker struct {
	notifier *service.NotifierService
	logger   *zap.Logger

	interval time.Duration

	mu        sync.Mutex
	isRunning bool
	inRun     bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewNotifierWorker creates the scheduled notifier worker.
func NewNotifierWorker(notifier *service.NotifierService, interval time.Duration, logger *zap.Logger) *NotifierWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &NotifierWorker{
		notifier: notifier,
		logger:   logger,
		interval: interval,
	}
}

// Start starts the scheduling loop.
func (w *NotifierWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("notifier worker is already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true

	w.logger.Info("NotifierWorker started", zap.Duration("interval", w.interval))
	go w.loop()

	return nil
}

// Stop stops the scheduling loop. An in-flight run finishes on its own.
func (w *NotifierWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return nil
	}

	w.isRunning = false
	if w.cancel != nil {
		w.cancel()
	}

	w.logger.Info("NotifierWorker stopped")
	return nil
}

// Name returns the worker name for identification
func (w *NotifierWorker) Name() string {
	return "NotifierWorker"
}

func (w *NotifierWorker) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once immediately on start.
	w.runOnce()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.runOnce()
		}
	}
}

func (w *NotifierWorker) runOnce() {
	w.mu.Lock()
	if w.inRun {
		w.mu.Unlock()
		w.logger.Warn("Previous notifier run still in progress, skipping tick")
		return
	}
	w.inRun = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.inRun = false
		w.mu.Unlock()
	}()

	summary, err := w.notifier.RunOnce(w.ctx, time.Now())
	if err != nil {
		w.logger.Error("Scheduled notifier run failed", zap.Error(err))
		return
	}
	w.logger.Info("Scheduled notifier run finished",
		zap.Int("attempted", summary.Attempted),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))
}
