// Package worker evaluates budget alerts in the background and publishes
// them when they change.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"subtrack/internal/amqp"
	"subtrack/internal/analytics"
	applog "subtrack/internal/log"
	"subtrack/internal/ports"
)

// DashboardSource computes fresh dashboard stats.
type DashboardSource interface {
	Dashboard(ctx context.Context) (analytics.DashboardStats, error)
}

// AlertPublisher delivers an alert set.
type AlertPublisher interface {
	PublishBudgetAlerts(ctx context.Context, alerts []string, generatedAt time.Time) error
}

// ChangeConsumer streams record-change events until ctx ends.
type ChangeConsumer interface {
	ConsumeRecordChanges(ctx context.Context, handler func(context.Context, *amqp.RecordChangedMessage) error) error
}

// AlertWorker publishes the budget alert set whenever it differs from the
// last one published. Empty sets are never published.
type AlertWorker struct {
	source    DashboardSource
	publisher AlertPublisher
	clock     ports.Clock
	logger    *applog.Logger

	mu   sync.Mutex
	last []string
}

func NewAlertWorker(source DashboardSource, publisher AlertPublisher, clock ports.Clock, logger *applog.Logger) *AlertWorker {
	if clock == nil {
		clock = ports.SystemClock
	}
	return &AlertWorker{
		source:    source,
		publisher: publisher,
		clock:     clock,
		logger:    logger.OrDefault(applog.ComponentWorker),
	}
}

// Evaluate recomputes the alerts and publishes them if they changed. It
// reports whether a message was sent.
func (w *AlertWorker) Evaluate(ctx context.Context) (bool, error) {
	// Serialise evaluations so two triggers never publish the same set.
	w.mu.Lock()
	defer w.mu.Unlock()

	stats, err := w.source.Dashboard(ctx)
	if err != nil {
		return false, fmt.Errorf("compute dashboard: %w", err)
	}
	alerts := stats.BudgetAlerts

	if slices.Equal(alerts, w.last) {
		w.logger.DebugContext(ctx, "Budget alerts unchanged", applog.FieldCount, len(alerts))
		return false, nil
	}
	if len(alerts) == 0 {
		w.logger.InfoContext(ctx, "Budget alerts cleared")
		w.last = nil
		return false, nil
	}

	if err := w.publisher.PublishBudgetAlerts(ctx, alerts, w.clock.Now()); err != nil {
		return false, fmt.Errorf("publish budget alerts: %w", err)
	}
	w.last = slices.Clone(alerts)
	w.logger.InfoContext(ctx, "Published budget alerts",
		applog.FieldCount, len(alerts),
		applog.FieldAlerts, alerts)
	return true, nil
}

// HandleRecordChanged re-evaluates after a write elsewhere.
func (w *AlertWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	w.logger.DebugContext(ctx, "Record change received",
		applog.NewFields().WithRecord(msg.Entity, msg.ID).WithOperation(msg.Operation).ToArgs()...)
	_, err := w.Evaluate(ctx)
	return err
}

// Run evaluates once, then on every schedule tick and on every consumed
// change event, until ctx is cancelled. consumer may be nil.
func (w *AlertWorker) Run(ctx context.Context, schedule string, consumer ChangeConsumer) error {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(w.logger.Handler(), slog.LevelWarn))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	if _, err := c.AddFunc(schedule, func() { w.evaluateLogged(ctx, "schedule") }); err != nil {
		return fmt.Errorf("schedule alert evaluation %q: %w", schedule, err)
	}
	w.logger.InfoContext(ctx, "Scheduled alert evaluation", "schedule", schedule)

	w.evaluateLogged(ctx, "startup")
	c.Start()

	consumeErr := make(chan error, 1)
	if consumer != nil {
		go func() {
			consumeErr <- consumer.ConsumeRecordChanges(ctx, w.HandleRecordChanged)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-consumeErr:
		if err != nil && ctx.Err() == nil {
			err = fmt.Errorf("consume record changes: %w", err)
		} else {
			err = nil
		}
	}

	<-c.Stop().Done()
	w.logger.Info("Alert worker stopped")
	return err
}

func (w *AlertWorker) evaluateLogged(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	if _, err := w.Evaluate(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Alert evaluation failed", "trigger", trigger, applog.FieldError, err)
	}
}
