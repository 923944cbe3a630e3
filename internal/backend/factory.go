package backend

import (
	"context"
	"errors"
	"fmt"

	"subtrack/internal/amqp"
	applog "subtrack/internal/log"
	"subtrack/internal/ports"
	"subtrack/internal/storage"
	"subtrack/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
	// dialAMQP is replaced in tests.
	dialAMQP func(url string, topo amqp.Topology, logger *applog.Logger) (*amqp.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *DefaultFactory {
	return &DefaultFactory{
		logger:   logger.OrDefault(applog.ComponentBackend),
		dialAMQP: amqp.NewClient,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store   ports.Store
		closers []func() error
	)
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger.WithComponent(applog.ComponentStorage))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store, closers = repo, append(closers, repo.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	var events *amqp.Client
	if config.AMQPURL != "" {
		client, err := f.dialAMQP(config.AMQPURL, config.AMQPTopology, f.logger.WithComponent(applog.ComponentAMQP))
		switch {
		case err != nil && config.RequireAMQP:
			_ = closeAll(closers)
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		case err != nil:
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		default:
			events, closers = client, append(closers, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPTopology.Exchange,
				"changes_queue", config.AMQPTopology.ChangesQueue,
				"alerts_queue", config.AMQPTopology.AlertsQueue)
		}
	}

	return &BackendResult{
		Store:   store,
		Events:  events,
		Cleanup: func() error { return closeAll(closers) },
	}, nil
}

// closeAll closes in reverse order of acquisition.
func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
