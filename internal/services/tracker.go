// Package services coordinates record writes, change events and the
// analytics read side.
package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"subtrack/internal/analytics"
	"subtrack/internal/cache"
	applog "subtrack/internal/log"
	"subtrack/internal/ports"
)

// Publisher announces committed writes.
type Publisher interface {
	PublishRecordChanged(ctx context.Context, entity, id, operation string) error
}

// Insights is the cached read model behind the dashboard and suggestion
// endpoints. Both are computed from the same snapshot.
type Insights struct {
	Stats       analytics.DashboardStats
	Suggestions []string
}

const insightsKey = "insights"

// Tracker orchestrates record writes and the analytics read side over one
// store.
type Tracker struct {
	store     ports.Store
	engine    *analytics.Engine
	clock     ports.Clock
	publisher Publisher
	insights  cache.Cache[Insights]
	logger    *applog.Logger
	newID     func() string

	// generation is bumped by every write so a computation that raced a
	// write never populates the cache. cacheMu orders the bump and purge
	// against the check and fill.
	cacheMu    sync.Mutex
	generation atomic.Uint64
}

type Option func(*Tracker)

func WithClock(c ports.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithPublisher enables change events. A nil publisher disables them.
func WithPublisher(p Publisher) Option {
	return func(t *Tracker) { t.publisher = p }
}

// WithInsightsCache caches dashboard and suggestion results between writes.
func WithInsightsCache(c cache.Cache[Insights]) Option {
	return func(t *Tracker) { t.insights = c }
}

func WithLogger(l *applog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithIDGenerator replaces the uuid generator used for new records.
func WithIDGenerator(f func() string) Option {
	return func(t *Tracker) { t.newID = f }
}

func NewTracker(store ports.Store, engine *analytics.Engine, opts ...Option) *Tracker {
	t := &Tracker{
		store:  store,
		engine: engine,
		clock:  ports.SystemClock,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.engine == nil {
		t.engine = analytics.New(analytics.DefaultThresholds())
	}
	t.logger = t.logger.OrDefault(applog.ComponentTracker)
	return t
}

// Engine returns the analytics engine the tracker computes with.
func (t *Tracker) Engine() *analytics.Engine {
	return t.engine
}

// Ping reports whether the store is reachable.
func (t *Tracker) Ping(ctx context.Context) error {
	return t.store.Ping(ctx)
}

// changed runs after every committed write: it drops cached insights and
// announces the change. Publish failures are logged only; the write stands.
func (t *Tracker) changed(ctx context.Context, entity, id, op string) {
	t.cacheMu.Lock()
	t.generation.Add(1)
	if t.insights != nil {
		t.insights.Purge()
	}
	t.cacheMu.Unlock()

	if t.publisher == nil {
		t.logger.DebugContext(ctx, "No publisher configured, skipping change event",
			applog.FieldEntity, entity, applog.FieldRecordID, id)
		return
	}
	if err := t.publisher.PublishRecordChanged(ctx, entity, id, op); err != nil {
		t.logger.ErrorContext(ctx, "Failed to publish change event",
			applog.NewFields().WithRecord(entity, id).WithOperation(op).WithError(err).ToArgs()...)
	}
}
