package services

import (
	"context"
	"fmt"
	"strings"

	"subtrack/internal/core"
	applog "subtrack/internal/log"
	"subtrack/internal/ports"
)

// CreateSubscription validates in and stores a new active subscription.
func (t *Tracker) CreateSubscription(ctx context.Context, in core.SubscriptionInput) (core.Subscription, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Subscription{}, err
	}

	sub, err := t.store.InsertSubscription(ctx, core.Subscription{
		ID:               t.newID(),
		Name:             in.Name,
		Cost:             in.Cost,
		BillingFrequency: in.BillingFrequency,
		NextDueDate:      in.NextDueDate.Time,
		Category:         in.Category,
		IsActive:         true,
		CreatedAt:        t.clock.Now(),
	})
	if err != nil {
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	t.changed(ctx, applog.EntitySubscription, sub.ID, applog.OpCreate)
	return sub, nil
}

// ListSubscriptions returns active subscriptions unless the filter asks
// otherwise.
func (t *Tracker) ListSubscriptions(ctx context.Context, f ports.SubscriptionFilter) ([]core.Subscription, error) {
	if f.Active == nil {
		f.Active = ports.Bool(true)
	}
	subs, err := t.store.FindSubscriptions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

func (t *Tracker) GetSubscription(ctx context.Context, id string) (core.Subscription, error) {
	return t.store.FindSubscription(ctx, id)
}

func (t *Tracker) UpdateSubscription(ctx context.Context, id string, p core.SubscriptionPatch) (core.Subscription, error) {
	p.Name = trimmed(p.Name)
	if err := p.Validate(); err != nil {
		return core.Subscription{}, err
	}

	sub, err := t.store.UpdateSubscription(ctx, id, p)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("update subscription: %w", err)
	}

	t.changed(ctx, applog.EntitySubscription, id, applog.OpUpdate)
	return sub, nil
}

// DeleteSubscription retires the subscription; it stays in exports.
func (t *Tracker) DeleteSubscription(ctx context.Context, id string) error {
	if err := t.store.RetireSubscription(ctx, id); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	t.changed(ctx, applog.EntitySubscription, id, applog.OpDelete)
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
