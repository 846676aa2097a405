// Package subscription answers whether a resolved usuario-estudiante holds
// an active pro plan.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"exam-portal/internal/domain/students"
)

// Store is the read capability the gate needs.
type Store interface {
	// SubscriptionExists reports whether owner has a row with status and
	// expires_at >= notBefore.
	SubscriptionExists(ctx context.Context, ownerID string, status students.SubscriptionStatus, notBefore time.Time) (bool, error)
	// LatestSubscription returns the row with the furthest expiry, or students.ErrNotFound.
	LatestSubscription(ctx context.Context, ownerID string) (*students.Subscription, error)
}

// Recorder receives "active", "inactive", "anonymous" or "error" per check.
type Recorder interface {
	RecordGateCheck(result string)
}

type Gate struct {
	store    Store
	now      func() time.Time
	recorder Recorder
}

type Option func(*Gate)

func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(g *Gate) { g.recorder = r }
}

func New(store Store, opts ...Option) (*Gate, error) {
	if store == nil {
		return nil, errors.New("subscription store is required")
	}
	g := &Gate{store: store, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// IsActive reports whether internalID owns an ACTIVE subscription expiring at
// or after now. An empty id is "no student" and returns false without a lookup.
func (g *Gate) IsActive(ctx context.Context, internalID string) (bool, error) {
	now := g.now()

	internalID = strings.TrimSpace(internalID)
	if internalID == "" {
		g.record("anonymous")
		return false, nil
	}

	ok, err := g.store.SubscriptionExists(ctx, internalID, students.StatusActive, now)
	if err != nil {
		g.record("error")
		return false, fmt.Errorf("check subscription for %s: %w", internalID, err)
	}
	if ok {
		g.record("active")
	} else {
		g.record("inactive")
	}
	return ok, nil
}

// Current returns the owner's most recent subscription row, or nil.
func (g *Gate) Current(ctx context.Context, internalID string) (*students.Subscription, error) {
	internalID = strings.TrimSpace(internalID)
	if internalID == "" {
		return nil, nil
	}
	sub, err := g.store.LatestSubscription(ctx, internalID)
	if errors.Is(err, students.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load subscription for %s: %w", internalID, err)
	}
	return sub, nil
}

func (g *Gate) record(result string) {
	if g.recorder != nil {
		g.recorder.RecordGateCheck(result)
	}
}
