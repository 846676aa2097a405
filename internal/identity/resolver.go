package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Recorder receives one outcome per Resolve call: the winning strategy name,
// "miss", "empty" or "error".
type Recorder interface {
	RecordResolution(target, outcome string)
}

type Resolver struct {
	store      Store
	target     Target
	strategies []Strategy
	recorder   Recorder
}

type Option func(*Resolver)

func WithRecorder(r Recorder) Option {
	return func(res *Resolver) { res.recorder = r }
}

// WithStrategies replaces the default chain for the target.
func WithStrategies(s ...Strategy) Option {
	return func(res *Resolver) { res.strategies = s }
}

func New(store Store, target Target, opts ...Option) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("identity store is required")
	}
	r := &Resolver{
		store:      store,
		target:     target,
		strategies: Strategies(target),
	}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.strategies) == 0 {
		return nil, fmt.Errorf("no lookup strategies for target %q", target)
	}
	return r, nil
}

func (r *Resolver) Target() Target { return r.target }

// Resolve walks the strategies in order and returns the first id found.
// ok is false when nothing matched or the session is empty; that is not an
// error. Store failures are returned as-is (wrapped) and stop the chain.
func (r *Resolver) Resolve(ctx context.Context, s Session) (string, bool, error) {
	s = NewSession(s.UserID, s.Email)
	if s.Empty() {
		r.record("empty")
		return "", false, nil
	}

	for _, st := range r.strategies {
		id, err := st.Lookup(ctx, r.store, s)
		if err != nil {
			r.record("error")
			return "", false, fmt.Errorf("resolve %s via %s: %w", r.target, st.Name, err)
		}
		if id = strings.TrimSpace(id); id != "" {
			r.record(st.Name)
			return id, true, nil
		}
	}

	r.record("miss")
	return "", false, nil
}

func (r *Resolver) record(outcome string) {
	if r.recorder != nil {
		r.recorder.RecordResolution(string(r.target), outcome)
	}
}
