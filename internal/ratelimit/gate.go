package ratelimit

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/evalion/evalion/internal/identity"
)

// Gate is the per-request rate-limit decision. It owns the only path to
// the counter store; nothing else mutates counter state.
type Gate struct {
	store      Store
	registry   *Registry
	classifier *Classifier
	resolver   *identity.Resolver
	timeout    time.Duration
	logger     zerolog.Logger

	// onDegraded is called when a decision was allowed only because the
	// store was unavailable. Optional.
	onDegraded func(class Class)
}

func NewGate(
	store Store,
	registry *Registry,
	classifier *Classifier,
	resolver *identity.Resolver,
	timeout time.Duration,
	logger zerolog.Logger,
	onDegraded func(class Class),
) *Gate {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Gate{
		store:      store,
		registry:   registry,
		classifier: classifier,
		resolver:   resolver,
		timeout:    timeout,
		logger:     logger,
		onDegraded: onDegraded,
	}
}

// Check resolves identity and policy for the request and spends one unit
// of its quota. A store failure or timeout yields a degraded allow: we
// would rather serve traffic uncounted than reject it on an infra outage.
func (g *Gate) Check(r *http.Request) Decision {
	id := g.resolver.Resolve(r)
	class := g.classifier.Classify(r.URL.Path)
	policy := g.registry.Resolve(class)
	key := string(class) + ":" + id.Key()

	ctx, cancel := context.WithTimeout(r.Context(), g.timeout)
	defer cancel()

	snap, err := g.store.Increment(ctx, key, policy.Window)
	if err != nil {
		g.logger.Warn().
			Err(err).
			Str("class", string(class)).
			Msg("counter store unavailable, allowing request uncounted")
		if g.onDegraded != nil {
			g.onDegraded(class)
		}
		return Decision{Class: class, Allowed: true, Degraded: true}
	}

	remaining := policy.Limit - int(snap.Count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Class:     class,
		Allowed:   snap.Count <= int64(policy.Limit),
		Limit:     policy.Limit,
		Remaining: remaining,
		ResetAt:   snap.ResetAt,
	}
}
