package ratelimit_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalion/evalion/internal/identity"
	"github.com/evalion/evalion/internal/ratelimit"
	"github.com/evalion/evalion/internal/ratelimit/memory"
)

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Duration) (ratelimit.Snapshot, error) {
	return ratelimit.Snapshot{}, errors.New("store unreachable")
}
func (failingStore) Close() error { return nil }

func newGate(t *testing.T, store ratelimit.Store, onDegraded func(ratelimit.Class)) *ratelimit.Gate {
	t.Helper()
	policies := ratelimit.DefaultPolicies()
	policies[ratelimit.ClassChat] = ratelimit.Policy{Limit: 2, Window: time.Minute}
	registry, err := ratelimit.NewRegistry(policies)
	require.NoError(t, err)

	return ratelimit.NewGate(
		store,
		registry,
		ratelimit.NewClassifier(),
		identity.NewResolver(nil),
		time.Second,
		zerolog.Nop(),
		onDegraded,
	)
}

func TestGateCountsDownAndRejects(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewWithClock(func() time.Time { return now })
	gate := newGate(t, store, nil)

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	// chat policy is 2/minute for this gate
	dec := gate.Check(req)
	assert.True(t, dec.Allowed)
	assert.Equal(t, 2, dec.Limit)
	assert.Equal(t, 1, dec.Remaining)
	assert.Equal(t, ratelimit.ClassChat, dec.Class)

	dec = gate.Check(req)
	assert.True(t, dec.Allowed)
	assert.Equal(t, 0, dec.Remaining)

	dec = gate.Check(req)
	assert.False(t, dec.Allowed)
	assert.Equal(t, 0, dec.Remaining)
	assert.Equal(t, now.Add(time.Minute), dec.ResetAt)
}

func TestGateWindowReset(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewWithClock(func() time.Time { return now })
	gate := newGate(t, store, nil)

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	for i := 0; i < 3; i++ {
		gate.Check(req)
	}
	require.False(t, gate.Check(req).Allowed)

	now = now.Add(time.Minute + time.Second)

	dec := gate.Check(req)
	assert.True(t, dec.Allowed)
	assert.Equal(t, 1, dec.Remaining, "fresh window, not cumulative")
}

func TestGateIdentitiesAreIndependent(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewWithClock(func() time.Time { return now })
	gate := newGate(t, store, nil)

	first := httptest.NewRequest("POST", "/api/chat", nil)
	first.Header.Set("X-Forwarded-For", "1.2.3.4")
	second := httptest.NewRequest("POST", "/api/chat", nil)
	second.Header.Set("X-Forwarded-For", "5.6.7.8")

	for i := 0; i < 3; i++ {
		gate.Check(first)
	}
	require.False(t, gate.Check(first).Allowed)

	dec := gate.Check(second)
	assert.True(t, dec.Allowed)
	assert.Equal(t, 1, dec.Remaining)
}

func TestGateFailsOpenOnStoreError(t *testing.T) {
	var degraded []ratelimit.Class
	gate := newGate(t, failingStore{}, func(c ratelimit.Class) { degraded = append(degraded, c) })

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	dec := gate.Check(req)
	assert.True(t, dec.Allowed)
	assert.True(t, dec.Degraded)
	assert.Equal(t, 0, dec.Limit)
	assert.Equal(t, 0, dec.Remaining)
	assert.Equal(t, []ratelimit.Class{ratelimit.ClassChat}, degraded)
}

func TestGateSeparatesClasses(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewWithClock(func() time.Time { return now })
	gate := newGate(t, store, nil)

	chatReq := httptest.NewRequest("POST", "/api/chat", nil)
	chatReq.Header.Set("X-Forwarded-For", "1.2.3.4")
	generalReq := httptest.NewRequest("GET", "/api/unknown", nil)
	generalReq.Header.Set("X-Forwarded-For", "1.2.3.4")

	for i := 0; i < 3; i++ {
		gate.Check(chatReq)
	}
	require.False(t, gate.Check(chatReq).Allowed)

	dec := gate.Check(generalReq)
	assert.True(t, dec.Allowed)
	assert.Equal(t, ratelimit.ClassGeneral, dec.Class)
	assert.Equal(t, 60, dec.Limit)
}
