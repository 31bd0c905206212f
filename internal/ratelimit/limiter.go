package ratelimit

import (
	"context"
	"time"
)

// Class names one endpoint class. The set is closed: every class the
// classifier can emit is listed below and validated against the registry
// at startup.
type Class string

const (
	ClassChat       Class = "chat"
	ClassVoice      Class = "voice"
	ClassAuthLogin  Class = "authLogin"
	ClassAuthSignup Class = "authSignup"
	ClassPayment    Class = "payment"
	ClassGeneral    Class = "general"
)

// Classes returns every endpoint class the classifier can emit.
func Classes() []Class {
	return []Class{ClassChat, ClassVoice, ClassAuthLogin, ClassAuthSignup, ClassPayment, ClassGeneral}
}

type Policy struct {
	Limit  int           // requests per window
	Window time.Duration // fixed window length
}

// Snapshot is the counter state for one key right after an increment.
type Snapshot struct {
	Count   int64
	ResetAt time.Time // when the current window ends
}

// Store counts requests per key within a fixed window. Increment must be
// atomic per key under concurrent callers. An error means "state unknown",
// never allowed or denied; the caller decides what unknown implies.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (Snapshot, error)
	Close() error
}

type Decision struct {
	Class     Class
	Allowed   bool
	Degraded  bool // store unavailable, allowed without counting
	Limit     int
	Remaining int // min 0
	ResetAt   time.Time
}
