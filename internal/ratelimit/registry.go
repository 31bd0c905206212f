package ratelimit

import (
	"fmt"
	"time"
)

// Registry holds the per-class policies. Read-only after construction.
type Registry struct {
	policies map[Class]Policy
}

// DefaultPolicies mirrors the limits the public API ships with.
func DefaultPolicies() map[Class]Policy {
	return map[Class]Policy{
		ClassChat:       {Limit: 20, Window: time.Minute},
		ClassVoice:      {Limit: 10, Window: time.Minute},
		ClassAuthLogin:  {Limit: 5, Window: 5 * time.Minute},
		ClassAuthSignup: {Limit: 3, Window: 10 * time.Minute},
		ClassPayment:    {Limit: 3, Window: time.Minute},
		ClassGeneral:    {Limit: 60, Window: time.Minute},
	}
}

// NewRegistry validates that every known class has a sane policy. A missing
// or invalid policy is a configuration bug, so this is meant to be called
// once at startup and treated as fatal.
func NewRegistry(policies map[Class]Policy) (*Registry, error) {
	for _, c := range Classes() {
		p, ok := policies[c]
		if !ok {
			return nil, fmt.Errorf("no policy registered for endpoint class %q", c)
		}
		if p.Limit < 1 {
			return nil, fmt.Errorf("policy %q: limit must be >= 1, got %d", c, p.Limit)
		}
		if p.Window < time.Millisecond {
			return nil, fmt.Errorf("policy %q: window must be >= 1ms, got %s", c, p.Window)
		}
	}
	return &Registry{policies: policies}, nil
}

func (r *Registry) Resolve(c Class) Policy {
	return r.policies[c]
}
