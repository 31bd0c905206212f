package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplyMatchesKeywords(t *testing.T) {
	s := New()

	tt := []struct {
		message string
		want    string
	}{
		{"I've been so sad lately", rules[0].reply},
		{"Feeling really ANXIOUS about tomorrow", rules[1].reply},
		{"the pressure at work is too much", rules[2].reply},
		{"thank you for listening", rules[3].reply},
		{"i need some support", rules[4].reply},
		{"I'm so mad right now", rules[5].reply},
		{"completely exhausted today", rules[6].reply},
		{"I feel so alone", rules[7].reply},
	}

	for _, ts := range tt {
		assert.Equal(t, ts.want, s.Reply(ts.message), "message %q", ts.message)
	}
}

func TestReplyFallsBackToPool(t *testing.T) {
	s := New()
	s.pick = func(int) int { return 3 }

	assert.Equal(t, fallbacks[3], s.Reply("the weather is nice"))
}

func TestReplyFallbackAlwaysInPool(t *testing.T) {
	s := New()
	got := s.Reply("something entirely neutral")
	assert.Contains(t, fallbacks, got)
}
