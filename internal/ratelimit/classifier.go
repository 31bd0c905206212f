package ratelimit

import "strings"

type prefixRule struct {
	prefix string
	class  Class
}

// Classifier maps a request path to an endpoint class by first matching
// prefix. Rules are ordered most specific first; anything unmatched is
// the general class.
type Classifier struct {
	rules []prefixRule
}

func NewClassifier() *Classifier {
	return &Classifier{rules: []prefixRule{
		{"/api/auth/login", ClassAuthLogin},
		{"/api/auth/signup", ClassAuthSignup},
		{"/api/chat", ClassChat},
		{"/api/voice", ClassVoice},
		{"/api/payment", ClassPayment},
	}}
}

func (c *Classifier) Classify(path string) Class {
	for _, r := range c.rules {
		if strings.HasPrefix(path, r.prefix) {
			return r.class
		}
	}
	return ClassGeneral
}
