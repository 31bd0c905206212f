// Package identity derives a stable rate-limit identity from a request:
// the authenticated user when the bearer token verifies, otherwise the
// caller's network address.
package identity

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type Kind int

const (
	KindAddress Kind = iota
	KindUser
)

type Identity struct {
	Kind  Kind
	Value string
}

// Key serializes the identity for use in counter keys.
func (id Identity) Key() string {
	if id.Kind == KindUser {
		return "user:" + id.Value
	}
	return "ip:" + id.Value
}

// Verifier turns a bearer token into a principal id.
type Verifier interface {
	Verify(token string) (string, error)
}

// JWTVerifier verifies HS256 tokens and returns the subject claim.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

func (v *JWTVerifier) Verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", err
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}

// Resolver prefers the verified principal, then falls back through the
// usual proxy headers to the peer address. Resolve never fails: a bad
// token just means address-based identity.
type Resolver struct {
	verifier Verifier
}

func NewResolver(verifier Verifier) *Resolver {
	return &Resolver{verifier: verifier}
}

func (r *Resolver) Resolve(req *http.Request) Identity {
	if r.verifier != nil {
		if token := bearerToken(req); token != "" {
			if sub, err := r.verifier.Verify(token); err == nil {
				return Identity{Kind: KindUser, Value: sub}
			}
		}
	}
	return Identity{Kind: KindAddress, Value: clientIP(req)}
}

func bearerToken(req *http.Request) string {
	h := req.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func clientIP(req *http.Request) string {
	if fwd := req.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if real := req.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	if host, _, err := net.SplitHostPort(req.RemoteAddr); err == nil && host != "" {
		return host
	}
	if req.RemoteAddr != "" {
		return req.RemoteAddr
	}
	return "anonymous"
}
