// Package edge is the single interception point every inbound request
// passes through before routing: CORS preflight handling, rate limiting
// for API paths, and security header decoration.
package edge

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/evalion/evalion/internal/ratelimit"
)

type Middleware func(http.Handler) http.Handler

// Chain wraps h with the given middlewares; the first listed runs
// outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type Interceptor struct {
	gate      *ratelimit.Gate
	cors      *CORS
	base      HeaderSet
	now       func() time.Time
	onLimited func(class ratelimit.Class)
}

func NewInterceptor(gate *ratelimit.Gate, cors *CORS, csp string, onLimited func(class ratelimit.Class)) *Interceptor {
	return &Interceptor{
		gate:      gate,
		cors:      cors,
		base:      SecurityHeaders(csp),
		now:       time.Now,
		onLimited: onLimited,
	}
}

func (i *Interceptor) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if r.Method == http.MethodOptions {
				i.preflight(w, origin)
				return
			}

			hs := i.base
			if i.cors.OriginAllowed(origin) {
				hs = hs.Merge(i.cors.RequestHeaders(origin))
			}

			if !isAPIPath(r.URL.Path) {
				hs.Apply(w.Header())
				next.ServeHTTP(w, r)
				return
			}

			hs = hs.Merge(HeaderSet{
				"Cache-Control": "no-store, no-cache, must-revalidate, proxy-revalidate, max-age=0",
			})

			dec := i.gate.Check(r)
			if dec.Limit > 0 {
				hs = hs.Merge(HeaderSet{
					"X-RateLimit-Limit":     strconv.Itoa(dec.Limit),
					"X-RateLimit-Remaining": strconv.Itoa(dec.Remaining),
					"X-RateLimit-Reset":     dec.ResetAt.UTC().Format(time.RFC3339),
				})
			}

			if !dec.Allowed {
				if i.onLimited != nil {
					i.onLimited(dec.Class)
				}
				hs = hs.Merge(HeaderSet{
					"Retry-After": strconv.FormatInt(retrySeconds(dec.ResetAt, i.now()), 10),
				})
				hs.Apply(w.Header())
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Rate limit exceeded","message":"Too many requests. Please try again later."}`))
				return
			}

			hs.Apply(w.Header())
			next.ServeHTTP(w, r)
		})
	}
}

// preflight short-circuits OPTIONS: allow-listed origins get the full
// CORS set and an empty 200, everything else a bare 403.
func (i *Interceptor) preflight(w http.ResponseWriter, origin string) {
	if !i.cors.OriginAllowed(origin) {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	i.base.Merge(i.cors.PreflightHeaders(origin)).Apply(w.Header())
	w.WriteHeader(http.StatusOK)
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

func retrySeconds(resetAt, now time.Time) int64 {
	secs := int64(math.Ceil(resetAt.Sub(now).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
