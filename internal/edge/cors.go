package edge

import "strings"

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Accept, Authorization, Content-Type, X-CSRF-Token, X-Requested-With"
	corsMaxAge  = "86400"
)

// CORS holds the origin allow-list. Read-only after construction. The
// allowed origin is always echoed back, never *, because responses carry
// credentials.
type CORS struct {
	allowed     map[string]struct{}
	development bool
}

func NewCORS(origins []string, development bool) *CORS {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}
	return &CORS{allowed: allowed, development: development}
}

func (c *CORS) OriginAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	if c.development &&
		(strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
		return true
	}
	_, ok := c.allowed[origin]
	return ok
}

// RequestHeaders is the CORS set for non-preflight responses to an
// allow-listed origin.
func (c *CORS) RequestHeaders(origin string) HeaderSet {
	return HeaderSet{
		"Access-Control-Allow-Origin":      origin,
		"Access-Control-Allow-Credentials": "true",
	}
}

// PreflightHeaders is the full CORS set for an allowed OPTIONS request.
func (c *CORS) PreflightHeaders(origin string) HeaderSet {
	return c.RequestHeaders(origin).Merge(HeaderSet{
		"Access-Control-Allow-Methods": corsMethods,
		"Access-Control-Allow-Headers": corsHeaders,
		"Access-Control-Max-Age":       corsMaxAge,
	})
}
