package edge

import "net/http"

// HeaderSet is an immutable bundle of response headers. Merge returns a
// new set so the interceptor stages can be composed and tested alone.
type HeaderSet map[string]string

func (h HeaderSet) Merge(other HeaderSet) HeaderSet {
	out := make(HeaderSet, len(h)+len(other))
	for k, v := range h {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

func (h HeaderSet) Apply(dst http.Header) {
	for k, v := range h {
		dst.Set(k, v)
	}
}

// DefaultCSP is the policy the original deployment shipped; treated as
// opaque configuration, overridable in the config file.
const DefaultCSP = "default-src 'self'; " +
	"script-src 'self' 'unsafe-eval' 'unsafe-inline' https://js.stripe.com https://www.googleapis.com https://apis.google.com; " +
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; " +
	"img-src 'self' data: https: blob:; " +
	"font-src 'self' data: https://fonts.gstatic.com; " +
	"connect-src 'self' https://api.stripe.com https://*.stripe.com; " +
	"frame-src https://js.stripe.com; " +
	"object-src 'none'; base-uri 'self'; form-action 'self'; upgrade-insecure-requests"

// SecurityHeaders is the fixed set attached to every response, preflight
// or not. Vary: Origin rides along so caches never mix per-origin CORS
// responses.
func SecurityHeaders(csp string) HeaderSet {
	if csp == "" {
		csp = DefaultCSP
	}
	return HeaderSet{
		"X-Frame-Options":           "DENY",
		"X-Content-Type-Options":    "nosniff",
		"X-XSS-Protection":          "1; mode=block",
		"Referrer-Policy":           "strict-origin-when-cross-origin",
		"Permissions-Policy":        "camera=(), microphone=(), geolocation=(), payment=()",
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains; preload",
		"Content-Security-Policy":   csp,
		"Vary":                      "Origin",
	}
}
