// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, which attaches conservative security
// headers for a JSON and event-stream API behind a reverse proxy, and
// exposes the API's custom response headers to browser clients.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// ExposedHeaders are response headers browser clients may read through CORS.
var ExposedHeaders = []string{requestIDHeader, "X-Cache", "Idempotency-Replayed", "ETag", "Retry-After"}

// SecurityOptions configures SecurityHeaders.
//
// EnableHSTS emits Strict-Transport-Security on HTTPS requests only; enable
// it only when traffic is HTTPS end-to-end. HSTSMaxAge defaults to 180 days.
// NoStore adds Cache-Control: no-store to responses that did not set their
// own caching policy. EnablePolicy adds Permissions-Policy and
// X-Permitted-Cross-Domain-Policies.
type SecurityOptions struct {
	EnableHSTS   bool
	HSTSMaxAge   time.Duration
	NoStore      bool
	EnablePolicy bool
}

// SecurityHeaders sets, on every response:
//
//	X-Content-Type-Options: nosniff
//	X-Frame-Options: DENY
//	Referrer-Policy: no-referrer
//	Access-Control-Expose-Headers: X-Request-ID, X-Cache, ...
//
// plus the optional headers selected in opt. With NoStore, responses that
// carry an ETag get "no-cache" instead so conditional GETs keep working.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		exposeHeaders(h, ExposedHeaders...)

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
			c.Writer = &validatorWriter{ResponseWriter: c.Writer}
		}

		c.Next()
	}
}

// validatorWriter turns no-store into no-cache once a handler has set an
// ETag, just before the status line goes out.
type validatorWriter struct {
	gin.ResponseWriter
}

func (w *validatorWriter) WriteHeader(code int) {
	h := w.Header()
	if h.Get("ETag") != "" && h.Get("Cache-Control") == "no-store" {
		h.Set("Cache-Control", "no-cache")
		h.Del("Pragma")
		h.Del("Expires")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *validatorWriter) WriteHeaderNow() {
	w.WriteHeader(w.Status())
	w.ResponseWriter.WriteHeaderNow()
}

// exposeHeaders appends names to Access-Control-Expose-Headers without
// duplicating entries already present.
func exposeHeaders(h http.Header, names ...string) {
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	have := map[string]bool{}
	for _, p := range strings.Split(cur, ",") {
		if p = strings.TrimSpace(p); p != "" {
			have[strings.ToLower(p)] = true
		}
	}
	out := cur
	for _, n := range names {
		if have[strings.ToLower(n)] {
			continue
		}
		if out == "" {
			out = n
		} else {
			out += ", " + n
		}
		have[strings.ToLower(n)] = true
	}
	if out != "" {
		h.Set(key, out)
	}
}

// isHTTPS reports whether the request arrived over TLS, directly or via a
// proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
