// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key handling for create endpoints
// (new discussions, new comments). The middleware validates the key, scopes
// it to the verified reader and the route, and asks a lookup whether that
// (reader, scope, key) already produced a resource. Handlers then either
// replay the stored resource or create a new one and record it.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client-chosen key of a create request.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed is set on responses served from a previous
// request with the same key.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const (
	ctxKeyIdemKey      = "idem.key"
	ctxKeyIdemScope    = "idem.scope"
	ctxKeyIdemResource = "idem.resource"
	ctxKeyRateBypass   = "rate.bypass"
)

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyLookup returns the resource id stored for (userID, scope, key).
// Lookup errors are ignored and the request proceeds as a new create.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string) (resourceID string, found bool, err error)

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters; nil selects ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Lookup is optional. Without it keys are validated but never replayed.
	Lookup IdempotencyLookup
}

// ScopeFunc names the idempotency scope of a request, e.g. "discussions" or
// "comments:<discussion id>".
type ScopeFunc func(*gin.Context) string

// StaticScope returns a ScopeFunc with a fixed scope.
func StaticScope(scope string) ScopeFunc {
	return func(*gin.Context) string { return scope }
}

// ParamScope returns a ScopeFunc of the form prefix + ":" + c.Param(param).
func ParamScope(prefix, param string) ScopeFunc {
	return func(c *gin.Context) string { return prefix + ":" + c.Param(param) }
}

// RouteScopes dispatches on the matched route of POST requests. Other
// methods and unlisted routes get the empty scope.
func RouteScopes(routes map[string]ScopeFunc) ScopeFunc {
	return func(c *gin.Context) string {
		if c.Request.Method != http.MethodPost {
			return ""
		}
		if fn, ok := routes[c.FullPath()]; ok {
			return fn(c)
		}
		return ""
	}
}

// IdempotencyValidator validates the Idempotency-Key header and marks replays.
// It must run after Auth; anonymous requests are never looked up.
//
// Without a header, or when scope yields "", the middleware does nothing.
// An invalid key gets 400.
// A hit stores the previous resource id (see ReplayResourceID) and lets the
// request skip rate limiting.
func IdempotencyValidator(opts IdempotencyOptions, scope ScopeFunc) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		sc := ""
		if key != "" && scope != nil {
			sc = scope(c)
		}
		if key == "" || sc == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)
		c.Set(ctxKeyIdemScope, sc)

		uid := UserID(c)
		if opts.Lookup != nil && uid != "" {
			if id, found, err := opts.Lookup(c.Request.Context(), uid, sc, key); err == nil && found {
				c.Set(ctxKeyIdemResource, id)
				c.Set(ctxKeyRateBypass, true)
			} else if err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
			}
		}
		c.Next()
	}
}

// GetIdempotencyKey returns the validated key and its scope.
func GetIdempotencyKey(c *gin.Context) (key, scope string, ok bool) {
	key = c.GetString(ctxKeyIdemKey)
	scope = c.GetString(ctxKeyIdemScope)
	return key, scope, key != ""
}

// ReplayResourceID returns the resource created by an earlier request with
// the same key, if any.
func ReplayResourceID(c *gin.Context) (string, bool) {
	id := c.GetString(ctxKeyIdemResource)
	return id, id != ""
}

// IsReplay reports whether ReplayResourceID has a value.
func IsReplay(c *gin.Context) bool {
	_, ok := ReplayResourceID(c)
	return ok
}
