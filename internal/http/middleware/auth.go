// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file is the authentication gate. It verifies an HS256 bearer token and
// stores the reader's id and display name in the Gin context. Requests without
// a token continue anonymously; write routes add RequireAuth so anonymous
// callers get 401 before any handler runs.
package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Gin context keys for the verified identity.
const (
	ctxKeyUserID   = "userID"
	ctxKeyUserName = "userName"
	ctxKeyUserRole = "userRole"
)

// Headers accepted when AuthOptions.HeaderFallback is enabled.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
)

// ReaderClaims is the token payload issued by the login service.
type ReaderClaims struct {
	ID       ClaimID `json:"id"`
	Username string  `json:"username"`
	FullName string  `json:"full_name,omitempty"`
	Role     string  `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ClaimID accepts both numeric and string ids.
type ClaimID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ClaimID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ClaimID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ClaimID(n.String())
	return nil
}

// AuthOptions configures Auth.
type AuthOptions struct {
	// Secret is the HMAC key. An empty secret disables token verification.
	Secret []byte
	// HeaderFallback trusts X-User-ID / X-User-Name when no token is sent.
	// Only for local development and tests.
	HeaderFallback bool
	// QueryParam, when set, names a query parameter carrying the token for
	// clients that cannot set headers (navigator.sendBeacon).
	QueryParam string
}

var errNoSecret = errors.New("token verification disabled")

// Auth resolves the caller's identity.
//
//   - no Authorization header or query token: anonymous (or the fallback
//     headers)
//   - malformed header, bad signature, expired token, missing id: 401
//   - valid token: userID / userName / userRole set in the context
func Auth(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" && opts.QueryParam != "" {
			if tok := strings.TrimSpace(c.Query(opts.QueryParam)); tok != "" {
				raw = "Bearer " + tok
			}
		}
		if raw == "" {
			if opts.HeaderFallback {
				if id := strings.TrimSpace(c.GetHeader(HeaderUserID)); id != "" {
					setIdentity(c, id, strings.TrimSpace(c.GetHeader(HeaderUserName)), "")
				}
			}
			c.Next()
			return
		}

		scheme, token, found := strings.Cut(raw, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "invalid Authorization header")
			return
		}

		claims, err := ParseReaderToken(strings.TrimSpace(token), opts.Secret)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		name := claims.FullName
		if name == "" {
			name = claims.Username
		}
		setIdentity(c, string(claims.ID), name, claims.Role)
		c.Next()
	}
}

// ParseReaderToken verifies an HS256 token and returns its claims.
func ParseReaderToken(token string, secret []byte) (*ReaderClaims, error) {
	if len(secret) == 0 {
		return nil, errNoSecret
	}
	claims := &ReaderClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.ID == "" {
		claims.ID = ClaimID(claims.Username)
	}
	if claims.ID == "" {
		return nil, errors.New("token carries no reader id")
	}
	return claims, nil
}

// SignReaderToken issues an HS256 token for claims. Used by the seed command
// and tests.
func SignReaderToken(claims ReaderClaims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// RequireAuth rejects requests that Auth left anonymous.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			abortUnauthorized(c, "authentication required")
			return
		}
		c.Next()
	}
}

// UserID returns the verified reader id, or "" for anonymous requests.
func UserID(c *gin.Context) string { return c.GetString(ctxKeyUserID) }

// UserName returns the verified display name, possibly "".
func UserName(c *gin.Context) string { return c.GetString(ctxKeyUserName) }

func setIdentity(c *gin.Context, id, name, role string) {
	c.Set(ctxKeyUserID, id)
	c.Set(ctxKeyUserName, name)
	if role != "" {
		c.Set(ctxKeyUserRole, role)
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
