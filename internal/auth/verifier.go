package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKeyUserID struct{}

// Verifier checks HS256 bearer tokens and exposes the subject as the
// request's user identity. The secret is injected at startup; an empty one
// is a configuration error, not a per-request failure.
type Verifier struct {
	Secret   []byte
	Issuer   string
	Audience string
}

var ErrMissingSecret = errors.New("auth: jwt secret is not configured")

func NewVerifier(secret, issuer, audience string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Verifier{Secret: []byte(secret), Issuer: issuer, Audience: audience}, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected method: %v", token.Header["alg"])
	}
	return v.Secret, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// token subject in the request context.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tok string
		authz := r.Header.Get("Authorization")
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			tok = strings.TrimSpace(authz[len("bearer "):])
		} else if cookie, err := r.Cookie("access_token"); err == nil {
			tok = cookie.Value
		}
		if tok == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		opts := []jwt.ParserOption{}
		if v.Issuer != "" {
			opts = append(opts, jwt.WithIssuer(v.Issuer))
		}
		if v.Audience != "" {
			opts = append(opts, jwt.WithAudience(v.Audience))
		}
		parsed, err := jwt.Parse(tok, v.keyFunc, opts...)
		if err != nil || !parsed.Valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		sub, err := parsed.Claims.GetSubject()
		if err != nil || sub == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUserID{}, sub)))
	})
}

// UserID returns the authenticated user id, or "" when the request was not
// authenticated.
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserID{}).(string); ok {
		return v
	}
	return ""
}
