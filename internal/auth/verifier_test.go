package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech1bro/cinescope-backend/internal/auth"
)

const secret = "test-secret"

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func protected(t *testing.T, v *auth.Verifier) (http.Handler, *string) {
	t.Helper()
	var gotUser string
	h := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &gotUser
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := auth.NewVerifier("", "", "")
	assert.ErrorIs(t, err, auth.ErrMissingSecret)
}

func TestMiddlewareAcceptsBearerToken(t *testing.T) {
	v, err := auth.NewVerifier(secret, "", "")
	require.NoError(t, err)
	h, gotUser := protected(t, v)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, jwt.MapClaims{"sub": "user-1"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", *gotUser)
}

func TestMiddlewareAcceptsCookie(t *testing.T) {
	v, err := auth.NewVerifier(secret, "", "")
	require.NoError(t, err)
	h, gotUser := protected(t, v)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signed(t, jwt.MapClaims{"sub": "user-2"})})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-2", *gotUser)
}

func TestMiddlewareRejects(t *testing.T) {
	v, err := auth.NewVerifier(secret, "cinescope", "")
	require.NoError(t, err)
	h, _ := protected(t, v)

	badSig, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("other"))
	require.NoError(t, err)

	cases := map[string]string{
		"no token":      "",
		"bad signature": badSig,
		"wrong issuer":  signed(t, jwt.MapClaims{"sub": "x", "iss": "someone-else"}),
		"expired":       signed(t, jwt.MapClaims{"sub": "x", "iss": "cinescope", "exp": time.Now().Add(-time.Hour).Unix()}),
		"missing sub":   signed(t, jwt.MapClaims{"iss": "cinescope"}),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestUserIDOnBareContext(t *testing.T) {
	assert.Empty(t, auth.UserID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
