package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authProbe(t *testing.T, authorization string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var gotUID string
	handler := Authentication(testSecret, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = GetUID(r)
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	return rec, gotUID
}

func TestAuthenticationResolvesUIDClaim(t *testing.T) {
	token := signToken(t, Claims{UID: "firebase-uid-1"}, testSecret)

	rec, uid := authProbe(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "firebase-uid-1", uid)
}

func TestAuthenticationFallsBackToSubject(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-uid"},
	}, testSecret)

	rec, uid := authProbe(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "subject-uid", uid)
}

func TestAuthenticationRejects(t *testing.T) {
	expired := signToken(t, Claims{
		UID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, testSecret)
	wrongKey := signToken(t, Claims{UID: "user-1"}, "other-secret")
	anonymous := signToken(t, Claims{}, testSecret)

	cases := map[string]string{
		"missing header":  "",
		"not bearer":      "Basic abc123",
		"garbage token":   "Bearer not.a.jwt",
		"wrong signature": "Bearer " + wrongKey,
		"expired token":   "Bearer " + expired,
		"no identity":     "Bearer " + anonymous,
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, uid := authProbe(t, header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, uid)
		})
	}
}

func TestRequestValidationContentType(t *testing.T) {
	handler := RequestValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	r.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	r = httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	// reads are exempt
	r = httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}
