package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lookout/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-key-for-jwt-testing-minimum-32-chars"

func basicAuthConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Auth.Enabled = true
	cfg.Auth.Mode = config.AuthModeBasic
	cfg.Auth.Username = "admin"
	cfg.Auth.HashedPassword = string(hash)
	return cfg
}

func jwtAuthConfig() *config.Config {
	cfg := testConfig()
	cfg.Auth.Enabled = true
	cfg.Auth.Mode = config.AuthModeJWT
	cfg.Auth.JWTSecret = testJWTSecret
	cfg.Auth.JWTIssuer = "lookout"
	return cfg
}

func requestWithAuth(a *API, target string, setAuth func(r *http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if setAuth != nil {
		setAuth(req)
	}
	rr := httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, req)
	return rr
}

func TestBasicAuth(t *testing.T) {
	svc := newTestServices()
	a := setupTestAPI(t, svc, basicAuthConfig(t))
	target := annotationBasePath + "/permissions"

	t.Run("missing credentials", func(t *testing.T) {
		rr := requestWithAuth(a, target, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, basicAuthRealm, rr.Header().Get("WWW-Authenticate"))
	})

	t.Run("valid credentials", func(t *testing.T) {
		rr := requestWithAuth(a, target, func(r *http.Request) { r.SetBasicAuth("admin", "s3cret") })
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("health is open", func(t *testing.T) {
		rr := requestWithAuth(a, "/health", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestBasicAuth_LockoutAfterRepeatedFailures(t *testing.T) {
	a := setupTestAPI(t, newTestServices(), basicAuthConfig(t))
	target := annotationBasePath + "/permissions"
	wrong := func(r *http.Request) { r.SetBasicAuth("admin", "guess") }

	for i := 0; i < maxAuthFailures; i++ {
		assert.Equal(t, http.StatusUnauthorized, requestWithAuth(a, target, wrong).Code)
	}

	rr := requestWithAuth(a, target, func(r *http.Request) { r.SetBasicAuth("admin", "s3cret") })
	assert.Equal(t, http.StatusTooManyRequests, rr.Code, "locked out even with the right password")
}

func TestJWTAuth(t *testing.T) {
	cfg := jwtAuthConfig()
	a := setupTestAPI(t, newTestServices(), cfg)
	target := annotationBasePath + "/permissions"

	valid, err := IssueToken(cfg, "alice", []string{"editor"}, time.Hour)
	require.NoError(t, err)

	otherIssuerCfg := jwtAuthConfig()
	otherIssuerCfg.Auth.JWTIssuer = "someone-else"
	otherIssuer, err := IssueToken(otherIssuerCfg, "alice", nil, time.Hour)
	require.NoError(t, err)

	wrongSecretCfg := jwtAuthConfig()
	wrongSecretCfg.Auth.JWTSecret = "another-secret-key-that-is-also-long-enough"
	wrongSecret, err := IssueToken(wrongSecretCfg, "alice", nil, time.Hour)
	require.NoError(t, err)

	expired, err := IssueToken(cfg, "alice", nil, -time.Minute)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Username:         "alice",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "lookout", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid token", header: "Bearer " + valid, want: http.StatusOK},
		{name: "no header", header: "", want: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic YWRtaW46czNjcmV0", want: http.StatusUnauthorized},
		{name: "other issuer", header: "Bearer " + otherIssuer, want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + wrongSecret, want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, want: http.StatusUnauthorized},
		{name: "alg none", header: "Bearer " + noneToken, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := requestWithAuth(a, target, func(r *http.Request) {
				if tt.header != "" {
					r.Header.Set("Authorization", tt.header)
				}
			})
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestIssueToken_RequiresSecret(t *testing.T) {
	cfg := jwtAuthConfig()
	cfg.Auth.JWTSecret = ""
	_, err := IssueToken(cfg, "alice", nil, time.Hour)
	assert.Error(t, err)
}

func TestValidateJWT_Claims(t *testing.T) {
	cfg := jwtAuthConfig()
	token, err := IssueToken(cfg, "bob", []string{"viewer"}, time.Hour)
	require.NoError(t, err)

	claims, err := validateJWT(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Username)
	assert.Equal(t, []string{"viewer"}, claims.Roles)
	assert.Equal(t, "lookout", claims.Issuer)
	assert.Len(t, claims.ID, 64)
}

func TestRequestFailureLogsAuthenticatedUser(t *testing.T) {
	svc := newTestServices()
	svc.annotations.err = errBackendDown

	observed, logs := observer.New(zapcore.DebugLevel)
	a := NewAPI(svc.services(), basicAuthConfig(t), zap.New(observed).Sugar())
	t.Cleanup(func() { _ = a.Stop(t.Context()) })

	rr := requestWithAuth(a, annotationBasePath+"/permissions", func(r *http.Request) {
		r.SetBasicAuth("admin", "s3cret")
	})
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	failed := logs.FilterMessage("Request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	assert.Equal(t, "admin", failed[0].ContextMap()["user"])
}
