package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoActor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromContext(r.Context())
		w.Write([]byte(actor.UserID + ":" + string(actor.AccountType)))
	})
}

func TestAuth_Authenticate(t *testing.T) {
	auth := NewAuth("secret", "/login")
	vendor := models.Actor{UserID: "vendor-1", AccountType: models.Vendor}
	token, err := auth.IssueToken(vendor, time.Hour)
	require.NoError(t, err)

	expired, err := auth.IssueToken(vendor, -time.Minute)
	require.NoError(t, err)

	foreign, err := NewAuth("other", "/login").IssueToken(vendor, time.Hour)
	require.NoError(t, err)

	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantCode int
		wantBody string
	}{
		{
			name:     "bearer header",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantCode: http.StatusOK,
			wantBody: "vendor-1:vendor",
		},
		{
			name:     "cookie",
			prepare:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token}) },
			wantCode: http.StatusOK,
			wantBody: "vendor-1:vendor",
		},
		{
			name:     "no token",
			prepare:  func(r *http.Request) {},
			wantCode: http.StatusSeeOther,
		},
		{
			name:     "expired token",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) },
			wantCode: http.StatusSeeOther,
		},
		{
			name:     "wrong secret",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+foreign) },
			wantCode: http.StatusSeeOther,
		},
		{
			name:     "unknown account type",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+noRole) },
			wantCode: http.StatusSeeOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/rfps", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			auth.Authenticate(echoActor()).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusSeeOther {
				assert.Equal(t, "/login", rec.Header().Get("Location"))
				return
			}
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestAuth_ParseTokenRejectsOtherAlgorithms(t *testing.T) {
	auth := NewAuth("secret", "/login")
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1", AccountType: models.Vendor}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = auth.ParseToken(token)
	assert.Error(t, err)
}

func TestActorFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, ActorFromContext(req.Context()).IsAuthenticated())
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiter_Limit(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	handler := rl.Limit(echoActor())

	call := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/rfps/1/messages", nil)
		req = req.WithContext(WithActor(req.Context(), models.Actor{UserID: userID, AccountType: models.Vendor}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("vendor-1").Code)

	rec := call("vendor-1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many requests. Please slow down.")

	assert.Equal(t, http.StatusOK, call("vendor-2").Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"/api/ping"`)
}
