package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/bulkscroll/internal/auth"
)

// fakeKeyStore is a minimal auth.KeyStore backed by one pre-seeded record,
// mirroring internal/auth's own fakeKeyStore test double.
type fakeKeyStore struct {
	shortToken string
	record     auth.KeyRecord
}

func (f *fakeKeyStore) GetByShortToken(ctx context.Context, shortToken string) (auth.KeyRecord, error) {
	if shortToken != f.shortToken {
		return auth.KeyRecord{}, auth.ErrKeyNotFound
	}
	return f.record, nil
}

func (f *fakeKeyStore) UpdateLastUsed(ctx context.Context, keyID uuid.UUID, at time.Time) error {
	return nil
}

func newAuthMiddleware(t *testing.T) (*Auth, string) {
	t.Helper()
	var rec auth.KeyRecord
	create := func(ctx context.Context, r auth.KeyRecord) error {
		rec = r
		return nil
	}
	fullKey, err := auth.CreateAPIKey(context.Background(), create, "sk", "bulkscroll", "v1", nil)
	require.NoError(t, err)

	store := &fakeKeyStore{shortToken: rec.ShortToken, record: rec}
	a := auth.NewAuthenticator(context.Background(), store)
	t.Cleanup(func() { a.Shutdown(context.Background()) })
	return NewAuth(a), fullKey
}

func TestAuth_Validate_MissingHeaderIsUnauthorized(t *testing.T) {
	mw, _ := newAuthMiddleware(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { t.Fatal("next handler must not run") })

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", nil)
	rec := httptest.NewRecorder()
	mw.Validate(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_Validate_MalformedHeaderIsUnauthorized(t *testing.T) {
	mw, _ := newAuthMiddleware(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { t.Fatal("next handler must not run") })

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", nil)
	req.Header.Set("Authorization", "Basic deadbeef")
	rec := httptest.NewRecorder()
	mw.Validate(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_Validate_ValidKeyCallsNext(t *testing.T) {
	mw, key := newAuthMiddleware(t)
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", nil)
	req.Header.Set("Authorization", "Bearer "+key)
	rec := httptest.NewRecorder()
	mw.Validate(next).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_Validate_UnknownKeyIsUnauthorized(t *testing.T) {
	mw, _ := newAuthMiddleware(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { t.Fatal("next handler must not run") })

	fabricated, err := auth.GenerateAPIKey("sk", "bulkscroll", "v1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", nil)
	req.Header.Set("Authorization", "Bearer "+fabricated.FullKey)
	rec := httptest.NewRecorder()
	mw.Validate(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
