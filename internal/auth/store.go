package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrKeyNotFound is returned by a KeyStore when no record matches the
// given short token.
var ErrKeyNotFound = errors.New("auth: key not found")

// ErrUnauthenticated is the generic failure ValidateAPIKey returns for any
// bad-key condition (unknown token, wrong secret, expired key), so callers
// cannot distinguish failure causes from the response alone.
var ErrUnauthenticated = errors.New("auth: invalid credentials")

// KeyRecord is the persisted half of an API key: everything needed to
// verify a presented key and track its use, but never the plaintext
// secret itself (only CreateAPIKey's caller ever sees that).
type KeyRecord struct {
	ID             uuid.UUID
	ShortToken     string
	LongSecretHash string
	ExpiresAt      *time.Time
}

// KeyStore is the persistence contract Authenticator needs: an indexed
// lookup by short_token plus a best-effort last-used marker. A concrete
// implementation lives alongside internal/audit's store, backed by the
// same database.
type KeyStore interface {
	GetByShortToken(ctx context.Context, shortToken string) (KeyRecord, error)
	UpdateLastUsed(ctx context.Context, keyID uuid.UUID, at time.Time) error
}

// CreateAPIKey generates a key, hashes its long secret, persists the
// record via create, and returns the full plaintext key — the only time
// it is ever visible. expiresAt is nil for a key that never expires.
func CreateAPIKey(ctx context.Context, create func(context.Context, KeyRecord) error, keyType, service, version string, expiresAt *time.Time) (string, error) {
	keyParts, err := GenerateAPIKey(keyType, service, version)
	if err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	record := KeyRecord{
		ID:             id,
		ShortToken:     keyParts.ShortToken,
		LongSecretHash: hashSecret(keyParts.LongSecret),
		ExpiresAt:      expiresAt,
	}
	if err := create(ctx, record); err != nil {
		return "", err
	}
	return keyParts.FullKey, nil
}
