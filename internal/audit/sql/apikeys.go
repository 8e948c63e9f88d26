package sql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/rezkam/bulkscroll/internal/auth"
)

// KeyStore is a relational auth.KeyStore, backed by the same database as
// the audit Store.
type KeyStore struct {
	db *sql.DB
}

var _ auth.KeyStore = (*KeyStore)(nil)

// NewKeyStore wraps an already-opened Store's pool.
func NewKeyStore(s *Store) *KeyStore {
	return &KeyStore{db: s.db}
}

func (s *KeyStore) GetByShortToken(ctx context.Context, shortToken string) (auth.KeyRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, short_token, long_secret_hash, expires_at FROM api_keys WHERE short_token = $1`,
		shortToken)

	var (
		id, token, hash string
		expiresAt       sql.NullTime
	)
	if err := row.Scan(&id, &token, &hash, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return auth.KeyRecord{}, auth.ErrKeyNotFound
		}
		return auth.KeyRecord{}, err
	}

	rec := auth.KeyRecord{
		ID:             uuid.MustParse(id),
		ShortToken:     token,
		LongSecretHash: hash,
	}
	if expiresAt.Valid {
		rec.ExpiresAt = &expiresAt.Time
	}
	return rec, nil
}

func (s *KeyStore) UpdateLastUsed(ctx context.Context, keyID uuid.UUID, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, at.UTC(), keyID.String())
	return err
}

// Create persists a freshly generated key record. Matches the create
// callback shape auth.CreateAPIKey expects.
func (s *KeyStore) Create(ctx context.Context, rec auth.KeyRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_keys (id, short_token, long_secret_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.ID.String(), rec.ShortToken, rec.LongSecretHash, nullTimePtr(rec.ExpiresAt), time.Now().UTC())
	return err
}

func nullTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
