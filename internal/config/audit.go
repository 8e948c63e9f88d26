package config

import "errors"

// ErrDSNRequired is returned when the audit database DSN is not configured.
var ErrDSNRequired = errors.New("BULKSCROLL_AUDIT_DB_DSN is required")

// AuditConfig holds the audit trail's storage configuration: an indexed
// database for run lifecycle records, plus an optional blob bucket for
// archiving full terminal responses.
type AuditConfig struct {
	// Driver selects the database/sql driver: "pgx" or "sqlite".
	Driver string `env:"BULKSCROLL_AUDIT_DB_DRIVER"`
	DSN    string `env:"BULKSCROLL_AUDIT_DB_DSN"`

	MaxOpenConns    int `env:"BULKSCROLL_AUDIT_DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int `env:"BULKSCROLL_AUDIT_DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int `env:"BULKSCROLL_AUDIT_DB_CONN_MAX_LIFETIME_SEC"`
	ConnMaxIdleTime int `env:"BULKSCROLL_AUDIT_DB_CONN_MAX_IDLE_TIME_SEC"`

	// BlobBucket, when set, archives every terminal domain.Response as JSON
	// in Google Cloud Storage, keyed by request ID.
	BlobBucket string `env:"BULKSCROLL_AUDIT_BLOB_BUCKET"`
}

// applyDefaults fills in a local sqlite file as the default audit store, so
// the server runs out of the box without a database provisioned. A pgx
// driver always requires an explicit DSN — checked by validateDSN, called
// after applyDefaults, not by env.Load's parse-time auto-validation.
func (c *AuditConfig) applyDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.DSN == "" && c.Driver == "sqlite" {
		c.DSN = "file:bulkscroll-audit.db?cache=shared"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 300
	}
	if c.ConnMaxIdleTime == 0 {
		c.ConnMaxIdleTime = 60
	}
}

// validateDSN requires a DSN once defaults have been applied. Deliberately
// not named Validate: env.Load auto-validates nested structs immediately
// after parsing them, before applyDefaults has run, which would reject an
// unset DSN that applyDefaults was about to fill in.
func (c *AuditConfig) validateDSN() error {
	if c.DSN == "" {
		return ErrDSNRequired
	}
	return nil
}
