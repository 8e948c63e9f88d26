package main

import (
	"time"

	auditsql "github.com/rezkam/bulkscroll/internal/audit/sql"
	"github.com/rezkam/bulkscroll/internal/config"
)

// auditDBConfig converts the env-sourced AuditConfig (durations expressed
// as whole seconds, for a flat env-var surface) into internal/audit/sql's
// DBConfig (durations expressed as time.Duration).
func auditDBConfig(c config.AuditConfig) auditsql.DBConfig {
	return auditsql.DBConfig{
		Driver:          c.Driver,
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: time.Duration(c.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(c.ConnMaxIdleTime) * time.Second,
	}
}
