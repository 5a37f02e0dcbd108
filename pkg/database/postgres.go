package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/collab-league-api/pkg/config"
)

// Postgres error classes the repositories translate into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"

	codeInvalidTextRepresentation = "22P02"
)

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// DSN renders the lib/pq key/value connection string.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
// When constraint is non-empty the violated constraint name must match too.
func IsUniqueViolation(err error, constraint string) bool {
	pqErr, ok := asPQ(err)
	if !ok || string(pqErr.Code) != codeUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key failure.
func IsForeignKeyViolation(err error) bool {
	pqErr, ok := asPQ(err)
	return ok && string(pqErr.Code) == codeForeignKeyViolation
}

// IsCheckViolation reports whether err is a Postgres CHECK constraint failure.
func IsCheckViolation(err error) bool {
	pqErr, ok := asPQ(err)
	return ok && string(pqErr.Code) == codeCheckViolation
}

// IsInvalidTextRepresentation reports whether Postgres rejected a literal for its
// column type, such as a malformed uuid.
func IsInvalidTextRepresentation(err error) bool {
	pqErr, ok := asPQ(err)
	return ok && string(pqErr.Code) == codeInvalidTextRepresentation
}

// Diagnostics extracts driver details suitable for server-side logs only.
func Diagnostics(err error) map[string]string {
	pqErr, ok := asPQ(err)
	if !ok {
		return nil
	}
	return map[string]string{
		"code":       string(pqErr.Code),
		"message":    pqErr.Message,
		"detail":     pqErr.Detail,
		"hint":       pqErr.Hint,
		"constraint": pqErr.Constraint,
		"table":      pqErr.Table,
	}
}

func asPQ(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}
