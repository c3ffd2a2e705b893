package db

import "errors"

var (
	ErrFailedToParseDBConfig    = errors.New("db: failed to parse database configuration")
	ErrFailedToOpenDBConnection = errors.New("db: failed to open database connection")
	ErrHealthcheckFailed        = errors.New("db: healthcheck failed")
	ErrMigrationSetup           = errors.New("db: failed to prepare migrations")
	ErrApplyMigrations          = errors.New("db: failed to apply migrations")
)
