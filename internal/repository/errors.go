package repository

import "errors"

var (
	// ErrDBNotReady is returned while the database connection has not been
	// injected yet (the API process starts serving before the DB is up).
	ErrDBNotReady = errors.New("database not initialized")

	// ErrNotFound is the storage-agnostic not-found error. The GORM
	// implementations translate gorm.ErrRecordNotFound into it so services
	// never depend on the driver.
	ErrNotFound = errors.New("record not found")
)
