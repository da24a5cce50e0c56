package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrForbidden        = errors.New("operation not permitted")
	ErrSelfPurchase     = errors.New("payer and recipient are the same user")
	ErrUnprocessable    = errors.New("request can not be processed")
	ErrCardDriverNotSet = errors.New("card driver is not configured")
	ErrGatewayDisabled  = errors.New("gateway is not enabled")
	ErrConflict         = errors.New("invariant violation")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrLockNotAcquired  = errors.New("could not acquire lock")

	// Infra-side errors surfaced through repositories
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrInvalidExecContext = errors.New("invalid transaction handle")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
