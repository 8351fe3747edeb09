// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound                     = errors.New("resource not found")
	ErrForbidden                    = errors.New("operation not permitted for this user")
	ErrInvalidState                 = errors.New("entity is not in a valid state for this operation")
	ErrInvalidBid                   = errors.New("bid amount violates auction rules")
	ErrInsufficientFunds            = errors.New("insufficient funds")
	ErrInsufficientAvailableBalance = errors.New("insufficient available balance")
	ErrLimitExceeded                = errors.New("blocked amount limit exceeded")
	ErrValidation                   = errors.New("invalid input provided")
	ErrInternal                     = errors.New("internal error")
)

// IsError reports whether err matches the given sentinel error.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
