package service

import (
	"context"
	"errors"
	"fmt"

	"tricommerce/internal/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrProductUnavailable = errors.New("product is not available")
	ErrDuplicateEntity    = errors.New("duplicate entity")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrValidationFailed   = errors.New("validation failed")
	ErrTimeout            = errors.New("operation timed out")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is not active")
)

var domainErrors = []error{
	ErrNotFound,
	ErrInvalidTransition,
	ErrInsufficientStock,
	ErrEmptyCart,
	ErrInvalidQuantity,
	ErrProductUnavailable,
	ErrDuplicateEntity,
	ErrStorageUnavailable,
	ErrValidationFailed,
	ErrTimeout,
	ErrForbidden,
	ErrInvalidCredentials,
	ErrAccountInactive,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// mapStorageError translates repository and driver errors into the service
// taxonomy. Errors already in the taxonomy pass through unchanged.
func mapStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case isDomainError(err):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicateEntity
	case errors.Is(err, repository.ErrStockConflict):
		return ErrInsufficientStock
	default:
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
}

// notFound wraps ErrNotFound with what was missing.
func notFound(what string, key interface{}) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, what, key)
}
