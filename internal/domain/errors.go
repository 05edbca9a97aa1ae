package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the not-found and conflict classes.
// Callers wrap them with context via fmt.Errorf and %w; the HTTP layer
// maps them to status codes with errors.Is.
var (
	// ErrWalletNotFound indicates the requested wallet does not exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrAssetNotFound indicates the asset does not exist, either in a
	// wallet or on the price provider.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrNoHistory indicates the provider returned no price data for the
	// requested date.
	ErrNoHistory = errors.New("no historical price data")

	// ErrWalletExists indicates a wallet already exists for the email.
	ErrWalletExists = errors.New("wallet already exists")

	// ErrAssetExists indicates the wallet already holds the symbol.
	ErrAssetExists = errors.New("asset already exists in wallet")
)

// ProviderError indicates the price provider could not be reached or
// returned an unusable response. It wraps the underlying cause.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("price provider unavailable: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ValidationError indicates invalid caller input with a human-readable
// reason suitable for returning to the end user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsNotFound reports whether err belongs to the not-found error class.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWalletNotFound) ||
		errors.Is(err, ErrAssetNotFound) ||
		errors.Is(err, ErrNoHistory)
}

// IsConflict reports whether err belongs to the conflict error class.
func IsConflict(err error) bool {
	return errors.Is(err, ErrWalletExists) || errors.Is(err, ErrAssetExists)
}
