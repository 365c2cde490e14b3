// Package apperror defines the error kinds surfaced by the sales insight core.
//
// Every typed error matches its sentinel through errors.Is, so callers can branch
// on the kind without knowing the concrete type:
//
//	if errors.Is(err, apperror.ErrNotFound) { ... }
//
//	var ie *apperror.IntegrityError
//	if errors.As(err, &ie) { log residual ie.Residual }
package apperror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

var (
	// ErrDataUnavailable is returned when the data source could not be read (network, auth, query, timeout).
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrNotFound is returned when no rows or details exist for a requested id.
	ErrNotFound = errors.New("not found")
	// ErrIntegrity is returned when a reconciliation identity fails.
	ErrIntegrity = errors.New("integrity violation")
	// ErrConfig is returned when startup configuration is unusable.
	ErrConfig = errors.New("invalid configuration")
	// ErrInvalidInput is returned for malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
)

// DataUnavailableError wraps the underlying I/O failure of a source operation.
type DataUnavailableError struct {
	Op  string
	Err error
}

func NewDataUnavailable(op string, err error) *DataUnavailableError {
	return &DataUnavailableError{Op: op, Err: err}
}

func (e *DataUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: data unavailable", e.Op)
	}
	return fmt.Sprintf("%s: data unavailable: %v", e.Op, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

func (e *DataUnavailableError) Is(target error) bool { return target == ErrDataUnavailable }

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IntegrityError reports a failed reconciliation together with the computed residual.
type IntegrityError struct {
	Check    string
	Residual decimal.Decimal
}

func NewIntegrity(check string, residual decimal.Decimal) *IntegrityError {
	return &IntegrityError{Check: check, Residual: residual}
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation in %s: residual %s", e.Check, e.Residual.StringFixed(2))
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// ConfigError collects every configuration problem found at startup.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "config validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// InvalidInput wraps ErrInvalidInput with a message.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
