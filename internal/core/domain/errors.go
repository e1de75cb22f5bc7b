// Package domain defines the core domain models for curvectl.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a domain error with a structured error code.
//
// Codes have the form CV-<CATEGORY>-<NNNN>. The category decides how the
// process exits (see ExitCode).
type DomainError struct {
	Code    string // Error code (e.g., "CV-ARG-4001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
// The cause message is kept as details so it survives printing.
func (e *DomainError) Wrap(cause error) *DomainError {
	if cause == nil {
		return e.WithCause(nil)
	}
	return e.WithDetails(cause.Error()).WithCause(cause)
}

// Category returns the category segment of the error code ("ARG", "CFG", ...).
func (e *DomainError) Category() string {
	parts := strings.Split(e.Code, "-")
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
// It returns "" for unclassified errors.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Error categories.
const (
	CategoryArgument      = "ARG"
	CategoryConfiguration = "CFG"
	CategoryOperation     = "OPS"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitValidation    = 1
	ExitOperation     = 2
	ExitConfiguration = 3
)

// ExitCode maps an error to the process exit code.
// Unclassified errors are treated as operation failures.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var de *DomainError
	if !errors.As(err, &de) {
		return ExitOperation
	}
	switch de.Category() {
	case CategoryArgument:
		return ExitValidation
	case CategoryConfiguration:
		return ExitConfiguration
	default:
		return ExitOperation
	}
}

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrUnknownCommand indicates the command name is not recognized.
	ErrUnknownCommand = NewDomainError("CV-ARG-4000", "unknown command")

	// ErrMissingToken indicates the token address was not given.
	ErrMissingToken = NewDomainError("CV-ARG-4001", "missing token address")

	// ErrMissingAmount indicates the swap amount was not given.
	ErrMissingAmount = NewDomainError("CV-ARG-4002", "missing swap amount")

	// ErrMissingStyle indicates the swap style was not given.
	ErrMissingStyle = NewDomainError("CV-ARG-4003", "missing swap style")

	// ErrInvalidToken indicates the token address does not decode.
	ErrInvalidToken = NewDomainError("CV-ARG-4004", "invalid token address")

	// ErrInvalidAmount indicates the swap amount is not a positive integer.
	ErrInvalidAmount = NewDomainError("CV-ARG-4005", "invalid swap amount")

	// ErrInvalidStyle indicates the swap style is neither 0 nor 1.
	ErrInvalidStyle = NewDomainError("CV-ARG-4006", "invalid swap style")

	// ErrMissingCreator indicates the whitelist creator address was not given.
	ErrMissingCreator = NewDomainError("CV-ARG-4007", "missing creator address")

	// ErrInvalidCreator indicates the whitelist creator address does not decode.
	ErrInvalidCreator = NewDomainError("CV-ARG-4008", "invalid creator address")

	// ErrParamsMismatch indicates request params do not belong to the command.
	ErrParamsMismatch = NewDomainError("CV-ARG-4009", "request parameters do not match command")

	// ErrMissingNewAdmin indicates the nominated admin address was not given.
	ErrMissingNewAdmin = NewDomainError("CV-ARG-4010", "missing new admin address")

	// ErrInvalidNewAdmin indicates the nominated admin address does not decode.
	ErrInvalidNewAdmin = NewDomainError("CV-ARG-4011", "invalid new admin address")
)

// ============================================================================
// Configuration Errors (CFG)
// ============================================================================

var (
	// ErrKeypairInvalid indicates the keypair file is unreadable or malformed.
	ErrKeypairInvalid = NewDomainError("CV-CFG-5001", "invalid keypair")

	// ErrRPCUnreachable indicates the RPC endpoint is unreachable or unhealthy.
	ErrRPCUnreachable = NewDomainError("CV-CFG-5002", "rpc endpoint unreachable")

	// ErrNoEndpoint indicates no endpoint is known for the cluster.
	ErrNoEndpoint = NewDomainError("CV-CFG-5003", "no rpc endpoint for cluster")

	// ErrConfigInvalid indicates the CLI configuration file is invalid.
	ErrConfigInvalid = NewDomainError("CV-CFG-5004", "invalid configuration")
)

// ============================================================================
// Operation Errors (OPS)
// ============================================================================

var (
	// ErrTokenNotFound indicates the token mint account does not exist.
	ErrTokenNotFound = NewDomainError("CV-OPS-6001", "token account not found")

	// ErrRPC indicates the RPC node returned an error.
	ErrRPC = NewDomainError("CV-OPS-6002", "rpc error")

	// ErrEncoding indicates an instruction could not be encoded.
	ErrEncoding = NewDomainError("CV-OPS-6003", "instruction encoding failed")

	// ErrSubmit indicates the instruction could not be handed to the signer.
	ErrSubmit = NewDomainError("CV-OPS-6004", "submit failed")

	// ErrQuoteInput indicates the quote inputs are out of range.
	ErrQuoteInput = NewDomainError("CV-OPS-6005", "invalid quote input")
)
