package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Payphone-Digital/auth-service/internal/constants"
)

// Kind is the closed set of failure categories the service can report.
type Kind string

const (
	KindValidation         Kind = "ValidationError"
	KindInvalidArgument    Kind = "InvalidArgumentError"
	KindInvalidCredentials Kind = "InvalidCredentialsError"
	KindUnauthorized       Kind = "UnauthorizedError"
	KindTokenExpired       Kind = "TokenExpiredError"
	KindTokenInvalid       Kind = "TokenInvalidError"
	KindNotFound           Kind = "NotFoundError"
	KindCredentialsInUse   Kind = "CredentialsInUseError"
	KindTooManyRequests    Kind = "TooManyRequestsError"
	KindHashing            Kind = "HashingError"
	KindInvalidInput       Kind = "InvalidInputError"
	KindUnexpected         Kind = "UnexpectedError"
)

// statusByKind maps each kind to its HTTP status. Kinds missing here are 500.
var statusByKind = map[Kind]int{
	KindValidation:         http.StatusBadRequest,
	KindInvalidArgument:    http.StatusBadRequest,
	KindInvalidCredentials: http.StatusBadRequest,
	KindUnauthorized:       http.StatusUnauthorized,
	KindTokenExpired:       http.StatusUnauthorized,
	KindTokenInvalid:       http.StatusUnauthorized,
	KindNotFound:           http.StatusNotFound,
	KindCredentialsInUse:   http.StatusConflict,
	KindTooManyRequests:    http.StatusTooManyRequests,
	KindHashing:            http.StatusInternalServerError,
	KindInvalidInput:       http.StatusInternalServerError,
	KindUnexpected:         http.StatusInternalServerError,
}

// Status returns the HTTP status for the kind.
func (k Kind) Status() int {
	if status, ok := statusByKind[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainError represents a domain-specific error with a kind and message
type DomainError struct {
	Kind    Kind
	Message string
	Details any   // optional client-facing details, e.g. validation failures
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports a match when target is a DomainError of the same kind, so
// wrapped copies of a sentinel still satisfy errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NewDomainError creates a new domain error
func NewDomainError(kind Kind, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Kind:    domainErr.Kind,
		Message: domainErr.Message,
		Details: domainErr.Details,
		Err:     err,
	}
}

// WithDetails returns a copy of domainErr carrying details.
func WithDetails(domainErr *DomainError, details any) *DomainError {
	return &DomainError{
		Kind:    domainErr.Kind,
		Message: domainErr.Message,
		Details: details,
		Err:     domainErr.Err,
	}
}

// NotFoundUser builds the not-found error for a user id.
func NotFoundUser(id uint) *DomainError {
	return NewDomainError(KindNotFound, fmt.Sprintf("The user with ID %d was not found or doesn't exist.", id))
}

// Predefined domain errors
var (
	// Registration and login
	ErrCredentialsInUse   = NewDomainError(KindCredentialsInUse, constants.MsgCredentialsInUse)
	ErrInvalidCredentials = NewDomainError(KindInvalidCredentials, constants.MsgInvalidCredentials)
	ErrNotFound           = NewDomainError(KindNotFound, "The requested resource was not found or doesn't exist.")

	// Authentication
	ErrUnauthorized = NewDomainError(KindUnauthorized, constants.MsgUnauthorized)
	ErrTokenExpired = NewDomainError(KindTokenExpired, "token has expired")
	ErrTokenInvalid = NewDomainError(KindTokenInvalid, "token is malformed or its signature is invalid")

	// Input
	ErrValidation      = NewDomainError(KindValidation, constants.MsgValidationFailed)
	ErrInvalidArgument = NewDomainError(KindInvalidArgument, "invalid argument")
	ErrInvalidID       = NewDomainError(KindInvalidArgument, constants.MsgInvalidID)
	ErrInvalidInput    = NewDomainError(KindInvalidInput, "invalid input")

	// System
	ErrHashing         = NewDomainError(KindHashing, "failed to hash credential")
	ErrTooManyRequests = NewDomainError(KindTooManyRequests, constants.MsgTooManyRequests)
	ErrUnexpected      = NewDomainError(KindUnexpected, constants.MsgUnexpected)
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// KindOf returns the kind of err, UnexpectedError for foreign errors.
func KindOf(err error) Kind {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Kind
	}
	return KindUnexpected
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return KindOf(err).Status()
}

// GetErrorMessage safely extracts a client-facing message. Foreign errors
// never leak their text.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return constants.MsgUnexpected
}

// GetErrorDetails returns the details attached to a domain error, if any.
func GetErrorDetails(err error) any {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Details
	}
	return nil
}
