package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// ErrorKind groups error codes into the families callers branch on.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindAuthorization  ErrorKind = "authorization"
	KindValidation     ErrorKind = "validation"
	KindConflict       ErrorKind = "conflict"
	KindNotFound       ErrorKind = "not_found"
	KindDelivery       ErrorKind = "delivery"
	KindInternal       ErrorKind = "internal"
)

// Error codes surfaced to clients.
const (
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeCredentialInvalid     = "CREDENTIAL_INVALID"
	CodeCredentialExpired     = "CREDENTIAL_EXPIRED"
	CodePrincipalNotFound     = "PRINCIPAL_NOT_FOUND"
	CodeForbidden             = "FORBIDDEN"
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeEmptyEffectiveMessage = "EMPTY_EFFECTIVE_MESSAGE"
	CodeUnsupportedPlatform   = "UNSUPPORTED_PLATFORM"
	CodeConflict              = "CONFLICT"
	CodeRoleInUse             = "ROLE_IN_USE"
	CodeRoleNameTaken         = "ROLE_NAME_TAKEN"
	CodeDuplicateTicket       = "DUPLICATE_TICKET"
	CodeEmailTaken            = "EMAIL_TAKEN"
	CodeTicketClosed          = "TICKET_CLOSED"
	CodeNotFound              = "NOT_FOUND"
	CodeDeliveryFailed        = "DELIVERY_FAILED"
	CodeInternal              = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Kind       ErrorKind
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError by code so sentinel comparisons work with errors.Is.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(kind ErrorKind, code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(KindValidation, CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewValidationCode(code, message string, details map[string]any) error {
	return NewDomainError(KindValidation, code, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError(KindNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(KindAuthentication, CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewAuthenticationError(code, message string) error {
	return NewDomainError(KindAuthentication, code, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(KindAuthorization, CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(KindConflict, CodeConflict, message, http.StatusConflict, details)
}

func NewConflictCode(code, message string, details map[string]any) error {
	return NewDomainError(KindConflict, code, message, http.StatusConflict, details)
}

// NewDeliveryError reports an outbound channel failure. It is never rolled back
// against the state change that triggered it.
func NewDeliveryError(message string, details map[string]any, cause error) error {
	de := NewDomainError(KindDelivery, CodeDeliveryFailed, message, http.StatusBadGateway, details)
	de.Err = cause
	return de
}

func NewInternalError(err error) error {
	return &DomainError{
		Kind:       KindInternal,
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	return ToDomainError(err)
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// KindOf returns the error family of err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
