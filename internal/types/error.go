package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the coarse category of a failure, independent of transport
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindConflict         ErrorKind = "conflict"
	KindUnauthorized     ErrorKind = "unauthorized"
	KindForbidden        ErrorKind = "forbidden"
	KindValidationFailed ErrorKind = "validation_failed"
	KindInfrastructure   ErrorKind = "infrastructure"
)

var kindStatus = map[ErrorKind]int{
	KindNotFound:         http.StatusNotFound,
	KindConflict:         http.StatusConflict,
	KindUnauthorized:     http.StatusUnauthorized,
	KindForbidden:        http.StatusForbidden,
	KindValidationFailed: http.StatusBadRequest,
	KindInfrastructure:   http.StatusInternalServerError,
}

// CustomError is the error every service and middleware returns for expected failures.
// Type is a dotted machine code (e.g. "certificate.already_issued"), Fields carries
// per-field validation messages.
type CustomError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Type    string            `json:"type"`
	Kind    ErrorKind         `json:"kind"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s [type: %s]: %v", e.Code, e.Message, e.Type, e.Err)
	}
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, errorType, message string) *CustomError {
	return &CustomError{
		Code:    kindStatus[kind],
		Message: message,
		Type:    errorType,
		Kind:    kind,
	}
}

func NotFound(errorType, message string) *CustomError {
	return newError(KindNotFound, errorType, message)
}

func Conflict(errorType, message string) *CustomError {
	return newError(KindConflict, errorType, message)
}

func Unauthorized(errorType, message string) *CustomError {
	return newError(KindUnauthorized, errorType, message)
}

func Forbidden(errorType, message string) *CustomError {
	return newError(KindForbidden, errorType, message)
}

// ValidationFailed reports bad input; fields may be nil.
func ValidationFailed(errorType, message string, fields map[string]string) *CustomError {
	e := newError(KindValidationFailed, errorType, message)
	e.Fields = fields
	return e
}

// Infrastructure wraps a store or collaborator failure. The cause is kept for
// logging but never rendered to clients.
func Infrastructure(errorType string, err error) *CustomError {
	e := newError(KindInfrastructure, errorType, "Internal server error")
	e.Err = err
	return e
}

// AsCustomError unwraps err into a CustomError when one is present in the chain
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsKind reports whether err carries a CustomError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	ce, ok := AsCustomError(err)
	return ok && ce.Kind == kind
}
