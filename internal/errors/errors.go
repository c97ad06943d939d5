package errors

import (
	stderrors "errors"
	"fmt"

	"godoe/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeDesignError     = "DESIGN_ERROR"
	CodeShapeMismatch   = "SHAPE_MISMATCH"
	CodeNotImplemented  = "NOT_IMPLEMENTED"
	CodeConflict        = "CONFLICT"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// Classify attaches the code matching a domain sentinel. Errors that already
// carry a code are returned unchanged.
func Classify(err error) error {
	if err == nil || IsAppError(err) {
		return err
	}
	return WithCode(codeFor(err), err)
}

func codeFor(err error) string {
	switch {
	case stderrors.Is(err, core.ErrInvalidConfig):
		return CodeConfigInvalid
	case stderrors.Is(err, core.ErrEdgeActionNotImplemented):
		return CodeNotImplemented
	case stderrors.Is(err, core.ErrShapeMismatch):
		return CodeShapeMismatch
	case stderrors.Is(err, core.ErrNotFound), stderrors.Is(err, core.ErrCampaignNotFound):
		return CodeNotFound
	case stderrors.Is(err, core.ErrWrongPhase), stderrors.Is(err, core.ErrNoDesign),
		stderrors.Is(err, core.ErrNoScreeningResponse):
		return CodeConflict
	case stderrors.Is(err, core.ErrUnboundedFactor), stderrors.Is(err, core.ErrReductionTooLarge),
		stderrors.Is(err, core.ErrTooFewFactors), stderrors.Is(err, core.ErrNoScreeningAlternatives):
		return CodeDesignError
	case stderrors.Is(err, core.ErrNonIntegerOrdinal), stderrors.Is(err, core.ErrInvalidRange),
		stderrors.Is(err, core.ErrNonPositiveResponse), stderrors.Is(err, core.ErrInvalidFormula),
		stderrors.Is(err, core.ErrInsufficientData):
		return CodeInvalidInput
	}
	return CodeInternalError
}
