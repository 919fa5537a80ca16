// Package error defines domain-specific errors for the expense report service.
package error

import "errors"

// Expense domain errors.
var (
	// ErrInvalidAmount is returned when an expense amount is missing, malformed, not positive or finer than cents.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidCategory is returned when a category is empty or not part of the category set.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrUnauthenticated is returned when no owner is resolved for the session.
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrInvalidProfileValues is returned when a profile field is malformed or negative.
	ErrInvalidProfileValues = errors.New("invalid profile values")

	// ErrInvalidSavingsAmount is returned when a savings deposit is zero or negative.
	ErrInvalidSavingsAmount = errors.New("invalid savings amount")

	// ErrProfileNotLoaded is returned when an action needs a profile that has not been loaded.
	ErrProfileNotLoaded = errors.New("profile not loaded")

	// ErrInvalidTimeFrame is returned when a report is requested for an unknown time frame.
	ErrInvalidTimeFrame = errors.New("invalid time frame")

	// ErrActionInProgress is returned when an action is started while the same action is pending.
	ErrActionInProgress = errors.New("action already in progress")

	// ErrRemoteOperation is returned when the store rejects or fails an operation.
	ErrRemoteOperation = errors.New("remote operation failed")

	// ErrProfileNotFound is returned by stores when a profile id does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrMissingNote is returned when a category suggestion is requested without a note.
	ErrMissingNote = errors.New("note is required")

	// ErrSuggestionUnavailable is returned when no category suggester is configured.
	ErrSuggestionUnavailable = errors.New("category suggestion unavailable")
)

// ErrorKind groups error codes by how callers should react.
type ErrorKind string

const (
	KindValidationFailed      ErrorKind = "validation_failed"
	KindRemoteOperationFailed ErrorKind = "remote_operation_failed"
	KindNotFound              ErrorKind = "not_found"
)

// ExpenseErrorCode defines error codes for expense errors.
// Format: EXP-XXYYYY where XX is category and YYYY is specific error.
type ExpenseErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidAmount        ExpenseErrorCode = "EXP-010001"
	ErrCodeInvalidCategory      ExpenseErrorCode = "EXP-010002"
	ErrCodeInvalidProfileValues ExpenseErrorCode = "EXP-010003"
	ErrCodeUnauthenticated      ExpenseErrorCode = "EXP-010004"
	ErrCodeInvalidSavingsAmount ExpenseErrorCode = "EXP-010005"
	ErrCodeProfileNotLoaded     ExpenseErrorCode = "EXP-010006"
	ErrCodeInvalidTimeFrame     ExpenseErrorCode = "EXP-010007"
	ErrCodeActionInProgress     ExpenseErrorCode = "EXP-010008"
	ErrCodeMissingFields        ExpenseErrorCode = "EXP-010009"

	// Remote errors (02XXXX)
	ErrCodeLoadExpensesFailed  ExpenseErrorCode = "EXP-020001"
	ErrCodeAddExpenseFailed    ExpenseErrorCode = "EXP-020002"
	ErrCodeLoadProfileFailed   ExpenseErrorCode = "EXP-020003"
	ErrCodeCreateProfileFailed ExpenseErrorCode = "EXP-020004"
	ErrCodeSaveProfileFailed   ExpenseErrorCode = "EXP-020005"
	ErrCodeAddToSavingsFailed  ExpenseErrorCode = "EXP-020006"
	ErrCodeSuggestionFailed    ExpenseErrorCode = "EXP-020007"
	ErrCodeSuggestionDisabled  ExpenseErrorCode = "EXP-020008"

	// Not found errors (03XXXX)
	ErrCodeProfileNotFound ExpenseErrorCode = "EXP-030001"
)

// ExpenseError represents an expense error with code, kind and message.
type ExpenseError struct {
	Code    ExpenseErrorCode
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ExpenseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ExpenseError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation ExpenseError.
func NewValidationError(code ExpenseErrorCode, message string, err error) *ExpenseError {
	return &ExpenseError{Code: code, Kind: KindValidationFailed, Message: message, Err: err}
}

// NewRemoteError creates a remote-operation ExpenseError wrapping the store failure.
func NewRemoteError(code ExpenseErrorCode, message string, err error) *ExpenseError {
	return &ExpenseError{Code: code, Kind: KindRemoteOperationFailed, Message: message, Err: err}
}

// NewNotFoundError creates a not-found ExpenseError.
func NewNotFoundError(code ExpenseErrorCode, message string, err error) *ExpenseError {
	return &ExpenseError{Code: code, Kind: KindNotFound, Message: message, Err: err}
}

// KindOf returns the kind of the first ExpenseError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var expErr *ExpenseError
	if errors.As(err, &expErr) {
		return expErr.Kind, true
	}
	return "", false
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindValidationFailed
}

// IsRemote reports whether err is a remote operation failure.
func IsRemote(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindRemoteOperationFailed
}
