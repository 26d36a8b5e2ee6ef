package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller lacks the role required for the action.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the request conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict")

// ErrInternal indicates an unexpected server-side failure.
var ErrInternal = errors.New("internal error")

// ErrRetryable marks failures that may be resolved by re-issuing the same request.
var ErrRetryable = errors.New("retryable failure")

// ErrInvariantViolation marks ledger inconsistencies that must halt processing.
var ErrInvariantViolation = errors.New("ledger invariant violated")

// AppError carries an HTTP-ish status code with a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// ViolationKind enumerates the journal entry validation checks.
type ViolationKind string

const (
	InvalidAccount  ViolationKind = "InvalidAccount"
	MalformedLine   ViolationKind = "MalformedLine"
	UnbalancedEntry ViolationKind = "UnbalancedEntry"
	EmptyEntry      ViolationKind = "EmptyEntry"
)

// Violation is a single failed check on a candidate journal entry.
type Violation struct {
	Kind        ViolationKind    `json:"kind"`
	LineNumber  int              `json:"lineNumber,omitempty"`
	AccountCode string           `json:"accountCode,omitempty"`
	TotalDebit  *decimal.Decimal `json:"totalDebit,omitempty"`
	TotalCredit *decimal.Decimal `json:"totalCredit,omitempty"`
}

func (v Violation) String() string {
	switch v.Kind {
	case InvalidAccount:
		return fmt.Sprintf("InvalidAccount(%d, %s)", v.LineNumber, v.AccountCode)
	case MalformedLine:
		return fmt.Sprintf("MalformedLine(%d)", v.LineNumber)
	case UnbalancedEntry:
		return fmt.Sprintf("UnbalancedEntry(%s, %s)", v.TotalDebit, v.TotalCredit)
	case EmptyEntry:
		return "EmptyEntry"
	}
	return string(v.Kind)
}

// NewInvalidAccount reports a line whose account is unknown or inactive.
func NewInvalidAccount(lineNumber int, code string) Violation {
	return Violation{Kind: InvalidAccount, LineNumber: lineNumber, AccountCode: code}
}

// NewMalformedLine reports a line without exactly one non-zero side.
func NewMalformedLine(lineNumber int) Violation {
	return Violation{Kind: MalformedLine, LineNumber: lineNumber}
}

// NewUnbalancedEntry reports debit and credit totals that disagree.
func NewUnbalancedEntry(debit, credit decimal.Decimal) Violation {
	return Violation{Kind: UnbalancedEntry, TotalDebit: &debit, TotalCredit: &credit}
}

// NewEmptyEntry reports an entry without lines.
func NewEmptyEntry() Violation {
	return Violation{Kind: EmptyEntry}
}

// ValidationError lists every violation found on a candidate entry, in check order.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "journal entry invalid: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Has reports whether the error contains a violation of the given kind.
func (e *ValidationError) Has(kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// TransitionErrorKind distinguishes the two ways a lifecycle action can be refused.
type TransitionErrorKind string

const (
	InvalidTransition   TransitionErrorKind = "InvalidTransition"
	AuthorizationDenied TransitionErrorKind = "AuthorizationDenied"
)

// TransitionError is returned when a lifecycle action is not allowed.
type TransitionError struct {
	Kind   TransitionErrorKind
	From   string
	Action string
	Err    error
}

// NewInvalidTransition reports an action outside the lifecycle table.
func NewInvalidTransition(from fmt.Stringer, action string) *TransitionError {
	return &TransitionError{Kind: InvalidTransition, From: from.String(), Action: action}
}

// NewAuthorizationDenied wraps an authorizer refusal for an action.
func NewAuthorizationDenied(action string, err error) *TransitionError {
	return &TransitionError{Kind: AuthorizationDenied, Action: action, Err: err}
}

func (e *TransitionError) Error() string {
	if e.Kind == AuthorizationDenied {
		if e.Err != nil {
			return fmt.Sprintf("AuthorizationDenied(%s): %v", e.Action, e.Err)
		}
		return fmt.Sprintf("AuthorizationDenied(%s)", e.Action)
	}
	return fmt.Sprintf("InvalidTransition(%s, %s)", e.From, e.Action)
}

func (e *TransitionError) Is(target error) bool {
	switch e.Kind {
	case InvalidTransition:
		return target == ErrConflict
	case AuthorizationDenied:
		return target == ErrForbidden
	}
	return false
}

func (e *TransitionError) Unwrap() error { return e.Err }

// ConcurrentModificationError is returned to the loser of a race on an entry's status.
// Callers must re-fetch the entry before deciding whether to retry.
type ConcurrentModificationError struct {
	EntryID  string
	Expected string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("journal entry %s was modified concurrently (expected status %s); refresh and retry", e.EntryID, e.Expected)
}

func (e *ConcurrentModificationError) Is(target error) bool { return target == ErrConflict }

// PostingError wraps a storage failure while applying postings. The entry's status is unchanged.
type PostingError struct {
	EntryID string
	Op      string
	Err     error
}

func (e *PostingError) Error() string {
	return fmt.Sprintf("%s of journal entry %s failed: %v", e.Op, e.EntryID, e.Err)
}

func (e *PostingError) Is(target error) bool { return target == ErrRetryable }

func (e *PostingError) Unwrap() error { return e.Err }

// TrialBalanceMismatchError signals that total debits and credits across the ledger disagree.
type TrialBalanceMismatchError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *TrialBalanceMismatchError) Error() string {
	return fmt.Sprintf("trial balance out of balance: debit %s != credit %s", e.TotalDebit, e.TotalCredit)
}

func (e *TrialBalanceMismatchError) Is(target error) bool { return target == ErrInvariantViolation }
