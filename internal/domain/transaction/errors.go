package transaction

import "errors"

// Kind classifies why a posting did not reach the Applied state.
type Kind string

const (
	KindInvalidAccount        Kind = "InvalidAccount"
	KindInvalidAmount         Kind = "InvalidAmount"
	KindInvalidType           Kind = "InvalidType"
	KindInvalidReason         Kind = "InvalidReason"
	KindInsufficientFunds     Kind = "InsufficientFunds"
	KindPostingFailed         Kind = "PostingFailed"
	KindClassifierUnavailable Kind = "ClassifierUnavailable"
)

// Error is a posting failure. Two errors match under errors.Is when their
// kinds are equal, so callers compare against the sentinels below.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidAccount        = &Error{Kind: KindInvalidAccount, Message: "account not found"}
	ErrInvalidAmount         = &Error{Kind: KindInvalidAmount, Message: "amount must be positive with at most 2 decimal places"}
	ErrInvalidType           = &Error{Kind: KindInvalidType, Message: "type must be one of income, expense, save"}
	ErrInvalidReason         = &Error{Kind: KindInvalidReason, Message: "reason is required"}
	ErrInsufficientFunds     = &Error{Kind: KindInsufficientFunds, Message: "insufficient funds"}
	ErrPostingFailed         = &Error{Kind: KindPostingFailed, Message: "posting failed"}
	ErrClassifierUnavailable = &Error{Kind: KindClassifierUnavailable, Message: "classifier unavailable"}
)

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the posting kind carried by err, or "" if err is not a
// posting error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsValidation reports whether err is a client-caused rejection that must
// not be retried.
func IsValidation(err error) bool {
	switch KindOf(err) {
	case KindInvalidAccount, KindInvalidAmount, KindInvalidType, KindInvalidReason, KindInsufficientFunds:
		return true
	}
	return false
}
