package exam

import "errors"

// Error kinds. Callers classify with errors.Is against ErrNotFound and
// ErrValidation; the specific errors below wrap one of the two.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

var (
	ErrNoSuchPosition = wrap(ErrNotFound, "no such question position")
	// ErrNoOpenAttempt covers entering a position past 1 without having
	// started at position 1 in this visit.
	ErrNoOpenAttempt = wrap(ErrNotFound, "no exam attempt in progress")
	ErrIncompleteRun = wrap(ErrNotFound, "exam run is incomplete")

	ErrNoSelection   = wrap(ErrValidation, "no option selected")
	ErrInvalidOption = wrap(ErrValidation, "selected option is out of range")
	ErrNotAnswered   = wrap(ErrValidation, "question has not been answered")
)

type kindError struct {
	kind error
	msg  string
}

func wrap(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
