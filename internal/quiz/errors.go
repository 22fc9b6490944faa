package quiz

import "errors"

// Builder and codec errors. A failed builder operation leaves the set unchanged.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrLastQuestion    = errors.New("at least one question must remain")
	ErrOptionsFixed    = errors.New("options of this question type cannot be edited")
	ErrTooManyOptions  = errors.New("question already has the maximum number of options")
	ErrTooFewOptions   = errors.New("question already has the minimum number of options")
	ErrUnknownType     = errors.New("unknown question type")
	ErrPointsRange     = errors.New("points out of range")
)

// ValidationError carries a human-readable message for a rejected submission.
// It is produced locally and never sent to the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }
