package domain

// Error taxonomy shared by all services. Handlers map these to HTTP statuses
// in one place; services never translate them themselves.

type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NewNotFoundError(msg string) error { return &NotFoundError{Msg: msg} }

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(msg string) error { return &ValidationError{Msg: msg} }

type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func NewConflictError(msg string) error { return &ConflictError{Msg: msg} }

type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

func NewForbiddenError(msg string) error { return &ForbiddenError{Msg: msg} }
