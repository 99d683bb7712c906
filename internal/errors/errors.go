package errors

import "errors"

// This package defines a centralized set of sentinel errors for the
// application. Services return these recognizable errors without coupling
// themselves to transport concerns; the API layer maps them to HTTP status
// codes with errors.Is().

var (
	// ErrNotFound signifies that a requested resource could not be located.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that client input failed business rule
	// validation.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that an operation conflicts with the current
	// state of a resource, e.g. sending a message while another exchange
	// is still in flight on the same session.
	ErrConflict = errors.New("resource conflict")

	// ErrUnavailable signifies that a required collaborator is not in a
	// usable state, e.g. a model that has not been initialized yet.
	ErrUnavailable = errors.New("resource unavailable")

	// ErrInternal signifies an unexpected server-side failure. Kept generic
	// to avoid leaking implementation details to the client.
	ErrInternal = errors.New("internal error")
)
