package service

import (
	"fmt"

	"github.com/pkg/errors"

	"airport-service/internal/policy"
	"airport-service/internal/repository"
	"airport-service/internal/validation"
)

const NoActiveAccount = "No active account found with the given credentials"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
	ErrConflict        = errors.New("conflict")

	// ErrNoActiveAccount rejects a login or refresh. Its message is meant for
	// the client.
	ErrNoActiveAccount = errors.Wrap(ErrUnauthenticated, NoActiveAccount)

	// ErrDecode marks event payloads that can never be processed.
	ErrDecode = errors.New("decode")
)

// ConflictError is a uniqueness violation reported on a request field.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Fields renders the conflict the same way as a validation failure.
func (e *ConflictError) Fields() map[string]string {
	return map[string]string{e.Field: e.Message}
}

var constraints = map[string]ConflictError{
	"uq_airports_name":             {"name", "airport with this name already exists."},
	"uq_airplane_types_name":       {"name", "airplane type with this name already exists."},
	"uq_airplanes_name_type":       {"name", "The fields name, airplane_type must make a unique set."},
	"uq_routes_source_destination": {"destination", "The fields source, destination must make a unique set."},
	"uq_tickets_flight_row_seat":   {"seat", "The fields flight, row, seat must make a unique set."},
	"uq_users_email":               {"email", "user with this email already exists."},
}

// conflict turns storage duplicates into field-scoped conflicts and leaves
// any other error untouched.
func conflict(err error) error {
	var dup *repository.DuplicateError
	if !errors.As(err, &dup) {
		return err
	}
	if c, ok := constraints[dup.Constraint]; ok {
		return &c
	}
	return &ConflictError{Field: "non_field_errors", Message: "Duplicate record."}
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// reference reports a dangling foreign key as a validation failure on field.
func reference(err error, field string, id fmt.Stringer) error {
	if errors.Is(err, repository.ErrNotFound) {
		return validation.Field(field, fmt.Sprintf("Invalid pk \"%s\" - object does not exist.", id))
	}
	return err
}

// prefixed renames the fields of validation and conflict failures.
func prefixed(err error, prefix string) error {
	switch e := err.(type) {
	case *validation.Error:
		return e.Prefixed(prefix)
	case *ConflictError:
		return &ConflictError{Field: prefix + e.Field, Message: e.Message}
	}
	return err
}

func denied(d policy.Decision) error {
	switch d {
	case policy.Allow:
		return nil
	case policy.DenyUnauthenticated:
		return ErrUnauthenticated
	case policy.DenyHidden:
		return ErrNotFound
	default:
		return ErrForbidden
	}
}
