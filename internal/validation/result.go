package validation

import "fmt"

// FieldErrors maps a form field name to every message it failed with.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Op is the form operation being validated.
type Op string

const (
	OpCreate Op = "Create"
	OpUpdate Op = "Update"
)

// Summary is the banner shown above a form that failed validation.
func Summary(op Op, entity string) string {
	return fmt.Sprintf("Missing Fields. Failed to %s %s.", op, entity)
}

// Result holds either a validated value or the field errors, never both.
type Result[T any] struct {
	value   T
	errors  FieldErrors
	message string
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

func Invalid[T any](errs FieldErrors, message string) Result[T] {
	return Result[T]{errors: errs, message: message}
}

func (r Result[T]) Valid() bool {
	return r.errors.Empty()
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Errors() FieldErrors {
	return r.errors
}

func (r Result[T]) Message() string {
	return r.message
}
