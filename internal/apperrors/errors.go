package apperrors

import "fmt"

// ValidationError reports bad input shape or range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthenticationError reports a failed signature or credential check.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return e.Reason
}

func Authentication(reason string) error {
	return &AuthenticationError{Reason: reason}
}

// NotFoundError reports a lookup miss for an external reference.
type NotFoundError struct {
	Resource string
	Ref      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Ref)
}

func NotFound(resource, ref string) error {
	return &NotFoundError{Resource: resource, Ref: ref}
}

// InvalidStateError reports an illegal lifecycle transition.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return e.Reason
}

func InvalidState(reason string) error {
	return &InvalidStateError{Reason: reason}
}

// InternalError wraps a storage or transaction failure.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func Internal(err error) error {
	return &InternalError{Err: err}
}
