// Package leaderr defines the error taxonomy shared across the decision core.
package leaderr

import (
	"errors"
	"fmt"
)

// InputError reports a missing or malformed caller input (session id, message,
// required profile field). It is never retried.
type InputError struct {
	Field string
	Msg   string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// NewInputError creates an InputError for the given field.
func NewInputError(field, msg string) *InputError {
	return &InputError{Field: field, Msg: msg}
}

// IsInput returns true if the error chain contains an InputError.
func IsInput(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// ProviderError reports an AI backend failure (timeout, quota, malformed
// response). The router recovers it locally with a one-shot fallback; it only
// surfaces to callers when the fallback also fails.
type ProviderError struct {
	Backend string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Backend, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps a backend failure.
func NewProviderError(backend string, err error) *ProviderError {
	return &ProviderError{Backend: backend, Err: err}
}

// IsProvider returns true if the error chain contains a ProviderError.
func IsProvider(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// ExpectedFailure marks a collaborator outage that is part of normal
// operation (ad-library search, site fetch). Handlers convert it to a
// successful response carrying a manual-research flag.
type ExpectedFailure struct {
	Collaborator string
	Err          error
}

func (e *ExpectedFailure) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *ExpectedFailure) Unwrap() error {
	return e.Err
}

// NewExpectedFailure wraps a collaborator outage.
func NewExpectedFailure(collaborator string, err error) *ExpectedFailure {
	return &ExpectedFailure{Collaborator: collaborator, Err: err}
}

// IsExpected returns true if the error chain contains an ExpectedFailure.
func IsExpected(err error) bool {
	var ef *ExpectedFailure
	return errors.As(err, &ef)
}

// DataIncomplete is a normal negative outcome, not a failure: the lead has
// not yet disclosed enough to decide. It carries what to ask next.
type DataIncomplete struct {
	Missing      []string
	NextQuestion string
}

func (e *DataIncomplete) Error() string {
	return fmt.Sprintf("qualification data incomplete, missing %v", e.Missing)
}

// NewDataIncomplete creates a DataIncomplete outcome.
func NewDataIncomplete(missing []string, nextQuestion string) *DataIncomplete {
	return &DataIncomplete{Missing: missing, NextQuestion: nextQuestion}
}

// IsIncomplete returns true if the error chain contains a DataIncomplete.
func IsIncomplete(err error) bool {
	var di *DataIncomplete
	return errors.As(err, &di)
}
