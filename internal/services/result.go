package services

import "errors"

// Result is the {success, data | error} envelope for a single operation outcome.
type Result[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data,omitzero"`
	Error   *APIError `json:"error,omitempty"`
}

// NewResult wraps the return values of a client operation.
//
// Errors that are not already [*APIError] are wrapped into one so the envelope always carries a message.
func NewResult[T any](data T, err error) Result[T] {
	if err == nil {
		return Result[T]{Success: true, Data: data}
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return Result[T]{Error: apiErr}
	}
	return Result[T]{Error: &APIError{Message: err.Error(), Err: err}}
}

// Unwrap converts the envelope back into a value/error pair.
func (r Result[T]) Unwrap() (T, error) {
	if r.Success {
		return r.Data, nil
	}
	var zero T
	if r.Error == nil {
		return zero, &APIError{Message: "unknown error"}
	}
	return zero, r.Error
}
