// Package errors provides the classified error primitives used across daybook.
//
// Every failure surfaced to a caller carries a category (not found, render,
// config, ...), a severity and optional structured context. Adapters translate
// classified errors into HTTP responses and CLI exit codes.
//
// Example usage:
//
//	err := errors.NotFoundError("document not found").
//		WithContext("document_id", id).
//		WithCause(fsErr).
//		Build()
package errors
