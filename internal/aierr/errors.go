// ABOUTME: Typed error taxonomy for the AI layer with machine-readable codes
// ABOUTME: Recoverability is fixed per code and drives the retry wrapper
package aierr

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies a failure kind. Recoverability is fixed per code.
type Code string

const (
	CodeProviderUnavailable   Code = "PROVIDER_UNAVAILABLE"
	CodeModelLoadFailed       Code = "MODEL_LOAD_FAILED"
	CodeEmbeddingFailed       Code = "EMBEDDING_FAILED"
	CodeNetwork               Code = "NETWORK_ERROR"
	CodeChatFailed            Code = "CHAT_FAILED"
	CodeInitializationFailed  Code = "INITIALIZATION_FAILED"
	CodeDependencyUnavailable Code = "DEPENDENCY_UNAVAILABLE"
	CodeInvalidInput          Code = "INVALID_INPUT"
	CodeDimensionMismatch     Code = "DIMENSION_MISMATCH"
	CodeUnknown               Code = "UNKNOWN_ERROR"
)

// recoverableCodes lists the kinds that withRetry may transparently retry.
var recoverableCodes = map[Code]bool{
	CodeProviderUnavailable: true,
	CodeModelLoadFailed:     true,
	CodeEmbeddingFailed:     true,
	CodeNetwork:             true,
	CodeChatFailed:          true,
}

// Error is the base error type for the AI layer.
type Error struct {
	Code        Code
	Message     string
	Recoverable bool
	Cause       error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a taxonomy error with recoverability derived from the code.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Recoverable: recoverableCodes[code]}
}

// Wrap creates a taxonomy error preserving the original error as cause.
func Wrap(code Code, message string, cause error) *Error {
	e := New(code, message)
	e.Cause = cause
	return e
}

// Convenience constructors for the common kinds.

func ProviderUnavailable(name string, cause error) *Error {
	return Wrap(CodeProviderUnavailable, fmt.Sprintf("provider %s is unavailable", name), cause)
}

func ModelLoadFailed(model string, cause error) *Error {
	return Wrap(CodeModelLoadFailed, fmt.Sprintf("failed to load model %s", model), cause)
}

func EmbeddingFailed(cause error) *Error {
	return Wrap(CodeEmbeddingFailed, "embedding generation failed", cause)
}

func ChatFailed(cause error) *Error {
	return Wrap(CodeChatFailed, "chat completion failed", cause)
}

func InitializationFailed(what string, cause error) *Error {
	return Wrap(CodeInitializationFailed, fmt.Sprintf("failed to initialize %s", what), cause)
}

func InvalidInput(message string) *Error {
	return New(CodeInvalidInput, message)
}

// IsRecoverable reports whether err (or anything it wraps) is a recoverable
// taxonomy error. Unclassified errors are not recoverable.
func IsRecoverable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Recoverable
	}
	return false
}

// CodeOf extracts the taxonomy code from err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// Classify maps an arbitrary error onto the closest taxonomy member using
// substring heuristics on its message. Already-classified errors pass through
// unchanged; unrecognized errors become a generic non-recoverable error. The
// original error is always preserved as cause.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection") ||
		strings.Contains(msg, "timeout") || strings.Contains(msg, "fetch"):
		return Wrap(CodeNetwork, "network operation failed", err)
	case strings.Contains(msg, "embedding"):
		return Wrap(CodeEmbeddingFailed, "embedding generation failed", err)
	case strings.Contains(msg, "model") && (strings.Contains(msg, "load") || strings.Contains(msg, "download")):
		return Wrap(CodeModelLoadFailed, "model load failed", err)
	case strings.Contains(msg, "chat") || strings.Contains(msg, "completion"):
		return Wrap(CodeChatFailed, "chat completion failed", err)
	case strings.Contains(msg, "initializ"):
		return Wrap(CodeInitializationFailed, "initialization failed", err)
	case strings.Contains(msg, "unavailable") || strings.Contains(msg, "not available"):
		return Wrap(CodeProviderUnavailable, "provider unavailable", err)
	default:
		return Wrap(CodeUnknown, "unexpected error", err)
	}
}
