// ABOUTME: User-facing message table and support-info formatter for error codes
// ABOUTME: Translates machine-readable codes into short non-alarming text
package aierr

import "fmt"

var userMessages = map[Code]string{
	CodeProviderUnavailable:   "The AI service is temporarily unavailable. Please try again in a moment.",
	CodeModelLoadFailed:       "The AI model could not be loaded. Check your connection and try again.",
	CodeEmbeddingFailed:       "Could not process that text right now. Please try again.",
	CodeNetwork:               "A network problem interrupted the request. Please check your connection.",
	CodeChatFailed:            "The AI could not complete that response. Please try again.",
	CodeInitializationFailed:  "The AI system failed to start. A restart may be required.",
	CodeDependencyUnavailable: "A required component is missing. Reinstalling may be required.",
	CodeInvalidInput:          "That input could not be processed. Please check it and try again.",
	CodeDimensionMismatch:     "An internal data inconsistency occurred. Please report this issue.",
	CodeUnknown:               "Something went wrong. Please try again.",
}

// UserMessage returns a short, non-technical message for an error code.
func UserMessage(code Code) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return userMessages[CodeUnknown]
}

// SupportInfo renders diagnostic details for an error: code, recoverability,
// and the underlying cause, suitable for a bug report.
func SupportInfo(err error) string {
	e := Classify(err)
	if e == nil {
		return "no error"
	}
	recoverable := "no"
	if e.Recoverable {
		recoverable = "yes"
	}
	cause := "none"
	if e.Cause != nil {
		cause = e.Cause.Error()
	}
	return fmt.Sprintf("code=%s recoverable=%s message=%q cause=%q (include this when filing an issue)",
		e.Code, recoverable, e.Message, cause)
}
