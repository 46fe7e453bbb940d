// ABOUTME: Tests for the error taxonomy, classifier, and message tables
// ABOUTME: Validates recoverability per code and cause preservation
package aierr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew_RecoverabilityPerCode(t *testing.T) {
	recoverable := []Code{
		CodeProviderUnavailable,
		CodeModelLoadFailed,
		CodeEmbeddingFailed,
		CodeNetwork,
		CodeChatFailed,
	}
	for _, code := range recoverable {
		if !New(code, "x").Recoverable {
			t.Errorf("code %s should be recoverable", code)
		}
	}

	fatal := []Code{
		CodeInitializationFailed,
		CodeDependencyUnavailable,
		CodeInvalidInput,
		CodeDimensionMismatch,
		CodeUnknown,
	}
	for _, code := range fatal {
		if New(code, "x").Recoverable {
			t.Errorf("code %s should not be recoverable", code)
		}
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("socket closed")
	e := Wrap(CodeNetwork, "request failed", cause)
	if !errors.Is(e, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
}

func TestClassify_NetworkHeuristic(t *testing.T) {
	e := Classify(errors.New("connection refused"))
	if e.Code != CodeNetwork {
		t.Errorf("expected %s, got %s", CodeNetwork, e.Code)
	}
	if !e.Recoverable {
		t.Error("network errors should be recoverable")
	}
}

func TestClassify_EmbeddingHeuristic(t *testing.T) {
	e := Classify(errors.New("embedding request rejected"))
	if e.Code != CodeEmbeddingFailed {
		t.Errorf("expected %s, got %s", CodeEmbeddingFailed, e.Code)
	}
}

func TestClassify_ModelLoadHeuristic(t *testing.T) {
	e := Classify(errors.New("model download interrupted"))
	if e.Code != CodeModelLoadFailed {
		t.Errorf("expected %s, got %s", CodeModelLoadFailed, e.Code)
	}
}

func TestClassify_InitializeHeuristic(t *testing.T) {
	e := Classify(errors.New("could not initialize runtime"))
	if e.Code != CodeInitializationFailed {
		t.Errorf("expected %s, got %s", CodeInitializationFailed, e.Code)
	}
	if e.Recoverable {
		t.Error("initialization errors should not be recoverable")
	}
}

func TestClassify_UnknownBecomesNonRecoverable(t *testing.T) {
	e := Classify(errors.New("something entirely different"))
	if e.Code != CodeUnknown {
		t.Errorf("expected %s, got %s", CodeUnknown, e.Code)
	}
	if e.Recoverable {
		t.Error("unknown errors should not be recoverable")
	}
}

func TestClassify_PreservesOriginalAsCause(t *testing.T) {
	orig := errors.New("network glitch")
	e := Classify(orig)
	if !errors.Is(e, orig) {
		t.Error("classified error should keep the original as cause")
	}
}

func TestClassify_PassesThroughTaxonomyErrors(t *testing.T) {
	orig := New(CodeInvalidInput, "empty text")
	wrapped := fmt.Errorf("outer: %w", orig)
	e := Classify(wrapped)
	if e.Code != CodeInvalidInput {
		t.Errorf("expected pass-through of %s, got %s", CodeInvalidInput, e.Code)
	}
}

func TestClassify_Nil(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestIsRecoverable(t *testing.T) {
	if !IsRecoverable(New(CodeNetwork, "x")) {
		t.Error("network error should be recoverable")
	}
	if IsRecoverable(New(CodeInvalidInput, "x")) {
		t.Error("invalid input should not be recoverable")
	}
	if IsRecoverable(errors.New("plain")) {
		t.Error("unclassified errors should not be recoverable")
	}
}

func TestUserMessage_AllCodesCovered(t *testing.T) {
	codes := []Code{
		CodeProviderUnavailable, CodeModelLoadFailed, CodeEmbeddingFailed,
		CodeNetwork, CodeChatFailed, CodeInitializationFailed,
		CodeDependencyUnavailable, CodeInvalidInput, CodeDimensionMismatch,
		CodeUnknown,
	}
	for _, code := range codes {
		msg := UserMessage(code)
		if msg == "" {
			t.Errorf("no user message for code %s", code)
		}
		if strings.Contains(msg, string(code)) {
			t.Errorf("user message for %s leaks the raw code", code)
		}
	}
}

func TestUserMessage_UnknownCodeFallsBack(t *testing.T) {
	if UserMessage(Code("NOT_A_CODE")) != userMessages[CodeUnknown] {
		t.Error("unrecognized code should fall back to the generic message")
	}
}

func TestSupportInfo_IncludesCodeAndCause(t *testing.T) {
	cause := errors.New("tcp reset")
	info := SupportInfo(Wrap(CodeNetwork, "request failed", cause))
	if !strings.Contains(info, string(CodeNetwork)) {
		t.Error("support info should include the code")
	}
	if !strings.Contains(info, "tcp reset") {
		t.Error("support info should include the cause")
	}
	if !strings.Contains(info, "recoverable=yes") {
		t.Error("support info should state recoverability")
	}
}
