package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorNotFound, "not_found"},
		{ErrorInvalidState, "invalid_state"},
		{ErrorUnsupported, "unsupported"},
		{ErrorInvalid, "invalid"},
		{ErrorInternal, "internal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"document not found", ErrDocumentNotFound, true},
		{"node not found", ErrNodeNotFound, true},
		{"entry not found", ErrEntryNotFound, true},
		{"stale entry", ErrEntryStale, true},
		{"wrapped entry not found", fmt.Errorf("tier 3: %w", ErrEntryNotFound), true},
		{"port connected", ErrPortConnected, false},
		{"classified not found", &ClassifiedError{Class: ErrorNotFound, Err: fmt.Errorf("test")}, true},
		{"classified invalid state", &ClassifiedError{Class: ErrorInvalidState, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsNotFound(test.err); got != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, got, test.err)
			}
		})
	}
}

func TestIsInvalidState(t *testing.T) {
	if !IsInvalidState(ErrPortConnected) {
		t.Error("ErrPortConnected should be invalid state")
	}
	if !IsInvalidState(ErrPortIsOutput) {
		t.Error("ErrPortIsOutput should be invalid state")
	}
	if IsInvalidState(ErrEntryNotFound) {
		t.Error("ErrEntryNotFound should not be invalid state")
	}
}

func TestIsUnsupported(t *testing.T) {
	if !IsUnsupported(ErrUnsupportedShape) {
		t.Error("ErrUnsupportedShape should be unsupported")
	}
	if !IsUnsupported(fmt.Errorf("struct default: %w", ErrNoCoercionRule)) {
		t.Error("wrapped ErrNoCoercionRule should be unsupported")
	}
	if IsUnsupported(ErrInvalidConfig) {
		t.Error("ErrInvalidConfig should not be unsupported")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"not found sentinel", ErrPortNotFound, ErrorNotFound},
		{"state sentinel", ErrPortConnected, ErrorInvalidState},
		{"shape sentinel", ErrUnsupportedShape, ErrorUnsupported},
		{"config sentinel", ErrInvalidConfig, ErrorInvalid},
		{"unknown error", fmt.Errorf("boom"), ErrorInternal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Classify(test.err); got != test.expected {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestWrapPreservesSentinel(t *testing.T) {
	wrapped := WrapNotFound(ErrEntryNotFound, "Pipeline", "Resolve", "key lookup")

	if !errors.Is(wrapped, ErrEntryNotFound) {
		t.Error("wrapped error should match sentinel via errors.Is")
	}
	if !IsNotFound(wrapped) {
		t.Error("wrapped error should classify as not found")
	}
	if !strings.Contains(wrapped.Error(), "Pipeline.Resolve") {
		t.Errorf("wrapped error should carry component context, got: %v", wrapped)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, "C", "M", "a") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if WrapNotFound(nil, "C", "M", "a") != nil {
		t.Error("WrapNotFound(nil) should return nil")
	}
	if WithSuggestion(nil, "anything") != nil {
		t.Error("WithSuggestion(nil) should return nil")
	}
}

func TestWithSuggestion(t *testing.T) {
	base := WrapNotFound(ErrEntryNotFound, "Pipeline", "Resolve", "key lookup")
	err := WithSuggestion(base, "run discover_nodes first")

	if got := SuggestionOf(err); got != "run discover_nodes first" {
		t.Errorf("expected suggestion to round-trip, got %q", got)
	}
	if !errors.Is(err, ErrEntryNotFound) {
		t.Error("suggestion wrapper should preserve the error chain")
	}
	// Attaching a suggestion must not mutate the original classified error
	if got := SuggestionOf(base); got != "" {
		t.Errorf("original error gained a suggestion: %q", got)
	}
}

func TestWithSuggestionOnPlainError(t *testing.T) {
	err := WithSuggestion(fmt.Errorf("port 'Target' not found on node"), "call get_node to list ports")

	if got := SuggestionOf(err); got != "call get_node to list ports" {
		t.Errorf("expected suggestion on plain error, got %q", got)
	}
	if Classify(err) != ErrorInternal {
		t.Errorf("plain error should classify internal, got %v", Classify(err))
	}
}
