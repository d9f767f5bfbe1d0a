package ir

import (
	"errors"
	"strings"
	"testing"
)

func TestTranslationErrorUnwrapMatchesSentinel(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want error
	}{
		{ErrKindParse, ErrParse},
		{ErrKindUnsupported, ErrUnsupported},
		{ErrKindUnknownSchemaObject, ErrUnknownSchemaObject},
		{ErrKindTypeMismatch, ErrTypeMismatch},
		{ErrKindInvariant, ErrInvariant},
	}
	for _, tt := range tests {
		err := NewTranslationError(tt.kind, nil, "boom")
		if !errors.Is(err, tt.want) {
			t.Errorf("NewTranslationError(kind=%v) does not wrap %v: %v", tt.kind, tt.want, err)
		}
	}
}

func TestTranslationErrorMessageIncludesNode(t *testing.T) {
	err := NewTranslationError(ErrKindUnknownSchemaObject, "some-node", "column %q not found", "ID")
	msg := err.Error()
	if !strings.Contains(msg, "some-node") {
		t.Fatalf("Error() = %q, want it to mention the node some-node", msg)
	}
	var te *TranslationError
	if !errors.As(err, &te) {
		t.Fatalf("errors.As failed to extract *TranslationError from %v", err)
	}
	if te.Node != "some-node" {
		t.Errorf("te.Node = %v, want some-node", te.Node)
	}
}
