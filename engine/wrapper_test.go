package engine

import "testing"

func TestWrapSomeTagsSingleField(t *testing.T) {
	wrapped := WrapSome(SignedRecord(42))
	sr, ok := wrapped.(StructRecord)
	if !ok || sr.Tag != SomeTag || len(sr.Fields) != 1 {
		t.Fatalf("WrapSome(42) = %#v, want a StructRecord{Tag: %q} with one field", wrapped, SomeTag)
	}
	if sr.Fields[0] != SignedRecord(42) {
		t.Errorf("WrapSome field = %v, want 42", sr.Fields[0])
	}
}

func TestWrapNoneTagsEmptyStruct(t *testing.T) {
	wrapped := WrapNone()
	sr, ok := wrapped.(StructRecord)
	if !ok || sr.Tag != NoneTag || len(sr.Fields) != 0 {
		t.Fatalf("WrapNone() = %#v, want an empty StructRecord{Tag: %q}", wrapped, NoneTag)
	}
}
