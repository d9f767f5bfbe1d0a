package engine

// Fully-qualified nullable wrapper tags, part of the external wire
// contract with the engine (spec.md §6): every value placed in a nullable
// column is wrapped as a single-element struct tagged Some, or an empty
// struct tagged None for absent/null.
const (
	SomeTag = "ddlog_std::Some"
	NoneTag = "ddlog_std::None"
)

// WrapSome wraps v as a Some-tagged single-field struct.
func WrapSome(v Record) Record {
	return StructRecord{Tag: SomeTag, Fields: []Record{v}}
}

// WrapNone returns the None-tagged empty struct.
func WrapNone() Record {
	return StructRecord{Tag: NoneTag}
}
