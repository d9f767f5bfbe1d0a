package engine

import "math/big"

// Record is the closed variant of values exchanged with the engine:
// booleans, signed/arbitrary-precision integers, strings, tagged structs,
// and tuples, per spec.md §6.
type Record interface {
	engineRecord()
}

type BoolRecord bool

func (BoolRecord) engineRecord() {}

type SignedRecord int64

func (SignedRecord) engineRecord() {}

// BigIntRecord holds an ArbitraryInt value.
type BigIntRecord struct {
	Value *big.Int
}

func (BigIntRecord) engineRecord() {}

type StringRecord string

func (StringRecord) engineRecord() {}

// StructRecord is a tagged struct: Tag is the IR type name (e.g.
// "Thosts") or a wrapper tag such as "ddlog_std::Some". Fields are in
// declaration order.
type StructRecord struct {
	Tag    string
	Fields []Record
}

func (StructRecord) engineRecord() {}

// TupleRecord is an ordered, untagged group of values, used for
// composite primary-key match-expressions.
type TupleRecord struct {
	Elements []Record
}

func (TupleRecord) engineRecord() {}
