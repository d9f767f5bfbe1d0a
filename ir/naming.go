package ir

import "strings"

// CanonicalTypeName returns the IR type-def name for SQL table name, per
// spec.md §6's compiler naming convention: "Table T -> IR row type name
// Ttable-lowercased".
func CanonicalTypeName(tableName string) string {
	return "T" + strings.ToLower(tableName)
}

// CanonicalRelationName returns the IR relation name for SQL table name:
// "Table T -> IR relation name Rtable-lowercased".
func CanonicalRelationName(tableName string) string {
	return "R" + strings.ToLower(tableName)
}

// TableNameFromRelation reverses CanonicalRelationName/CanonicalTypeName:
// strip the one-character prefix and upper-case the rest. Used by the
// change-ingest callback to recover a client-facing table name from an
// engine relation/type name.
func TableNameFromRelation(name string) string {
	if len(name) < 2 {
		return strings.ToUpper(name)
	}
	return strings.ToUpper(name[1:])
}
