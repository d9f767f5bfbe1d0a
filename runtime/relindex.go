package runtime

import (
	"strings"

	"github.com/lalithsuresh/differential-datalog/ir"
)

// RelationIndex recovers client-facing table/view names from engine
// relation names, and the reverse for Input relations (the only ones a
// client may INSERT/DELETE into). Input relations carry the compiler's
// "R"/"T" naming convention (spec.md §6) and so need the prefix stripped;
// Output relations (CREATE VIEW) keep the literal name the user wrote, so
// no stripping applies to them.
type RelationIndex struct {
	toClient      map[string]string // engine relation name -> client name
	inputRelation map[string]string // client table name -> engine relation name (Input only)
}

// BuildRelationIndex derives a RelationIndex from a compiled program.
func BuildRelationIndex(program ir.Program) RelationIndex {
	idx := RelationIndex{
		toClient:      make(map[string]string),
		inputRelation: make(map[string]string),
	}
	for _, rel := range program.Relations {
		switch rel.Role {
		case ir.RoleInput:
			client := ir.TableNameFromRelation(rel.Name)
			idx.toClient[rel.Name] = client
			idx.inputRelation[client] = rel.Name
		case ir.RoleOutput:
			idx.toClient[rel.Name] = strings.ToUpper(rel.Name)
		}
	}
	return idx
}

// ClientName returns the client-facing table/view name for an engine
// relation name.
func (idx RelationIndex) ClientName(relationName string) (string, bool) {
	name, ok := idx.toClient[relationName]
	return name, ok
}

// InputRelation returns the engine relation name backing client table
// name, if it is an Input relation.
func (idx RelationIndex) InputRelation(tableName string) (string, bool) {
	name, ok := idx.inputRelation[strings.ToUpper(tableName)]
	return name, ok
}
