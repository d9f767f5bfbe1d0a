// Package mock provides an in-memory stand-in for engine.Engine, used by
// runtime's tests and by cmd/ddlogsql. It has no dataflow of its own: on
// commit, Insert and DeleteVal commands are applied verbatim and echoed
// back as Changes in submission order; a DeleteKey is resolved against the
// stored rows and echoed as a DeleteVal of the matched row, or not echoed
// at all when no row matches.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/lalithsuresh/differential-datalog/engine"
)

// Engine is a concurrency-safe, non-persistent engine.Engine implementation.
type Engine struct {
	mu        sync.RWMutex
	nameToID  map[string]engine.TableID
	idToName  map[engine.TableID]string
	rows      map[engine.TableID][]engine.Record
	keyFields map[engine.TableID][]int // field indices a DeleteKey's record addresses, in order
	nextID    engine.TableID

	txnMu   sync.Mutex // serializes the single in-flight transaction
	pending []engine.Command
	inTxn   bool
}

// NewEngine returns an empty Engine.
func NewEngine() *Engine {
	return &Engine{
		nameToID:  make(map[string]engine.TableID),
		idToName:  make(map[engine.TableID]string),
		rows:      make(map[engine.TableID][]engine.Record),
		keyFields: make(map[engine.TableID][]int),
	}
}

// RegisterTable assigns a TableID to name if it doesn't already have one,
// and returns it. keyFieldIndices names the struct field positions (in
// catalog primary-key declaration order) that a DeleteKey command's
// record addresses for this table; pass nil for a table with no primary
// key (DeleteKey then always fails to resolve). Tests and cmd/ddlogsql
// call this once per relation the compiler emits, before driving any
// transaction.
func (e *Engine) RegisterTable(name string, keyFieldIndices []int) engine.TableID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id, ok := e.nameToID[name]; ok {
		e.keyFields[id] = keyFieldIndices
		return id
	}
	e.nextID++
	id := e.nextID
	e.nameToID[name] = id
	e.idToName[id] = name
	e.rows[id] = nil
	e.keyFields[id] = keyFieldIndices
	return id
}

func (e *Engine) TableID(name string) (engine.TableID, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.nameToID[name]
	if !ok {
		return 0, fmt.Errorf("mock: unknown table %q", name)
	}
	return id, nil
}

func (e *Engine) TableName(id engine.TableID) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	name, ok := e.idToName[id]
	if !ok {
		return "", fmt.Errorf("mock: unknown table id %d", id)
	}
	return name, nil
}

func (e *Engine) TransactionStart(ctx context.Context) error {
	e.txnMu.Lock()
	if e.inTxn {
		e.txnMu.Unlock()
		return fmt.Errorf("mock: transaction already in progress")
	}
	e.inTxn = true
	e.pending = nil
	return nil
}

func (e *Engine) ApplyUpdates(ctx context.Context, cmds []engine.Command) error {
	if !e.inTxn {
		return fmt.Errorf("mock: ApplyUpdates called outside a transaction")
	}
	e.pending = append(e.pending, cmds...)
	return nil
}

func (e *Engine) TransactionCommitDumpChanges(ctx context.Context, onChange func(engine.Change) error) error {
	if !e.inTxn {
		return fmt.Errorf("mock: commit called outside a transaction")
	}
	defer func() {
		e.inTxn = false
		e.pending = nil
		e.txnMu.Unlock()
	}()

	e.mu.Lock()
	var changes []engine.Change
	for _, cmd := range e.pending {
		switch cmd.Kind {
		case engine.Insert:
			e.rows[cmd.Table] = append(e.rows[cmd.Table], cmd.Record)
			changes = append(changes, engine.Change{Kind: engine.Insert, Table: cmd.Table, Record: cmd.Record})
		case engine.DeleteVal:
			e.rows[cmd.Table] = removeMatching(e.rows[cmd.Table], cmd.Record)
			changes = append(changes, engine.Change{Kind: engine.DeleteVal, Table: cmd.Table, Record: cmd.Record})
		case engine.DeleteKey:
			// The change stream never carries DeleteKey (spec.md §4.5):
			// resolve it against the stored rows here and echo the
			// matched record as a DeleteVal, the way a real engine
			// would before handing changes to a client callback. No
			// match (already deleted, or never existed) is a no-op,
			// keeping repeated deletes of the same key idempotent.
			matched, idx, ok := e.resolveDeleteKey(cmd.Table, cmd.Record)
			if ok {
				e.rows[cmd.Table] = append(e.rows[cmd.Table][:idx:idx], e.rows[cmd.Table][idx+1:]...)
				changes = append(changes, engine.Change{Kind: engine.DeleteVal, Table: cmd.Table, Record: matched})
			}
		}
	}
	e.mu.Unlock()

	for _, ch := range changes {
		if err := onChange(ch); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) TransactionRollback(ctx context.Context) error {
	if !e.inTxn {
		return fmt.Errorf("mock: rollback called outside a transaction")
	}
	e.inTxn = false
	e.pending = nil
	e.txnMu.Unlock()
	return nil
}

// Rows returns a snapshot of the records currently stored for id.
func (e *Engine) Rows(id engine.TableID) []engine.Record {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]engine.Record, len(e.rows[id]))
	copy(out, e.rows[id])
	return out
}

// resolveDeleteKey finds the stored row addressed by key, matching on the
// field positions registered for table. The caller must hold e.mu.
func (e *Engine) resolveDeleteKey(table engine.TableID, key engine.Record) (engine.Record, int, bool) {
	keyIdx := e.keyFields[table]
	if len(keyIdx) == 0 {
		return nil, -1, false
	}
	for i, row := range e.rows[table] {
		sr, ok := row.(engine.StructRecord)
		if !ok {
			continue
		}
		actual, ok := keyValueFromStruct(sr, keyIdx)
		if !ok {
			continue
		}
		if recordsEqual(actual, key) {
			return row, i, true
		}
	}
	return nil, -1, false
}

// keyValueFromStruct projects the fields at keyIdx out of sr, as a
// TupleRecord for a composite key or the bare scalar for a single-column
// key, matching how runtime.dispatchDelete builds the DeleteKey record.
func keyValueFromStruct(sr engine.StructRecord, keyIdx []int) (engine.Record, bool) {
	for _, idx := range keyIdx {
		if idx < 0 || idx >= len(sr.Fields) {
			return nil, false
		}
	}
	if len(keyIdx) == 1 {
		return sr.Fields[keyIdx[0]], true
	}
	elems := make([]engine.Record, len(keyIdx))
	for i, idx := range keyIdx {
		elems[i] = sr.Fields[idx]
	}
	return engine.TupleRecord{Elements: elems}, true
}

func removeMatching(rows []engine.Record, target engine.Record) []engine.Record {
	var out []engine.Record
	removed := false
	for _, r := range rows {
		if !removed && recordsEqual(r, target) {
			removed = true
			continue
		}
		out = append(out, r)
	}
	return out
}

func recordsEqual(a, b engine.Record) bool {
	return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
}
