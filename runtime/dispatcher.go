// Package runtime implements the transactional DML dispatch path: parsing
// each client statement with the second-dialect parser, issuing engine
// commands inside one transaction, and materializing view contents from
// the post-commit change stream (spec.md §4.4-§4.6).
package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lalithsuresh/differential-datalog/catalog"
	"github.com/lalithsuresh/differential-datalog/codec"
	"github.com/lalithsuresh/differential-datalog/engine"
	"github.com/lalithsuresh/differential-datalog/ir"
)

// Statement is one client-submitted DML request within a batch.
type Statement struct {
	SQL      string
	Bindings []any
}

// Result is one statement's outcome: an update count, and an optional
// result set for SELECT.
type Result struct {
	UpdateCount int
	Columns     []string
	Rows        []ClientRow
}

// Dispatcher drives a batch of Statements against an engine.Engine and a
// catalog.Catalog, under the transaction framing of spec.md §4.4.
type Dispatcher struct {
	opts Options
	idx  RelationIndex
}

// NewDispatcher returns a Dispatcher configured by opts, resolving engine
// relation names through idx (built once from the compiled program via
// BuildRelationIndex).
func NewDispatcher(opts Options, idx RelationIndex) *Dispatcher {
	return &Dispatcher{opts: opts, idx: idx}
}

// Execute runs batch as a single transaction: transaction-start, each
// statement dispatched in order, commit-dump-changes feeding views, or a
// rollback discarding every result in the batch on the first failure.
func (d *Dispatcher) Execute(ctx context.Context, eng engine.Engine, cat *catalog.Catalog, views *MaterializedViews, batch []Statement) ([]Result, error) {
	log := d.opts.logger()
	if err := eng.TransactionStart(ctx); err != nil {
		return nil, wrapDMLError(ErrKindEngine, "", err)
	}
	log.Debug("runtime: transaction started", "statements", len(batch))

	results := make([]Result, 0, len(batch))
	for _, stmt := range batch {
		res, err := d.dispatchOne(ctx, eng, cat, views, stmt)
		if err != nil {
			log.Warn("runtime: statement failed, rolling back batch", "sql", stmt.SQL, "error", err)
			if rbErr := eng.TransactionRollback(ctx); rbErr != nil {
				return nil, &DMLError{Kind: ErrKindInvariant, SQL: stmt.SQL, Msg: "rollback failed after statement error: " + rbErr.Error(), Err: ErrFatalRollback}
			}
			return nil, err
		}
		results = append(results, res)
	}

	onChange := func(ch engine.Change) error {
		return d.applyChange(eng, cat, views, ch)
	}
	if err := eng.TransactionCommitDumpChanges(ctx, onChange); err != nil {
		log.Warn("runtime: commit failed, rolling back batch", "error", err)
		if rbErr := eng.TransactionRollback(ctx); rbErr != nil {
			return nil, &DMLError{Kind: ErrKindInvariant, Msg: "rollback failed after commit error: " + rbErr.Error(), Err: ErrFatalRollback}
		}
		return nil, wrapDMLError(ErrKindEngine, "", err)
	}
	log.Info("runtime: batch committed", "statements", len(batch))
	return results, nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, eng engine.Engine, cat *catalog.Catalog, views *MaterializedViews, stmt Statement) (Result, error) {
	kind, _, err := singleStatementNode(stmt.SQL)
	if err != nil {
		return Result{}, wrapDMLError(ErrKindParse, stmt.SQL, err)
	}
	switch kind {
	case "SelectStmt":
		return d.dispatchSelect(cat, views, stmt)
	case "InsertStmt":
		return d.dispatchInsert(ctx, eng, cat, stmt)
	case "DeleteStmt":
		return d.dispatchDelete(ctx, eng, cat, stmt)
	default:
		return Result{}, newDMLError(ErrKindUnsupported, stmt.SQL, "unsupported statement kind %s", kind)
	}
}

func (d *Dispatcher) dispatchSelect(cat *catalog.Catalog, views *MaterializedViews, stmt Statement) (Result, error) {
	tableName, err := parseSelectTable(stmt.SQL)
	if err != nil {
		return Result{}, wrapDMLError(ErrKindUnsupported, stmt.SQL, err)
	}
	info, err := cat.Lookup(tableName)
	if err != nil {
		return Result{}, wrapDMLError(ErrKindUnknownSchemaObject, stmt.SQL, err)
	}
	columns := make([]string, len(info.Fields))
	for i, f := range info.Fields {
		columns[i] = f.Name
	}
	rows := views.Snapshot(strings.ToUpper(tableName))
	return Result{Columns: columns, Rows: rows}, nil
}

func (d *Dispatcher) dispatchInsert(ctx context.Context, eng engine.Engine, cat *catalog.Catalog, stmt Statement) (Result, error) {
	parsed, err := parseInsert(stmt.SQL)
	if err != nil {
		return Result{}, wrapDMLError(ErrKindUnsupported, stmt.SQL, err)
	}
	info, err := cat.Lookup(parsed.table)
	if err != nil {
		return Result{}, wrapDMLError(ErrKindUnknownSchemaObject, stmt.SQL, err)
	}

	relName, ok := d.idx.InputRelation(parsed.table)
	if !ok {
		return Result{}, newDMLError(ErrKindUnsupported, stmt.SQL, "table %s is not insertable (not an input relation)", parsed.table)
	}
	relID, err := eng.TableID(relName)
	if err != nil {
		return Result{}, wrapDMLError(ErrKindEngine, stmt.SQL, err)
	}

	cmds := make([]engine.Command, 0, len(parsed.rows))
	for _, row := range parsed.rows {
		if len(row) != len(info.Fields) {
			return Result{}, newDMLError(ErrKindArityMismatch, stmt.SQL,
				"INSERT row has %d values, table %s has %d columns", len(row), parsed.table, len(info.Fields))
		}
		fields := make([]engine.Record, len(row))
		for i, v := range row {
			rec, err := encodeInsertValue(info.Fields[i], v, stmt.Bindings)
			if err != nil {
				return Result{}, wrapDMLError(ErrKindArityMismatch, stmt.SQL, err)
			}
			fields[i] = rec
		}
		cmds = append(cmds, engine.Command{
			Kind:   engine.Insert,
			Table:  relID,
			Record: engine.StructRecord{Tag: ir.CanonicalTypeName(parsed.table), Fields: fields},
		})
	}
	if err := eng.ApplyUpdates(ctx, cmds); err != nil {
		return Result{}, wrapDMLError(ErrKindEngine, stmt.SQL, err)
	}
	return Result{UpdateCount: len(cmds)}, nil
}

func encodeInsertValue(field catalog.FieldInfo, v valueSpec, bindings []any) (engine.Record, error) {
	if v.hasBinding {
		if v.bindingIdx < 1 || v.bindingIdx > len(bindings) {
			return nil, fmt.Errorf("binding $%d out of range (%d bindings supplied)", v.bindingIdx, len(bindings))
		}
		return codec.Encode(field.Type, bindings[v.bindingIdx-1], field.Nullable)
	}
	rec, err := codec.ParseLiteral(v.token, field.Type)
	if err != nil {
		return nil, err
	}
	if field.Nullable {
		return engine.WrapSome(rec), nil
	}
	return rec, nil
}

func (d *Dispatcher) dispatchDelete(ctx context.Context, eng engine.Engine, cat *catalog.Catalog, stmt Statement) (Result, error) {
	parsed, err := parseDelete(stmt.SQL)
	if err != nil {
		return Result{}, wrapDMLError(ErrKindUnsupported, stmt.SQL, err)
	}
	info, err := cat.Lookup(parsed.table)
	if err != nil {
		return Result{}, wrapDMLError(ErrKindUnknownSchemaObject, stmt.SQL, err)
	}
	if len(info.PrimaryKey) == 0 {
		return Result{}, newDMLError(ErrKindUnknownSchemaObject, stmt.SQL, "table %s has no primary key", parsed.table)
	}

	positions := make([]engine.Record, len(info.PrimaryKey))
	covered := make([]bool, len(info.PrimaryKey))
	for col, spec := range parsed.predicates {
		pkIdx := -1
		for i, pk := range info.PrimaryKey {
			if pk == col {
				pkIdx = i
				break
			}
		}
		if pkIdx < 0 {
			return Result{}, newDMLError(ErrKindUnknownSchemaObject, stmt.SQL, "column %s is not part of the primary key", col)
		}
		fieldIdx := info.FieldIndex(col)
		if fieldIdx < 0 {
			return Result{}, newDMLError(ErrKindUnknownSchemaObject, stmt.SQL, "unknown column %s", col)
		}
		field := info.Fields[fieldIdx]
		rec, err := encodeInsertValue(field, spec, stmt.Bindings)
		if err != nil {
			return Result{}, wrapDMLError(ErrKindArityMismatch, stmt.SQL, err)
		}
		positions[pkIdx] = rec
		covered[pkIdx] = true
	}
	for i, ok := range covered {
		if !ok {
			return Result{}, newDMLError(ErrKindArityMismatch, stmt.SQL,
				"WHERE clause does not cover primary-key column %s", info.PrimaryKey[i])
		}
	}

	var keyRecord engine.Record
	if len(positions) >= 2 {
		keyRecord = engine.TupleRecord{Elements: positions}
	} else {
		keyRecord = positions[0]
	}

	relName, ok := d.idx.InputRelation(parsed.table)
	if !ok {
		return Result{}, newDMLError(ErrKindUnsupported, stmt.SQL, "table %s is not deletable (not an input relation)", parsed.table)
	}
	relID, err := eng.TableID(relName)
	if err != nil {
		return Result{}, wrapDMLError(ErrKindEngine, stmt.SQL, err)
	}
	cmd := engine.Command{Kind: engine.DeleteKey, Table: relID, Record: keyRecord}
	if err := eng.ApplyUpdates(ctx, []engine.Command{cmd}); err != nil {
		return Result{}, wrapDMLError(ErrKindEngine, stmt.SQL, err)
	}
	return Result{UpdateCount: 1}, nil
}

// applyChange is the commit-dump-changes callback (spec.md §4.5): it
// recovers the client table name from the engine relation id, decodes the
// record through the codec, and mutates views accordingly.
func (d *Dispatcher) applyChange(eng engine.Engine, cat *catalog.Catalog, views *MaterializedViews, ch engine.Change) error {
	relName, err := eng.TableName(ch.Table)
	if err != nil {
		return wrapDMLError(ErrKindEngine, "", err)
	}
	tableName, ok := d.idx.ClientName(relName)
	if !ok {
		tableName = ir.TableNameFromRelation(relName)
	}
	info, err := cat.Lookup(tableName)
	if err != nil {
		return wrapDMLError(ErrKindUnknownSchemaObject, "", err)
	}

	structRec, ok := ch.Record.(engine.StructRecord)
	if !ok || len(structRec.Fields) != len(info.Fields) {
		return newDMLError(ErrKindInvariant, "", "change record for %s has unexpected shape", tableName)
	}
	row := make(ClientRow, len(info.Fields))
	for i, f := range info.Fields {
		v, err := codec.Decode(f.Type, structRec.Fields[i], f.Nullable)
		if err != nil {
			return wrapDMLError(ErrKindInvariant, "", err)
		}
		row[i] = v
	}

	switch ch.Kind {
	case engine.Insert:
		views.Add(tableName, row)
	case engine.DeleteVal:
		views.Remove(tableName, row)
	case engine.DeleteKey:
		return &DMLError{Kind: ErrKindInvariant, Msg: fmt.Sprintf("unexpected DeleteKey in change stream for %s", tableName), Err: ErrUnexpectedChangeKind}
	}
	return nil
}

// Query snapshots multiple tables' materialized views concurrently,
// usable outside a batch (spec.md §5's "SELECT handlers running outside a
// batch"). Table lookups fan out through an errgroup: every lookup runs to
// completion, and if any table is unknown the call returns the first error
// and no results.
func (d *Dispatcher) Query(ctx context.Context, cat *catalog.Catalog, views *MaterializedViews, tables []string) (map[string]Result, error) {
	g, _ := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(map[string]Result, len(tables))

	for _, t := range tables {
		table := t
		g.Go(func() error {
			info, err := cat.Lookup(table)
			if err != nil {
				return wrapDMLError(ErrKindUnknownSchemaObject, "", err)
			}
			columns := make([]string, len(info.Fields))
			for i, f := range info.Fields {
				columns[i] = f.Name
			}
			rows := views.Snapshot(strings.ToUpper(table))

			mu.Lock()
			out[strings.ToUpper(table)] = Result{Columns: columns, Rows: rows}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
