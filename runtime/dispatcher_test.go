package runtime

import (
	"context"
	"testing"

	"github.com/lalithsuresh/differential-datalog/catalog"
	"github.com/lalithsuresh/differential-datalog/engine"
	"github.com/lalithsuresh/differential-datalog/ir"
	"github.com/lalithsuresh/differential-datalog/mock"
)

// hostsFixture builds the catalog/program/engine for a single
// "hosts(id INTEGER PRIMARY KEY, name VARCHAR)" table, the way
// cmd/ddlogsql wires them together, so Execute can be driven end-to-end
// against the in-memory engine.
func hostsFixture(t *testing.T) (*Dispatcher, engine.Engine, *catalog.Catalog, *MaterializedViews) {
	t.Helper()

	program := ir.Program{
		TypeDefs: []ir.TypeDef{{
			Name: "Thosts",
			Struct: ir.StructType{Fields: []ir.Field{
				{Name: "ID", Type: ir.SignedType{Width: 64}},
				{Name: "NAME", Type: ir.StringType{}},
			}},
		}},
		Relations: []ir.Relation{{
			Name:    "Rhosts",
			Role:    ir.RoleInput,
			RowType: ir.NamedType{Name: "Thosts"},
		}},
	}

	ddl := []string{"CREATE TABLE hosts (id INTEGER PRIMARY KEY, name VARCHAR)"}
	cat, err := catalog.Build(ddl, program)
	if err != nil {
		t.Fatalf("catalog.Build: %v", err)
	}

	info, err := cat.Lookup("HOSTS")
	if err != nil {
		t.Fatalf("cat.Lookup(HOSTS): %v", err)
	}

	idx := BuildRelationIndex(program)
	eng := mock.NewEngine()
	keyIdx := make([]int, len(info.PrimaryKey))
	for i, col := range info.PrimaryKey {
		keyIdx[i] = info.FieldIndex(col)
	}
	eng.RegisterTable("Rhosts", keyIdx)

	dispatcher := NewDispatcher(DefaultOptions(), idx)
	views := NewMaterializedViews()
	return dispatcher, eng, cat, views
}

func TestExecuteInsertThenSelectRoundTrip(t *testing.T) {
	d, eng, cat, views := hostsFixture(t)
	ctx := context.Background()

	_, err := d.Execute(ctx, eng, cat, views, []Statement{
		{SQL: "INSERT INTO hosts VALUES (1, 'a'), (2, 'b')"},
	})
	if err != nil {
		t.Fatalf("Execute(INSERT): %v", err)
	}

	results, err := d.Execute(ctx, eng, cat, views, []Statement{
		{SQL: "SELECT * FROM hosts"},
	})
	if err != nil {
		t.Fatalf("Execute(SELECT): %v", err)
	}
	rows := results[0].Rows
	if len(rows) != 2 {
		t.Fatalf("SELECT returned %d rows, want 2: %v", len(rows), rows)
	}
	if !rows[0].equal(ClientRow{int64(1), "a"}) || !rows[1].equal(ClientRow{int64(2), "b"}) {
		t.Errorf("SELECT rows = %v, want [[1 a] [2 b]]", rows)
	}
}

func TestExecuteDeleteByPKIsIdempotent(t *testing.T) {
	d, eng, cat, views := hostsFixture(t)
	ctx := context.Background()

	_, err := d.Execute(ctx, eng, cat, views, []Statement{
		{SQL: "INSERT INTO hosts VALUES (1, 'a'), (2, 'b')"},
	})
	if err != nil {
		t.Fatalf("Execute(INSERT): %v", err)
	}

	_, err = d.Execute(ctx, eng, cat, views, []Statement{
		{SQL: "DELETE FROM hosts WHERE id = 1"},
	})
	if err != nil {
		t.Fatalf("Execute(DELETE): %v", err)
	}

	results, err := d.Execute(ctx, eng, cat, views, []Statement{{SQL: "SELECT * FROM hosts"}})
	if err != nil {
		t.Fatalf("Execute(SELECT) after delete: %v", err)
	}
	rows := results[0].Rows
	if len(rows) != 1 || !rows[0].equal(ClientRow{int64(2), "b"}) {
		t.Fatalf("after one delete, rows = %v, want [[2 b]]", rows)
	}

	// Repeating the same delete must be a no-op, not an error, and must
	// not disturb the surviving row.
	_, err = d.Execute(ctx, eng, cat, views, []Statement{
		{SQL: "DELETE FROM hosts WHERE id = 1"},
	})
	if err != nil {
		t.Fatalf("Execute(DELETE) repeated: %v", err)
	}
	results, err = d.Execute(ctx, eng, cat, views, []Statement{{SQL: "SELECT * FROM hosts"}})
	if err != nil {
		t.Fatalf("Execute(SELECT) after repeated delete: %v", err)
	}
	rows = results[0].Rows
	if len(rows) != 1 || !rows[0].equal(ClientRow{int64(2), "b"}) {
		t.Fatalf("after repeated delete, rows = %v, want [[2 b]] unchanged", rows)
	}
}
