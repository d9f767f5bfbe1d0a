// Command ddlogsql reads a DDL file, compiles it into relational IR plus a
// metadata catalog, and runs one batch of DML statements (read from -f or
// stdin) against the in-memory mock.Engine, printing each statement's
// result as JSON.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ha1tch/tsqlparser"

	"github.com/lalithsuresh/differential-datalog/catalog"
	"github.com/lalithsuresh/differential-datalog/compiler"
	"github.com/lalithsuresh/differential-datalog/ir"
	"github.com/lalithsuresh/differential-datalog/mock"
	"github.com/lalithsuresh/differential-datalog/runtime"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ddlogsql", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		ddlFile    = fs.String("d", "", "Path to a file containing CREATE TABLE/CREATE VIEW statements")
		ddlFileL   = fs.String("ddl", "", "Path to a file containing CREATE TABLE/CREATE VIEW statements")
		scriptFile = fs.String("f", "", "Path to a file of DML statements to run as one batch (default: stdin)")
		strict     = fs.Bool("strict-unknown-type", false, "Omit the supported-type list from the error on an unrecognized DDL column type")
		showVer    = fs.Bool("version", false, "Show version")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVer {
		fmt.Fprintf(stdout, "ddlogsql version %s\n", version)
		return 0
	}
	if *ddlFileL != "" {
		*ddlFile = *ddlFileL
	}
	if *ddlFile == "" {
		fmt.Fprintln(stderr, "error: -ddl is required")
		return 2
	}

	ddlBytes, err := os.ReadFile(*ddlFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: reading DDL file: %v\n", err)
		return 1
	}
	ddlStatements := splitStatements(string(ddlBytes))

	program, err := compileDDL(ddlStatements, *strict)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	cat, err := catalog.Build(ddlStatements, program)
	if err != nil {
		fmt.Fprintf(stderr, "error: building catalog: %v\n", err)
		return 1
	}

	idx := runtime.BuildRelationIndex(program)

	eng := mock.NewEngine()
	for _, rel := range program.Relations {
		eng.RegisterTable(rel.Name, keyFieldIndices(idx, cat, rel))
	}
	views := runtime.NewMaterializedViews()
	dispatcher := runtime.NewDispatcher(runtime.DefaultOptions(), idx)

	var scriptReader io.Reader = stdin
	if *scriptFile != "" {
		f, err := os.Open(*scriptFile)
		if err != nil {
			fmt.Fprintf(stderr, "error: reading script file: %v\n", err)
			return 1
		}
		defer f.Close()
		scriptReader = f
	}
	scriptBytes, err := io.ReadAll(scriptReader)
	if err != nil {
		fmt.Fprintf(stderr, "error: reading DML batch: %v\n", err)
		return 1
	}

	batch := make([]runtime.Statement, 0)
	for _, sql := range splitStatements(string(scriptBytes)) {
		batch = append(batch, runtime.Statement{SQL: sql})
	}
	if len(batch) == 0 {
		return 0
	}

	results, err := dispatcher.Execute(context.Background(), eng, cat, views, batch)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	for _, res := range results {
		_ = enc.Encode(res)
	}
	return 0
}

// keyFieldIndices resolves rel's primary-key columns, if any, to struct
// field positions, so mock.Engine can translate a DeleteKey command back
// into the stored row it addresses. Only Input relations are ever DELETE
// targets; anything else registers with no key fields.
func keyFieldIndices(idx runtime.RelationIndex, cat *catalog.Catalog, rel ir.Relation) []int {
	tableName, ok := idx.ClientName(rel.Name)
	if !ok {
		return nil
	}
	info, err := cat.Lookup(tableName)
	if err != nil || len(info.PrimaryKey) == 0 {
		return nil
	}
	positions := make([]int, len(info.PrimaryKey))
	for i, col := range info.PrimaryKey {
		positions[i] = info.FieldIndex(col)
	}
	return positions
}

// compileDDL drives the first-dialect parser and compiler.Context over
// every statement in ddlStatements, in order, building one ir.Program.
func compileDDL(ddlStatements []string, strictUnknownType bool) (ir.Program, error) {
	ctx := compiler.NewContext(compiler.Options{StrictUnknownType: strictUnknownType})
	for _, stmt := range ddlStatements {
		astProgram, errs := tsqlparser.Parse(stmt)
		if len(errs) > 0 {
			return ir.Program{}, fmt.Errorf("parsing %q: %s", stmt, strings.Join(errs, "; "))
		}
		if err := compiler.TranslateDDL(ctx, astProgram); err != nil {
			return ir.Program{}, err
		}
	}
	return ctx.Program(), nil
}

// splitStatements splits a file of semicolon-terminated SQL statements,
// dropping blank entries and line comments, matching the teacher CLI's
// tolerant treatment of multi-statement input files.
func splitStatements(src string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var buf strings.Builder
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "--") || line == "" {
			continue
		}
		buf.WriteString(line)
		buf.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			stmt := strings.TrimSpace(strings.TrimSuffix(buf.String(), ";"))
			if stmt != "" {
				out = append(out, stmt)
			}
			buf.Reset()
		}
	}
	if rest := strings.TrimSpace(buf.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}
