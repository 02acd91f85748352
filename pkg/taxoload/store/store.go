package store

import (
	"context"
	"fmt"

	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
)

// Store persists whole tables between pipeline stages.
//
// Stages never hand each other in-memory structures: a stage writes its
// output with Write and later stages rebuild what they need with Read.
type Store interface {
	Reader
	Write(ctx context.Context, t Table) error
	Close() error
}

// Reader is the read half of a Store.
type Reader interface {
	// Read returns the named table. A table that was never written yields an
	// error wrapping internalerr.ErrTableNotFound.
	Read(ctx context.Context, name string) (Table, error)
	// Tables lists the names of every stored table.
	Tables(ctx context.Context) ([]string, error)
}

// Table is a named, column-ordered set of string rows.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Column returns the index of the named column.
func (t Table) Column(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: table %s has no column %q", internalerr.ErrInvalidInput, t.Name, name)
}

// HasColumn reports whether the table has the named column.
func (t Table) HasColumn(name string) bool {
	_, err := t.Column(name)
	return err == nil
}

// Record returns row i keyed by column name.
func (t Table) Record(i int) map[string]string {
	rec := make(map[string]string, len(t.Columns))
	row := t.Rows[i]
	for j, c := range t.Columns {
		if j < len(row) {
			rec[c] = row[j]
		}
	}
	return rec
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	out := Table{
		Name:    t.Name,
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// NotFound builds the error returned for a missing table.
func NotFound(name string) error {
	return fmt.Errorf("%w: %s", internalerr.ErrTableNotFound, name)
}
