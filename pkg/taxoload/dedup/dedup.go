// Package dedup removes duplicate rows from stored relation tables.
package dedup

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/cognicore/taxoload/pkg/taxoload/store"
)

// KeyFunc computes the equality key of a row.
type KeyFunc func(row []string) string

// Key returns the equality key definition for a table with the given columns:
//   - category_id and extended_attribute_id present: (category_id,
//     attribute_id, extended_attribute_id or "")
//   - extended_attribute_id present: (attribute_id, extended_attribute_id)
//   - otherwise the full row in column order
func Key(columns []string) KeyFunc {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	cell := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	_, hasCategory := idx["category_id"]
	_, hasExtended := idx["extended_attribute_id"]
	switch {
	case hasCategory && hasExtended:
		return func(row []string) string {
			return join(cell(row, "category_id"), cell(row, "attribute_id"), cell(row, "extended_attribute_id"))
		}
	case hasExtended:
		return func(row []string) string {
			return join(cell(row, "attribute_id"), cell(row, "extended_attribute_id"))
		}
	default:
		return func(row []string) string {
			return join(row...)
		}
	}
}

// join quotes every cell so that no cell content can merge two keys.
func join(parts ...string) string {
	return fmt.Sprintf("%q", parts)
}

// Rows returns rows without later duplicates under key, preserving the
// order of first occurrences, and the number of rows dropped.
func Rows(rows [][]string, key KeyFunc) ([][]string, int) {
	seen := make(map[string]struct{}, len(rows))
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, row)
	}
	return kept, len(rows) - len(kept)
}

// Table re-reads the named table and drops duplicate rows. The table is
// rewritten only when duplicates were found; otherwise it is left untouched.
func Table(ctx context.Context, st store.Store, name string, logger *log.Logger) (int, error) {
	t, err := st.Read(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("dedup %s: %w", name, err)
	}

	kept, removed := Rows(t.Rows, Key(t.Columns))
	if removed == 0 {
		return 0, nil
	}

	logger.Warn("Found duplicate entries", "table", name, "duplicates", removed)
	t.Rows = kept
	if err := st.Write(ctx, t); err != nil {
		return removed, fmt.Errorf("dedup %s: rewrite: %w", name, err)
	}
	return removed, nil
}
