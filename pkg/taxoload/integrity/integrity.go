// Package integrity re-reads a finished output store and checks the
// relationships between its tables.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
	"github.com/cognicore/taxoload/pkg/taxoload/records"
	"github.com/cognicore/taxoload/pkg/taxoload/store"
)

// Violation is one broken rule.
type Violation struct {
	Table  string
	Row    int // 1-based
	Column string
	Value  string
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s row %d: %s=%q: %s", v.Table, v.Row, v.Column, v.Value, v.Reason)
}

// Report is the outcome of Check.
type Report struct {
	Tables     int
	Rows       int
	Violations []Violation
}

// OK reports whether no rule was broken.
func (r Report) OK() bool { return len(r.Violations) == 0 }

type foreignKey struct {
	table    string
	column   string
	ref      string
	nullable bool
}

var foreignKeys = []foreignKey{
	{records.TableCategories, "parent_id", records.TableCategories, true},
	{records.TableCategories, "vertical_id", records.TableVerticals, true},
	{records.TableAttributeValueMappings, "attribute_id", records.TableAttributes, false},
	{records.TableAttributeValueMappings, "value_id", records.TableAttributeValues, false},
	{records.TableCategoryAttributeMappings, "category_id", records.TableCategories, false},
	{records.TableCategoryAttributeMappings, "attribute_id", records.TableAttributes, false},
	{records.TableCategoryAttributeMappings, "extended_attribute_id", records.TableExtendedAttributes, true},
	{records.TableAttributeExtendedMappings, "attribute_id", records.TableAttributes, false},
	{records.TableAttributeExtendedMappings, "extended_attribute_id", records.TableExtendedAttributes, false},
}

var entityTables = map[string]string{
	records.CategoryLocalization.Entity:          records.TableCategories,
	records.AttributeLocalization.Entity:         records.TableAttributes,
	records.AttributeValueLocalization.Entity:    records.TableAttributeValues,
	records.VerticalLocalization.Entity:          records.TableVerticals,
	records.ExtendedAttributeLocalization.Entity: records.TableExtendedAttributes,
}

func init() {
	for _, k := range records.LocalizationKinds {
		foreignKeys = append(foreignKeys, foreignKey{k.Table(), k.IDColumn, entityTables[k.Entity], false})
	}
}

type checker struct {
	ctx    context.Context
	r      store.Reader
	tables map[string]store.Table
	ids    map[string]map[string]bool
	report Report
}

// Check verifies foreign keys, extended attribute handle uniqueness and
// category levels. The entity tables must exist; relation and localization
// tables that were never written are skipped.
func Check(ctx context.Context, r store.Reader) (Report, error) {
	c := &checker{
		ctx:    ctx,
		r:      r,
		tables: make(map[string]store.Table),
		ids:    make(map[string]map[string]bool),
	}

	for _, name := range []string{
		records.TableVerticals,
		records.TableCategories,
		records.TableAttributes,
		records.TableExtendedAttributes,
		records.TableAttributeValues,
	} {
		if _, err := c.load(name); err != nil {
			return Report{}, err
		}
	}

	for _, fk := range foreignKeys {
		t, err := c.load(fk.table)
		if errors.Is(err, internalerr.ErrTableNotFound) {
			continue
		}
		if err != nil {
			return Report{}, err
		}
		if err := c.checkForeignKey(t, fk); err != nil {
			return Report{}, err
		}
	}

	if err := c.checkUniqueHandles(); err != nil {
		return Report{}, err
	}
	if err := c.checkLevels(); err != nil {
		return Report{}, err
	}
	return c.report, nil
}

func (c *checker) load(name string) (store.Table, error) {
	if t, ok := c.tables[name]; ok {
		return t, nil
	}
	t, err := c.r.Read(c.ctx, name)
	if err != nil {
		return store.Table{}, fmt.Errorf("integrity: %w", err)
	}
	c.tables[name] = t
	c.report.Tables++
	c.report.Rows += len(t.Rows)
	return t, nil
}

func (c *checker) idSet(table string) (map[string]bool, error) {
	if ids, ok := c.ids[table]; ok {
		return ids, nil
	}
	t, err := c.load(table)
	if err != nil {
		return nil, err
	}
	col, err := t.Column("id")
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(t.Rows))
	for _, row := range t.Rows {
		if id, ok := cell(row, col); ok {
			ids[id] = true
		}
	}
	c.ids[table] = ids
	return ids, nil
}

func (c *checker) add(v Violation) {
	c.report.Violations = append(c.report.Violations, v)
}

func (c *checker) checkForeignKey(t store.Table, fk foreignKey) error {
	col, err := t.Column(fk.column)
	if err != nil {
		return err
	}
	ids, err := c.idSet(fk.ref)
	if err != nil {
		return err
	}
	for i, row := range t.Rows {
		v, ok := cell(row, col)
		if !ok {
			c.add(shortRow(t, i, fk.column))
			continue
		}
		if fk.nullable && (v == "" || v == records.NullSentinel) {
			continue
		}
		if !ids[v] {
			c.add(Violation{
				Table:  t.Name,
				Row:    i + 1,
				Column: fk.column,
				Value:  v,
				Reason: "no matching id in " + fk.ref,
			})
		}
	}
	return nil
}

func (c *checker) checkUniqueHandles() error {
	t := c.tables[records.TableExtendedAttributes]
	col, err := t.Column("handle")
	if err != nil {
		return err
	}
	seen := make(map[string]int)
	for i, row := range t.Rows {
		h, ok := cell(row, col)
		if !ok {
			c.add(shortRow(t, i, "handle"))
			continue
		}
		if first, ok := seen[h]; ok {
			c.add(Violation{
				Table:  t.Name,
				Row:    i + 1,
				Column: "handle",
				Value:  h,
				Reason: fmt.Sprintf("duplicate of row %d", first),
			})
			continue
		}
		seen[h] = i + 1
	}
	return nil
}

func (c *checker) checkLevels() error {
	t := c.tables[records.TableCategories]
	idCol, err := t.Column("id")
	if err != nil {
		return err
	}
	levelCol, err := t.Column("level")
	if err != nil {
		return err
	}
	parentCol, err := t.Column("parent_id")
	if err != nil {
		return err
	}

	levels := make(map[string]int, len(t.Rows))
	for _, row := range t.Rows {
		id, okID := cell(row, idCol)
		level, okLevel := cell(row, levelCol)
		if !okID || !okLevel {
			continue
		}
		if lvl, err := strconv.Atoi(level); err == nil {
			levels[id] = lvl
		}
	}
	for i, row := range t.Rows {
		parent, ok := cell(row, parentCol)
		if !ok || parent == "" {
			continue
		}
		id, _ := cell(row, idCol)
		child, ok := levels[id]
		if !ok {
			continue
		}
		pl, ok := levels[parent]
		if !ok {
			continue
		}
		if pl >= child {
			c.add(Violation{
				Table:  t.Name,
				Row:    i + 1,
				Column: "level",
				Value:  strconv.Itoa(child),
				Reason: fmt.Sprintf("parent %s has level %d", parent, pl),
			})
		}
	}
	return nil
}

// cell returns row[col], reporting false for rows too short to have it.
func cell(row []string, col int) (string, bool) {
	if col < 0 || col >= len(row) {
		return "", false
	}
	return row[col], true
}

func shortRow(t store.Table, i int, column string) Violation {
	return Violation{
		Table:  t.Name,
		Row:    i + 1,
		Column: column,
		Reason: fmt.Sprintf("row has %d of %d columns", len(t.Rows[i]), len(t.Columns)),
	}
}
