// Package lookup builds natural-key → surrogate-id tables by re-reading the
// tables earlier stages wrote.
//
// Builders always go through a store.Reader. A stage that needs the ids of
// an entity therefore fails with internalerr.ErrTableNotFound when it runs
// before the stage that extracts that entity.
package lookup

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
	"github.com/cognicore/taxoload/pkg/taxoload/records"
	"github.com/cognicore/taxoload/pkg/taxoload/source"
	"github.com/cognicore/taxoload/pkg/taxoload/store"
)

// Entry is the surrogate id of one entity plus the auxiliary fields some
// consumers join on.
type Entry struct {
	ID     int
	Key    string
	URI    string
	Name   string
	Prefix string
}

// Index maps a natural key to an Entry and remembers insertion order.
// Re-inserting a key replaces its entry but keeps its first position.
type Index struct {
	name    string
	order   []string
	entries map[string]Entry
}

// NewIndex returns an empty index.
func NewIndex(name string) *Index {
	return &Index{name: name, entries: make(map[string]Entry)}
}

// Name describes the index, e.g. "attributes by shopify_id".
func (ix *Index) Name() string { return ix.name }

// Put inserts or replaces e under e.Key.
func (ix *Index) Put(e Entry) {
	if _, ok := ix.entries[e.Key]; !ok {
		ix.order = append(ix.order, e.Key)
	}
	ix.entries[e.Key] = e
}

// Get returns the entry for key.
func (ix *Index) Get(key string) (Entry, bool) {
	e, ok := ix.entries[key]
	return e, ok
}

// ID returns the surrogate id for key.
func (ix *Index) ID(key string) (int, bool) {
	e, ok := ix.entries[key]
	return e.ID, ok
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int { return len(ix.order) }

// Entries returns all entries in insertion order.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, len(ix.order))
	for i, k := range ix.order {
		out[i] = ix.entries[k]
	}
	return out
}

// Has reports whether some entry carries surrogate id.
func (ix *Index) Has(id int) bool {
	for _, e := range ix.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// indexDef describes how to index one table.
type indexDef struct {
	table  string
	key    func(rec map[string]string) string
	uri    string
	name   string
	prefix string
}

func column(name string) func(map[string]string) string {
	return func(rec map[string]string) string { return rec[name] }
}

func build(ctx context.Context, r store.Reader, desc string, s indexDef) (*Index, error) {
	t, err := r.Read(ctx, s.table)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", desc, err)
	}
	if !t.HasColumn("id") {
		return nil, fmt.Errorf("%w: load %s: table %s has no id column", internalerr.ErrInvalidInput, desc, s.table)
	}

	ix := NewIndex(desc)
	for i := range t.Rows {
		rec := t.Record(i)
		id, err := strconv.Atoi(rec["id"])
		if err != nil {
			return nil, fmt.Errorf("%w: load %s: row %d: bad id %q", internalerr.ErrInvalidInput, desc, i+1, rec["id"])
		}
		e := Entry{ID: id, Key: s.key(rec)}
		if s.uri != "" {
			e.URI = rec[s.uri]
		}
		if s.name != "" {
			e.Name = rec[s.name]
		}
		if s.prefix != "" {
			e.Prefix = rec[s.prefix]
		}
		ix.Put(e)
	}
	return ix, nil
}

// VerticalsByPrefix indexes verticals by prefix.
func VerticalsByPrefix(ctx context.Context, r store.Reader) (*Index, error) {
	return build(ctx, r, "verticals by prefix", indexDef{
		table:  records.TableVerticals,
		key:    column("prefix"),
		name:   "name",
		prefix: "prefix",
	})
}

// VerticalsByID indexes verticals by their own surrogate id.
func VerticalsByID(ctx context.Context, r store.Reader) (*Index, error) {
	return build(ctx, r, "verticals by id", indexDef{
		table:  records.TableVerticals,
		key:    column("id"),
		name:   "name",
		prefix: "prefix",
	})
}

// CategoriesBySourceID indexes categories by shopify_id.
func CategoriesBySourceID(ctx context.Context, r store.Reader) (*Index, error) {
	return build(ctx, r, "categories by shopify_id", indexDef{
		table: records.TableCategories,
		key:   column("shopify_id"),
		uri:   "shopify_uri",
		name:  "name",
	})
}

// CategoriesByHandle indexes categories by the tail of shopify_uri.
func CategoriesByHandle(ctx context.Context, r store.Reader) (*Index, error) {
	return build(ctx, r, "categories by handle", indexDef{
		table: records.TableCategories,
		key:   func(rec map[string]string) string { return source.SourceID(rec["shopify_uri"]) },
		uri:   "shopify_uri",
		name:  "name",
	})
}

// AttributesBySourceID indexes attributes by shopify_id.
func AttributesBySourceID(ctx context.Context, r store.Reader) (*Index, error) {
	return build(ctx, r, "attributes by shopify_id", indexDef{
		table: records.TableAttributes,
		key:   column("shopify_id"),
		uri:   "shopify_uri",
		name:  "name",
	})
}

// AttributesByHandle indexes attributes by handle.
func AttributesByHandle(ctx context.Context, r store.Reader) (*Index, error) {
	return build(ctx, r, "attributes by handle", indexDef{
		table: records.TableAttributes,
		key:   column("handle"),
		uri:   "shopify_uri",
		name:  "name",
	})
}

// ValuesBySourceID indexes attribute values by shopify_id.
func ValuesBySourceID(ctx context.Context, r store.Reader) (*Index, error) {
	return build(ctx, r, "attribute values by shopify_id", indexDef{
		table: records.TableAttributeValues,
		key:   column("shopify_id"),
		uri:   "shopify_uri",
		name:  "name",
	})
}

// ValuesByHandle indexes attribute values by handle.
func ValuesByHandle(ctx context.Context, r store.Reader) (*Index, error) {
	return build(ctx, r, "attribute values by handle", indexDef{
		table: records.TableAttributeValues,
		key:   column("handle"),
		uri:   "shopify_uri",
		name:  "name",
	})
}

// ExtendedAttributesByHandle indexes extended attributes by handle.
func ExtendedAttributesByHandle(ctx context.Context, r store.Reader) (*Index, error) {
	return build(ctx, r, "extended attributes by handle", indexDef{
		table: records.TableExtendedAttributes,
		key:   column("handle"),
		name:  "name",
	})
}
