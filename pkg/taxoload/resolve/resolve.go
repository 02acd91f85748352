// Package resolve rewrites source references into surrogate-id relations.
//
// Resolvers are pure: they read a source document and lookup indexes and
// return new relation rows. A reference that does not resolve drops the row.
package resolve

import (
	"github.com/cognicore/taxoload/pkg/taxoload/lookup"
	"github.com/cognicore/taxoload/pkg/taxoload/records"
	"github.com/cognicore/taxoload/pkg/taxoload/source"
)

// CategoryParents is the second category pass. Once every category has an
// id, each ParentSourceID is replaced by the parent's surrogate id and
// cleared. Roots and dangling references get a nil ParentID. When two
// categories share a source id the later one wins.
func CategoryParents(cats []records.Category) {
	serial := make(map[string]int, len(cats))
	for _, c := range cats {
		serial[c.ShopifyID] = c.ID
	}

	for i := range cats {
		c := &cats[i]
		c.ParentID = nil
		if c.ParentSourceID != "" {
			if id, ok := serial[c.ParentSourceID]; ok {
				c.ParentID = records.Int(id)
			}
		}
		c.ParentSourceID = ""
	}
}

// AttributeValueMappings links every resolvable attribute to each of its
// resolvable values.
func AttributeValueMappings(doc source.AttributesDoc, attrs, values *lookup.Index) []records.AttributeValueMapping {
	var out []records.AttributeValueMapping
	for _, a := range doc.Attributes {
		attrID, ok := resolveSourceID(attrs, a.ID)
		if !ok {
			continue
		}
		for _, v := range a.Values {
			valueID, ok := resolveSourceID(values, v.ID)
			if !ok {
				continue
			}
			out = append(out, records.AttributeValueMapping{AttributeID: attrID, ValueID: valueID})
		}
	}
	return out
}

// CategoryAttributeMappings links categories to the attributes attached to
// them anywhere in each vertical's tree, nested children included.
//
// The extended attribute id is set only when the reference is flagged
// extended and its handle resolves. A flagged reference whose handle does
// not resolve still produces a row, with a nil extended id.
func CategoryAttributeMappings(doc source.CategoriesDoc, cats, attrs, extended *lookup.Index) []records.CategoryAttributeMapping {
	var out []records.CategoryAttributeMapping
	for _, v := range doc.Verticals {
		for _, visit := range source.Walk(v.Categories) {
			catID, ok := resolveSourceID(cats, visit.Node.ID)
			if !ok {
				continue
			}
			for _, ref := range visit.Node.Attributes {
				attrID, ok := resolveSourceID(attrs, ref.ID)
				if !ok {
					continue
				}
				m := records.CategoryAttributeMapping{CategoryID: catID, AttributeID: attrID}
				if ref.Extended {
					if extID, ok := extended.ID(ref.Handle); ok {
						m.ExtendedAttributeID = records.Int(extID)
					}
				}
				out = append(out, m)
			}
		}
	}
	return out
}

// AttributeExtendedMappings links every resolvable attribute to each of its
// nested extended attributes, resolved by handle.
func AttributeExtendedMappings(doc source.AttributesDoc, attrs, extended *lookup.Index) []records.AttributeExtendedMapping {
	var out []records.AttributeExtendedMapping
	for _, a := range doc.Attributes {
		attrID, ok := resolveSourceID(attrs, a.ID)
		if !ok {
			continue
		}
		for _, ext := range a.ExtendedAttributes {
			if ext.Handle == "" {
				continue
			}
			extID, ok := extended.ID(ext.Handle)
			if !ok {
				continue
			}
			out = append(out, records.AttributeExtendedMapping{AttributeID: attrID, ExtendedAttributeID: extID})
		}
	}
	return out
}

// resolveSourceID maps a URI-shaped reference through ix by its source id.
func resolveSourceID(ix *lookup.Index, uri string) (int, bool) {
	id := source.SourceID(uri)
	if id == "" {
		return 0, false
	}
	return ix.ID(id)
}
