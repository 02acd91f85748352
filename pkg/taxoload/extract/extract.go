// Package extract turns parsed source documents into entity records with
// fresh 1-based surrogate ids assigned in document order.
package extract

import (
	"github.com/cognicore/taxoload/pkg/taxoload/lookup"
	"github.com/cognicore/taxoload/pkg/taxoload/records"
	"github.com/cognicore/taxoload/pkg/taxoload/source"
)

// Verticals extracts one record per vertical.
func Verticals(doc source.CategoriesDoc) []records.Vertical {
	out := make([]records.Vertical, 0, len(doc.Verticals))
	for i, v := range doc.Verticals {
		out = append(out, records.Vertical{ID: i + 1, Name: v.Name, Prefix: v.Prefix})
	}
	return out
}

// Categories is the first of the two category passes. It assigns ids and
// records each category's parent as a source-native id in ParentSourceID;
// resolve.CategoryParents turns those into surrogate parent ids.
//
// Every vertical's top-level list is emitted in order. Nested children are
// walked depth-first and emitted only when they are not themselves listed at
// top level somewhere in the document (flat documents use children as
// references) and were not emitted before. A nested child without parent_id
// takes the enclosing node as parent.
func Categories(doc source.CategoriesDoc, verticals *lookup.Index) []records.Category {
	topLevel := make(map[string]bool)
	for _, v := range doc.Verticals {
		for _, c := range v.Categories {
			if c.ID != "" {
				topLevel[c.ID] = true
			}
		}
	}

	var cats []records.Category
	emitted := make(map[string]bool)
	emit := func(n *source.CategoryNode, parentURI string, verticalID *int) {
		if parentURI == "" {
			parentURI = n.ParentID
		}
		cats = append(cats, records.Category{
			ID:             len(cats) + 1,
			ShopifyID:      source.SourceID(n.ID),
			ShopifyURI:     n.ID,
			Level:          n.Level,
			Name:           n.Name,
			FullName:       n.FullName,
			VerticalID:     verticalID,
			ParentSourceID: source.SourceID(parentURI),
		})
		emitted[n.ID] = true
	}

	for _, v := range doc.Verticals {
		var verticalID *int
		if id, ok := verticals.ID(v.Prefix); ok {
			verticalID = records.Int(id)
		}

		for i := range v.Categories {
			root := &v.Categories[i]
			emit(root, "", verticalID)

			for _, visit := range source.Walk(root.Children) {
				n := visit.Node
				if n.ID == "" || topLevel[n.ID] || emitted[n.ID] {
					continue
				}
				parentURI := n.ParentID
				if parentURI == "" {
					parentURI = root.ID
					if visit.Parent != nil {
						parentURI = visit.Parent.ID
					}
				}
				emit(n, parentURI, verticalID)
			}
		}
	}
	return cats
}

// AttributeOptions tunes attribute extraction.
type AttributeOptions struct {
	// StripMarkup reduces HTML in descriptions to plain text.
	StripMarkup bool
}

// Attributes extracts attributes and the globally deduplicated set of
// extended attributes nested in them. Extended attributes are keyed by
// handle; the first occurrence supplies the name and fixes the id. Entries
// without a handle are skipped.
func Attributes(doc source.AttributesDoc, opts AttributeOptions) ([]records.Attribute, []records.ExtendedAttribute) {
	attrs := make([]records.Attribute, 0, len(doc.Attributes))
	var extended []records.ExtendedAttribute
	seen := make(map[string]bool)

	for i, a := range doc.Attributes {
		desc := a.Description
		if opts.StripMarkup {
			desc = source.PlainText(desc)
		}
		attrs = append(attrs, records.Attribute{
			ID:          i + 1,
			Name:        a.Name,
			Handle:      a.Handle,
			Description: desc,
			ShopifyID:   source.SourceID(a.ID),
			ShopifyURI:  a.ID,
		})

		for _, ext := range a.ExtendedAttributes {
			if ext.Handle == "" || seen[ext.Handle] {
				continue
			}
			seen[ext.Handle] = true
			extended = append(extended, records.ExtendedAttribute{
				ID:     len(extended) + 1,
				Name:   ext.Name,
				Handle: ext.Handle,
			})
		}
	}
	return attrs, extended
}

// AttributeValues extracts one record per attribute value.
func AttributeValues(doc source.ValuesDoc) []records.AttributeValue {
	out := make([]records.AttributeValue, 0, len(doc.Values))
	for i, v := range doc.Values {
		out = append(out, records.AttributeValue{
			ID:         i + 1,
			ShopifyID:  source.SourceID(v.ID),
			ShopifyURI: v.ID,
			Name:       v.Name,
			Handle:     v.Handle,
		})
	}
	return out
}
