// Package source reads the taxonomy distribution: the JSON documents and the
// per-language translation files under dist/<lang>/.
package source

import "strings"

// CategoriesDoc is dist/<lang>/categories.json.
type CategoriesDoc struct {
	Version   string        `json:"version"`
	Verticals []VerticalDoc `json:"verticals"`
}

// VerticalDoc is one vertical and its category tree.
type VerticalDoc struct {
	Name       string         `json:"name"`
	Prefix     string         `json:"prefix"`
	Categories []CategoryNode `json:"categories"`
}

// CategoryNode is a category as listed in categories.json. Children may be
// full nodes or bare references carrying only id and name.
type CategoryNode struct {
	ID         string         `json:"id"`
	Level      *int           `json:"level"`
	Name       string         `json:"name"`
	FullName   string         `json:"full_name"`
	ParentID   string         `json:"parent_id"`
	Attributes []AttributeRef `json:"attributes"`
	Children   []CategoryNode `json:"children"`
}

// AttributeRef is an attribute attached to a category.
type AttributeRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
	Extended    bool   `json:"extended"`
}

// AttributesDoc is dist/<lang>/attributes.json.
type AttributesDoc struct {
	Version    string         `json:"version"`
	Attributes []AttributeDoc `json:"attributes"`
}

// AttributeDoc is a full attribute definition.
type AttributeDoc struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"name"`
	Handle             string                 `json:"handle"`
	Description        string                 `json:"description"`
	Values             []ValueRef             `json:"values"`
	ExtendedAttributes []ExtendedAttributeRef `json:"extended_attributes"`
}

// ValueRef points at an attribute value.
type ValueRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

// ExtendedAttributeRef is an extended attribute nested under an attribute.
type ExtendedAttributeRef struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

// ValuesDoc is dist/<lang>/attribute_values.json.
type ValuesDoc struct {
	Version string     `json:"version"`
	Values  []ValueDoc `json:"values"`
}

// ValueDoc is a full attribute value definition.
type ValueDoc struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

// TaxonomyDoc is the summary document dist/<lang>/taxonomy.json.
type TaxonomyDoc struct {
	Version   string             `json:"version"`
	Verticals []TaxonomyVertical `json:"verticals"`
}

// TaxonomyVertical is a vertical as listed in taxonomy.json.
type TaxonomyVertical struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

// SourceID returns the source-native id of a URI-shaped identifier: the part
// after the final "/". An empty uri yields "".
func SourceID(uri string) string {
	if uri == "" {
		return ""
	}
	return uri[strings.LastIndex(uri, "/")+1:]
}
