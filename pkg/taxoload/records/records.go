// Package records defines the typed rows written to the output tables.
//
// Every record knows its own column order. Nullable integers are pointers and
// are written as the empty string when nil; the category-attribute mapping is
// the one table that writes an explicit NULL sentinel instead.
package records

import "strconv"

// Table names as they appear in the store.
const (
	TableVerticals                 = "verticals"
	TableCategories                = "categories"
	TableAttributes                = "attributes"
	TableExtendedAttributes        = "extended_attributes"
	TableAttributeValues           = "attribute_values"
	TableAttributeValueMappings    = "attribute_value_mappings"
	TableCategoryAttributeMappings = "category_attribute_mappings"
	TableAttributeExtendedMappings = "attribute_extended_mappings"
)

// NullSentinel marks an unresolved extended attribute in category mappings.
const NullSentinel = "NULL"

// Column lists, in output order.
var (
	VerticalColumns                 = []string{"id", "name", "prefix"}
	CategoryColumns                 = []string{"id", "shopify_id", "shopify_uri", "level", "name", "full_name", "parent_id", "vertical_id"}
	AttributeColumns                = []string{"id", "name", "handle", "description", "shopify_id", "shopify_uri"}
	ExtendedAttributeColumns        = []string{"id", "name", "handle"}
	AttributeValueColumns           = []string{"id", "shopify_id", "shopify_uri", "name", "handle"}
	AttributeValueMappingColumns    = []string{"attribute_id", "value_id"}
	CategoryAttributeMappingColumns = []string{"category_id", "extended_attribute_id", "attribute_id"}
	AttributeExtendedMappingColumns = []string{"attribute_id", "extended_attribute_id"}
)

// Vertical is a top-level taxonomy branch.
type Vertical struct {
	ID     int
	Name   string
	Prefix string
}

func (v Vertical) Row() []string {
	return []string{itoa(v.ID), v.Name, v.Prefix}
}

// Category is a node of a vertical's category tree.
//
// ParentSourceID carries the parent's source-native id between the two
// extraction passes and is never written.
type Category struct {
	ID             int
	ShopifyID      string
	ShopifyURI     string
	Level          *int
	Name           string
	FullName       string
	ParentID       *int
	VerticalID     *int
	ParentSourceID string
}

func (c Category) Row() []string {
	return []string{
		itoa(c.ID),
		c.ShopifyID,
		c.ShopifyURI,
		optional(c.Level),
		c.Name,
		c.FullName,
		optional(c.ParentID),
		optional(c.VerticalID),
	}
}

// Attribute is a product attribute such as color or size.
type Attribute struct {
	ID          int
	Name        string
	Handle      string
	Description string
	ShopifyID   string
	ShopifyURI  string
}

func (a Attribute) Row() []string {
	return []string{itoa(a.ID), a.Name, a.Handle, a.Description, a.ShopifyID, a.ShopifyURI}
}

// ExtendedAttribute is an attribute nested under one or more parent attributes,
// unique by handle.
type ExtendedAttribute struct {
	ID     int
	Name   string
	Handle string
}

func (e ExtendedAttribute) Row() []string {
	return []string{itoa(e.ID), e.Name, e.Handle}
}

// AttributeValue is a selectable value of an attribute.
type AttributeValue struct {
	ID         int
	ShopifyID  string
	ShopifyURI string
	Name       string
	Handle     string
}

func (v AttributeValue) Row() []string {
	return []string{itoa(v.ID), v.ShopifyID, v.ShopifyURI, v.Name, v.Handle}
}

// AttributeValueMapping links an attribute to one of its values.
type AttributeValueMapping struct {
	AttributeID int
	ValueID     int
}

func (m AttributeValueMapping) Row() []string {
	return []string{itoa(m.AttributeID), itoa(m.ValueID)}
}

// CategoryAttributeMapping links a category to an attribute, optionally
// through an extended attribute.
type CategoryAttributeMapping struct {
	CategoryID          int
	ExtendedAttributeID *int
	AttributeID         int
}

func (m CategoryAttributeMapping) Row() []string {
	ext := NullSentinel
	if m.ExtendedAttributeID != nil {
		ext = itoa(*m.ExtendedAttributeID)
	}
	return []string{itoa(m.CategoryID), ext, itoa(m.AttributeID)}
}

// AttributeExtendedMapping links an attribute to a nested extended attribute.
type AttributeExtendedMapping struct {
	AttributeID         int
	ExtendedAttributeID int
}

func (m AttributeExtendedMapping) Row() []string {
	return []string{itoa(m.AttributeID), itoa(m.ExtendedAttributeID)}
}

// Row is implemented by every record type.
type Row interface {
	Row() []string
}

// Rows converts a typed record slice into raw table rows.
func Rows[T Row](items []T) [][]string {
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = item.Row()
	}
	return rows
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func optional(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
