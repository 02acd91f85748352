package records

// LocalizationKind describes one localization table.
type LocalizationKind struct {
	Entity      string // category, attribute, attribute_value, vertical, extended_attribute
	Section     string // key used by translation dictionaries
	IDColumn    string
	HasFullName bool
}

// Localized entity kinds, in pipeline order.
var (
	CategoryLocalization = LocalizationKind{
		Entity:      "category",
		Section:     "categories",
		IDColumn:    "category_id",
		HasFullName: true,
	}
	AttributeLocalization = LocalizationKind{
		Entity:   "attribute",
		Section:  "attributes",
		IDColumn: "attribute_id",
	}
	AttributeValueLocalization = LocalizationKind{
		Entity:   "attribute_value",
		Section:  "values",
		IDColumn: "attribute_value_id",
	}
	VerticalLocalization = LocalizationKind{
		Entity:   "vertical",
		Section:  "verticals",
		IDColumn: "vertical_id",
	}
	ExtendedAttributeLocalization = LocalizationKind{
		Entity:   "extended_attribute",
		Section:  "extended_attributes",
		IDColumn: "extended_attribute_id",
	}
)

// LocalizationKinds lists every kind in the order the pipeline writes them.
var LocalizationKinds = []LocalizationKind{
	CategoryLocalization,
	AttributeLocalization,
	AttributeValueLocalization,
	VerticalLocalization,
	ExtendedAttributeLocalization,
}

// Table returns the store table name for the kind.
func (k LocalizationKind) Table() string {
	return "localizations/localizations_" + k.Entity
}

// Columns returns the column order for the kind.
func (k LocalizationKind) Columns() []string {
	cols := []string{"id", k.IDColumn, "language_code", "name"}
	if k.HasFullName {
		cols = append(cols, "full_name")
	}
	return cols
}

// Localization is one translated name of one entity in one language.
type Localization struct {
	ID           int
	EntityID     int
	LanguageCode string
	Name         string
	FullName     string
}

// Row renders the localization in the column order of kind.
func (l Localization) Row(kind LocalizationKind) []string {
	row := []string{itoa(l.ID), itoa(l.EntityID), l.LanguageCode, l.Name}
	if kind.HasFullName {
		row = append(row, l.FullName)
	}
	return row
}

// LocalizationRows renders all localizations for kind.
func LocalizationRows(kind LocalizationKind, locs []Localization) [][]string {
	rows := make([][]string, len(locs))
	for i, l := range locs {
		rows[i] = l.Row(kind)
	}
	return rows
}
