package localize

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
	"github.com/cognicore/taxoload/pkg/taxoload/records"
	"github.com/cognicore/taxoload/pkg/taxoload/source"
)

// DistSource reads translations from the distribution's per-language
// directories: "<uri> : <text>" files for categories, attributes and values,
// attributes.json for extended attributes and taxonomy.json for verticals.
//
// A language without the file yields no translations and logs an error.
type DistSource struct {
	loader *source.Loader
	logger *log.Logger
}

// NewDistSource creates a DistSource reading through loader.
func NewDistSource(loader *source.Loader, logger *log.Logger) *DistSource {
	return &DistSource{loader: loader, logger: logger}
}

// JoinKey implements Source.
func (d *DistSource) JoinKey(kind records.LocalizationKind) JoinKey {
	switch kind.Entity {
	case records.VerticalLocalization.Entity, records.ExtendedAttributeLocalization.Entity:
		return ByKey
	default:
		return ByURI
	}
}

// Translations implements Source.
func (d *DistSource) Translations(ctx context.Context, kind records.LocalizationKind, lang string) (map[string]Translation, error) {
	var (
		tr  map[string]Translation
		err error
	)
	switch kind.Entity {
	case records.CategoryLocalization.Entity:
		tr, err = d.text(lang, source.CategoryTranslations, func(s string) Translation {
			return Translation{Name: CategoryName(s), FullName: s}
		})
	case records.AttributeLocalization.Entity:
		tr, err = d.text(lang, source.AttributeTranslations, func(s string) Translation {
			return Translation{Name: s}
		})
	case records.AttributeValueLocalization.Entity:
		tr, err = d.text(lang, source.ValueTranslations, func(s string) Translation {
			return Translation{Name: ValueName(s)}
		})
	case records.ExtendedAttributeLocalization.Entity:
		tr, err = d.extended(lang)
	case records.VerticalLocalization.Entity:
		tr, err = d.verticals(lang)
	default:
		return nil, fmt.Errorf("%w: unknown localization kind %q", internalerr.ErrInvalidInput, kind.Entity)
	}

	if errors.Is(err, internalerr.ErrSourceNotFound) {
		d.logger.Error("Translation source not found", "entity", kind.Entity, "language", lang, "err", err)
		return map[string]Translation{}, nil
	}
	return tr, err
}

func (d *DistSource) text(lang, file string, conv func(string) Translation) (map[string]Translation, error) {
	raw, err := d.loader.Translations(lang, file)
	if err != nil {
		return nil, err
	}
	tr := make(map[string]Translation, len(raw))
	for uri, text := range raw {
		tr[uri] = conv(text)
	}
	return tr, nil
}

func (d *DistSource) extended(lang string) (map[string]Translation, error) {
	doc, err := d.loader.Attributes(lang)
	if err != nil {
		return nil, err
	}
	tr := make(map[string]Translation)
	for _, a := range doc.Attributes {
		for _, ext := range a.ExtendedAttributes {
			if ext.Handle == "" || ext.Name == "" {
				continue
			}
			tr[ext.Handle] = Translation{Name: ext.Name}
		}
	}
	return tr, nil
}

func (d *DistSource) verticals(lang string) (map[string]Translation, error) {
	doc, err := d.loader.Taxonomy(lang)
	if err != nil {
		return nil, err
	}
	tr := make(map[string]Translation, len(doc.Verticals))
	for _, v := range doc.Verticals {
		tr[v.Prefix] = Translation{Name: v.Name}
	}
	return tr, nil
}
