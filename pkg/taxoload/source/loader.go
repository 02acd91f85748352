package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
)

// File names inside dist/<lang>/.
const (
	CategoriesFile        = "categories.json"
	AttributesFile        = "attributes.json"
	ValuesFile            = "attribute_values.json"
	TaxonomyFile          = "taxonomy.json"
	CategoryTranslations  = "categories.txt"
	AttributeTranslations = "attributes.txt"
	ValueTranslations     = "attribute_values.txt"
)

// Loader reads documents from a dist directory.
//
// Parsed documents are kept in an LRU cache keyed by path, so stages that
// consume the same document (categories.json feeds three stages) parse it
// once. Cached documents are shared: callers must not modify them.
type Loader struct {
	distDir string
	cache   *lru.Cache[string, any]
}

// NewLoader creates a loader for distDir caching up to cacheSize documents.
// A cacheSize of zero disables caching.
func NewLoader(distDir string, cacheSize int) (*Loader, error) {
	l := &Loader{distDir: distDir}
	if cacheSize > 0 {
		c, err := lru.New[string, any](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("document cache: %w", err)
		}
		l.cache = c
	}
	return l, nil
}

// Path returns the location of file for lang.
func (l *Loader) Path(lang, file string) string {
	return filepath.Join(l.distDir, lang, file)
}

// Categories loads categories.json for lang.
func (l *Loader) Categories(lang string) (CategoriesDoc, error) {
	return load[CategoriesDoc](l, l.Path(lang, CategoriesFile))
}

// Attributes loads attributes.json for lang.
func (l *Loader) Attributes(lang string) (AttributesDoc, error) {
	return load[AttributesDoc](l, l.Path(lang, AttributesFile))
}

// Values loads attribute_values.json for lang.
func (l *Loader) Values(lang string) (ValuesDoc, error) {
	return load[ValuesDoc](l, l.Path(lang, ValuesFile))
}

// Taxonomy loads taxonomy.json for lang.
func (l *Loader) Taxonomy(lang string) (TaxonomyDoc, error) {
	return load[TaxonomyDoc](l, l.Path(lang, TaxonomyFile))
}

// Translations loads a "<uri> : <text>" file for lang.
func (l *Loader) Translations(lang, file string) (map[string]string, error) {
	path := l.Path(lang, file)
	f, err := os.Open(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	defer f.Close()

	tr, err := ParseTranslations(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", internalerr.ErrInvalidInput, path, err)
	}
	return tr, nil
}

func load[T any](l *Loader, path string) (T, error) {
	var doc T
	if l.cache != nil {
		if cached, ok := l.cache.Get(path); ok {
			if d, ok := cached.(T); ok {
				return d, nil
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return doc, notFound(path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("%w: parse %s: %w", internalerr.ErrInvalidInput, path, err)
	}

	if l.cache != nil {
		l.cache.Add(path, doc)
	}
	return doc, nil
}

func notFound(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", internalerr.ErrSourceNotFound, path, err)
	}
	return err
}
