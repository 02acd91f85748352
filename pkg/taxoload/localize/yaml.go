package localize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
	"github.com/cognicore/taxoload/pkg/taxoload/records"
)

// YAMLSource reads translation dictionaries laid out as
// <dir>/<section>/<lang>.yml, each shaped
//
//	<lang>:
//	  <section>:
//	    <handle>:
//	      name: ...
//
// Entries are keyed by handle (prefix for verticals). A missing file yields
// no translations and logs an error.
type YAMLSource struct {
	dir    string
	logger *log.Logger
}

// NewYAMLSource creates a YAMLSource rooted at dir.
func NewYAMLSource(dir string, logger *log.Logger) *YAMLSource {
	return &YAMLSource{dir: dir, logger: logger}
}

type yamlEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// JoinKey implements Source.
func (y *YAMLSource) JoinKey(records.LocalizationKind) JoinKey {
	return ByKey
}

// Path returns the dictionary file for kind and lang.
func (y *YAMLSource) Path(kind records.LocalizationKind, lang string) string {
	return filepath.Join(y.dir, kind.Section, lang+".yml")
}

// Translations implements Source.
func (y *YAMLSource) Translations(ctx context.Context, kind records.LocalizationKind, lang string) (map[string]Translation, error) {
	path := y.Path(kind, lang)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		y.logger.Error("Translation dictionary not found", "entity", kind.Entity, "language", lang, "path", path)
		return map[string]Translation{}, nil
	}
	if err != nil {
		return nil, err
	}

	var doc map[string]map[string]map[string]yamlEntry
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", internalerr.ErrInvalidInput, path, err)
	}

	tr := make(map[string]Translation)
	for handle, e := range doc[lang][kind.Section] {
		if e.Name == "" {
			continue
		}
		t := Translation{Name: e.Name}
		if kind.HasFullName {
			t.FullName = e.Name
		}
		tr[handle] = t
	}
	return tr, nil
}
