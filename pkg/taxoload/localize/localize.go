// Package localize joins per-language translations onto surrogate ids.
package localize

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cognicore/taxoload/pkg/taxoload/lookup"
	"github.com/cognicore/taxoload/pkg/taxoload/records"
)

// Translation is one translated name. FullName is only set for categories.
type Translation struct {
	Name     string
	FullName string
}

// JoinKey selects which field of a lookup entry a source's translations are
// keyed by.
type JoinKey int

const (
	// ByURI joins on the entity's canonical URI.
	ByURI JoinKey = iota
	// ByKey joins on the index key (handle or prefix).
	ByKey
)

// Source supplies translations for one entity kind in one language.
type Source interface {
	Translations(ctx context.Context, kind records.LocalizationKind, lang string) (map[string]Translation, error)
	JoinKey(kind records.LocalizationKind) JoinKey
}

const hierarchySep = " > "

// CategoryName returns the leaf segment of a translated category path.
func CategoryName(fullName string) string {
	parts := strings.Split(fullName, hierarchySep)
	return strings.TrimSpace(parts[len(parts)-1])
}

// ValueName drops the bracketed qualifier from a translated value, e.g.
// "Punainen [Väri]" becomes "Punainen".
func ValueName(text string) string {
	name, _, _ := strings.Cut(text, "[")
	return strings.TrimSpace(name)
}

// Resolve collects translations for every entity in ix, language by language
// in the given order, then numbers the combined list with one dense id
// sequence starting at 1.
func Resolve(ctx context.Context, kind records.LocalizationKind, languages []string, ix *lookup.Index, src Source) ([]records.Localization, error) {
	join := src.JoinKey(kind)
	entries := ix.Entries()

	var locs []records.Localization
	for _, lang := range languages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tr, err := src.Translations(ctx, kind, lang)
		if err != nil {
			return nil, fmt.Errorf("%s translations for %s: %w", kind.Entity, lang, err)
		}
		for _, e := range entries {
			key := e.Key
			if join == ByURI {
				key = e.URI
			}
			t, ok := tr[key]
			if !ok {
				continue
			}
			locs = append(locs, records.Localization{
				EntityID:     e.ID,
				LanguageCode: lang,
				Name:         t.Name,
				FullName:     t.FullName,
			})
		}
	}

	for i := range locs {
		locs[i].ID = i + 1
	}
	return locs, nil
}

// Missing is an entity with fewer translations than languages.
type Missing struct {
	Key      string
	EntityID int
	Count    int
	Expected int
}

func (m Missing) String() string {
	return fmt.Sprintf("%s: %d/%d translations", m.Key, m.Count, m.Expected)
}

// Coverage summarises how many translations were found.
type Coverage struct {
	Entity   string
	Found    int
	Expected int
	Missing  []Missing
}

// Complete reports whether every entity has every language.
func (c Coverage) Complete() bool {
	return c.Found >= c.Expected
}

// maxSamples bounds how many incomplete entities are logged.
const maxSamples = 5

// CheckCoverage compares the translations found against entities ×
// languages. Missing is only filled when the total falls short.
func CheckCoverage(kind records.LocalizationKind, locs []records.Localization, ix *lookup.Index, languages []string) Coverage {
	c := Coverage{
		Entity:   kind.Entity,
		Found:    len(locs),
		Expected: ix.Len() * len(languages),
	}
	if c.Complete() {
		return c
	}

	counts := make(map[int]int)
	for _, l := range locs {
		counts[l.EntityID]++
	}
	for _, e := range ix.Entries() {
		if n := counts[e.ID]; n < len(languages) {
			c.Missing = append(c.Missing, Missing{Key: e.Key, EntityID: e.ID, Count: n, Expected: len(languages)})
		}
	}
	return c
}

// Log reports a coverage shortfall with up to five examples. Complete
// coverage logs nothing.
func (c Coverage) Log(logger *log.Logger) {
	if c.Complete() {
		return
	}
	logger.Warn("Incomplete translations", "entity", c.Entity, "found", c.Found, "expected", c.Expected)
	samples := c.Missing
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	for _, m := range samples {
		logger.Warn("Missing translations", "entity", c.Entity, "key", m.Key, "translations", fmt.Sprintf("%d/%d", m.Count, m.Expected))
	}
}

// Localize resolves, checks coverage and logs the result. Coverage
// shortfalls never fail the call.
func Localize(ctx context.Context, kind records.LocalizationKind, languages []string, ix *lookup.Index, src Source, logger *log.Logger) ([]records.Localization, Coverage, error) {
	locs, err := Resolve(ctx, kind, languages, ix, src)
	if err != nil {
		return nil, Coverage{}, err
	}
	cov := CheckCoverage(kind, locs, ix, languages)
	cov.Log(logger)
	return locs, cov, nil
}
