package localize

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/taxoload/internal/logging"
	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
	"github.com/cognicore/taxoload/pkg/taxoload/lookup"
	"github.com/cognicore/taxoload/pkg/taxoload/records"
	"github.com/cognicore/taxoload/pkg/taxoload/source"
)

// mapSource serves fixed translations per language.
type mapSource struct {
	join   JoinKey
	byLang map[string]map[string]Translation
	err    error
}

func (m mapSource) JoinKey(records.LocalizationKind) JoinKey { return m.join }

func (m mapSource) Translations(_ context.Context, _ records.LocalizationKind, lang string) (map[string]Translation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byLang[lang], nil
}

func categoryIndex() *lookup.Index {
	ix := lookup.NewIndex("categories by handle")
	ix.Put(lookup.Entry{ID: 1, Key: "aa", URI: "gid://shopify/TaxonomyCategory/aa"})
	ix.Put(lookup.Entry{ID: 2, Key: "aa-1", URI: "gid://shopify/TaxonomyCategory/aa-1"})
	return ix
}

func TestCategoryName(t *testing.T) {
	assert.Equal(t, "Vaatteet", CategoryName("Vaatteet ja asusteet > Vaatteet"))
	assert.Equal(t, "Vaatteet", CategoryName("Vaatteet"))
	assert.Equal(t, "", CategoryName(""))
}

func TestValueName(t *testing.T) {
	assert.Equal(t, "Punainen", ValueName("Punainen [Väri]"))
	assert.Equal(t, "Punainen", ValueName("Punainen"))
	assert.Equal(t, "", ValueName("[Väri]"))
}

func TestResolveAssignsDenseIDsInLanguageOrder(t *testing.T) {
	src := mapSource{join: ByURI, byLang: map[string]map[string]Translation{
		"fi": {
			"gid://shopify/TaxonomyCategory/aa-1": {Name: "Vaatteet", FullName: "Asusteet > Vaatteet"},
			"gid://shopify/TaxonomyCategory/aa":   {Name: "Asusteet", FullName: "Asusteet"},
		},
		"sv": {
			"gid://shopify/TaxonomyCategory/aa": {Name: "Kläder", FullName: "Kläder"},
			"gid://shopify/TaxonomyCategory/zz": {Name: "Okänd"},
		},
	}}

	locs, err := Resolve(context.Background(), records.CategoryLocalization, []string{"fi", "sv"}, categoryIndex(), src)
	require.NoError(t, err)
	assert.Equal(t, []records.Localization{
		{ID: 1, EntityID: 1, LanguageCode: "fi", Name: "Asusteet", FullName: "Asusteet"},
		{ID: 2, EntityID: 2, LanguageCode: "fi", Name: "Vaatteet", FullName: "Asusteet > Vaatteet"},
		{ID: 3, EntityID: 1, LanguageCode: "sv", Name: "Kläder", FullName: "Kläder"},
	}, locs)
}

func TestResolveJoinsOnKey(t *testing.T) {
	ix := lookup.NewIndex("verticals by prefix")
	ix.Put(lookup.Entry{ID: 7, Key: "aa", Prefix: "aa"})
	src := mapSource{join: ByKey, byLang: map[string]map[string]Translation{
		"fi": {"aa": {Name: "Vaatteet"}},
	}}

	locs, err := Resolve(context.Background(), records.VerticalLocalization, []string{"fi"}, ix, src)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, 7, locs[0].EntityID)
}

func TestResolvePropagatesSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Resolve(context.Background(), records.AttributeLocalization, []string{"fi"}, categoryIndex(), mapSource{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestCoverageReportsPartialEntities(t *testing.T) {
	ix := categoryIndex()
	langs := []string{"fi", "sv", "de"}
	uri := "gid://shopify/TaxonomyCategory/aa"
	uri1 := "gid://shopify/TaxonomyCategory/aa-1"
	src := mapSource{join: ByURI, byLang: map[string]map[string]Translation{
		"fi": {uri: {Name: "a"}, uri1: {Name: "b"}},
		"sv": {uri: {Name: "a"}, uri1: {Name: "b"}},
		"de": {uri: {Name: "a"}},
	}}

	var buf bytes.Buffer
	logger, err := logging.New(&buf, "info")
	require.NoError(t, err)

	locs, cov, err := Localize(context.Background(), records.CategoryLocalization, langs, ix, src, logger)
	require.NoError(t, err)
	assert.Len(t, locs, 5)
	assert.False(t, cov.Complete())
	assert.Equal(t, 5, cov.Found)
	assert.Equal(t, 6, cov.Expected)
	require.Len(t, cov.Missing, 1)
	assert.Equal(t, "aa-1", cov.Missing[0].Key)
	assert.Equal(t, "aa-1: 2/3 translations", cov.Missing[0].String())
	assert.Contains(t, buf.String(), "2/3")
}

func TestCoverageCompleteLogsNothing(t *testing.T) {
	ix := lookup.NewIndex("attributes by handle")
	ix.Put(lookup.Entry{ID: 1, Key: "color", URI: "u1"})
	locs := []records.Localization{{ID: 1, EntityID: 1, LanguageCode: "fi"}}

	cov := CheckCoverage(records.AttributeLocalization, locs, ix, []string{"fi"})
	assert.True(t, cov.Complete())
	assert.Empty(t, cov.Missing)

	var buf bytes.Buffer
	cov.Log(log.New(&buf))
	assert.Empty(t, buf.String())
}

func TestCoverageSamplesAtMostFive(t *testing.T) {
	ix := lookup.NewIndex("values by handle")
	for i := 1; i <= 8; i++ {
		ix.Put(lookup.Entry{ID: i, Key: string(rune('a' + i))})
	}
	cov := CheckCoverage(records.AttributeValueLocalization, nil, ix, []string{"fi"})
	assert.Len(t, cov.Missing, 8)

	var buf bytes.Buffer
	cov.Log(log.New(&buf))
	assert.Equal(t, 6, bytes.Count(buf.Bytes(), []byte("\n")))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDistSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fi", source.CategoryTranslations),
		"# comment\ngid://shopify/TaxonomyCategory/aa-1 : Vaatteet ja asusteet > Vaatteet\n")
	writeFile(t, filepath.Join(dir, "fi", source.ValueTranslations),
		"gid://shopify/TaxonomyValue/1 : Punainen [Väri]\n")
	writeFile(t, filepath.Join(dir, "fi", source.AttributesFile),
		`{"attributes":[{"handle":"color","extended_attributes":[{"name":"Takuu","handle":"warranty"},{"handle":"nameless"}]}]}`)
	writeFile(t, filepath.Join(dir, "fi", source.TaxonomyFile),
		`{"verticals":[{"name":"Vaatteet","prefix":"aa"}]}`)

	loader, err := source.NewLoader(dir, 4)
	require.NoError(t, err)
	var buf bytes.Buffer
	logger, err := logging.New(&buf, "info")
	require.NoError(t, err)
	src := NewDistSource(loader, logger)
	ctx := context.Background()

	cats, err := src.Translations(ctx, records.CategoryLocalization, "fi")
	require.NoError(t, err)
	assert.Equal(t, Translation{Name: "Vaatteet", FullName: "Vaatteet ja asusteet > Vaatteet"},
		cats["gid://shopify/TaxonomyCategory/aa-1"])

	vals, err := src.Translations(ctx, records.AttributeValueLocalization, "fi")
	require.NoError(t, err)
	assert.Equal(t, "Punainen", vals["gid://shopify/TaxonomyValue/1"].Name)

	ext, err := src.Translations(ctx, records.ExtendedAttributeLocalization, "fi")
	require.NoError(t, err)
	assert.Equal(t, map[string]Translation{"warranty": {Name: "Takuu"}}, ext)
	assert.Equal(t, ByKey, src.JoinKey(records.ExtendedAttributeLocalization))

	verts, err := src.Translations(ctx, records.VerticalLocalization, "fi")
	require.NoError(t, err)
	assert.Equal(t, "Vaatteet", verts["aa"].Name)

	attrs, err := src.Translations(ctx, records.AttributeLocalization, "fi")
	require.NoError(t, err)
	assert.Empty(t, attrs)
	assert.Contains(t, buf.String(), "Translation source not found")

	_, err = src.Translations(ctx, records.LocalizationKind{Entity: "widgets"}, "fi")
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestYAMLSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "categories", "de.yml"), `de:
  categories:
    aa:
      name: Bekleidung
    aa-1:
      name: ""
`)
	writeFile(t, filepath.Join(dir, "attributes", "de.yml"), "de: [")

	src := NewYAMLSource(dir, logging.Discard())
	ctx := context.Background()

	tr, err := src.Translations(ctx, records.CategoryLocalization, "de")
	require.NoError(t, err)
	assert.Equal(t, map[string]Translation{"aa": {Name: "Bekleidung", FullName: "Bekleidung"}}, tr)

	_, err = src.Translations(ctx, records.AttributeLocalization, "de")
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))

	missing, err := src.Translations(ctx, records.VerticalLocalization, "de")
	require.NoError(t, err)
	assert.Empty(t, missing)

	locs, err := Resolve(ctx, records.CategoryLocalization, []string{"de"}, categoryIndex(), src)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, 1, locs[0].EntityID)
}
