package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
)

func TestSourceID(t *testing.T) {
	cases := map[string]string{
		"gid://shopify/TaxonomyCategory/aa-1-2": "aa-1-2",
		"gid://shopify/TaxonomyAttribute/1":     "1",
		"no-slash":                              "no-slash",
		"trailing/":                             "",
		"":                                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, SourceID(in), "SourceID(%q)", in)
	}
}

func TestWalkPreOrder(t *testing.T) {
	roots := []CategoryNode{
		{ID: "a", Children: []CategoryNode{
			{ID: "a1", Children: []CategoryNode{{ID: "a1x"}}},
			{ID: "a2"},
		}},
		{ID: "b", Children: []CategoryNode{{ID: "b1"}}},
	}

	var ids, parents []string
	var depths []int
	for _, v := range Walk(roots) {
		ids = append(ids, v.Node.ID)
		depths = append(depths, v.Depth)
		parent := ""
		if v.Parent != nil {
			parent = v.Parent.ID
		}
		parents = append(parents, parent)
	}
	assert.Equal(t, []string{"a", "a1", "a1x", "a2", "b", "b1"}, ids)
	assert.Equal(t, []string{"", "a", "a1", "a", "", "b"}, parents)
	assert.Equal(t, []int{0, 1, 2, 1, 0, 1}, depths)
}

func TestWalkDeepTree(t *testing.T) {
	root := CategoryNode{ID: "0"}
	cur := &root
	for i := 0; i < 10000; i++ {
		cur.Children = []CategoryNode{{ID: "n"}}
		cur = &cur.Children[0]
	}
	assert.Len(t, Walk([]CategoryNode{root}), 10001)
}

func TestWalkEmpty(t *testing.T) {
	assert.Empty(t, Walk(nil))
}

func TestParseTranslations(t *testing.T) {
	input := strings.Join([]string{
		"# comment : ignored",
		"gid://shopify/TaxonomyCategory/aa : Vaatteet ja asusteet",
		"gid://shopify/TaxonomyCategory/aa-1 : Vaatteet ja asusteet > Vaatteet : extra",
		"no separator here",
		" : missing uri",
		"gid://shopify/TaxonomyCategory/aa-2 : ",
		"gid://shopify/TaxonomyCategory/aa : Uusi",
	}, "\n")

	tr, err := ParseTranslations(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"gid://shopify/TaxonomyCategory/aa":   "Uusi",
		"gid://shopify/TaxonomyCategory/aa-1": "Vaatteet ja asusteet > Vaatteet : extra",
	}, tr)
}

func TestParseTranslationsLongLines(t *testing.T) {
	long := strings.Repeat("Vaatteet ", 300*1024)
	input := "gid://shopify/TaxonomyCategory/aa : " + long + "\r\ngid://shopify/TaxonomyCategory/aa-1 : Asut"

	tr, err := ParseTranslations(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(long), tr["gid://shopify/TaxonomyCategory/aa"])
	assert.Equal(t, "Asut", tr["gid://shopify/TaxonomyCategory/aa-1"])
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "plain text", PlainText("plain text"))
	assert.Equal(t, "Bold and italic", PlainText("<b>Bold</b> and <i>italic</i>"))
	assert.Equal(t, "Fish & Chips", PlainText("Fish &amp; Chips"))
	assert.Equal(t, "line one line two", PlainText("line one<br>line two"))
	assert.Equal(t, "unbroken", PlainText("un<b>broken</b>"))
}

func writeDist(t *testing.T, dir, lang, file, content string) {
	t.Helper()
	path := filepath.Join(dir, lang, file)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoaderParsesDocuments(t *testing.T) {
	dir := t.TempDir()
	writeDist(t, dir, "en", CategoriesFile, `{"version":"v1","verticals":[{"name":"Apparel","prefix":"aa","categories":[{"id":"gid://shopify/TaxonomyCategory/aa","level":0,"name":"Apparel","full_name":"Apparel","children":[{"id":"gid://shopify/TaxonomyCategory/aa-1","name":"Clothing"}]}]}]}`)
	writeDist(t, dir, "en", AttributesFile, `{"attributes":[{"id":"gid://shopify/TaxonomyAttribute/1","name":"Color","handle":"color","values":[{"id":"gid://shopify/TaxonomyValue/1"}],"extended_attributes":[{"name":"Warranty","handle":"warranty"}]}]}`)
	writeDist(t, dir, "en", ValuesFile, `{"values":[{"id":"gid://shopify/TaxonomyValue/1","name":"Red","handle":"color__red"}]}`)
	writeDist(t, dir, "en", TaxonomyFile, `{"version":"v1","verticals":[{"name":"Apparel","prefix":"aa"}]}`)

	l, err := NewLoader(dir, 8)
	require.NoError(t, err)

	cats, err := l.Categories("en")
	require.NoError(t, err)
	require.Len(t, cats.Verticals, 1)
	root := cats.Verticals[0].Categories[0]
	require.NotNil(t, root.Level)
	assert.Equal(t, 0, *root.Level)
	assert.Nil(t, root.Children[0].Level)

	attrs, err := l.Attributes("en")
	require.NoError(t, err)
	assert.Equal(t, "warranty", attrs.Attributes[0].ExtendedAttributes[0].Handle)

	vals, err := l.Values("en")
	require.NoError(t, err)
	assert.Equal(t, "color__red", vals.Values[0].Handle)

	tax, err := l.Taxonomy("en")
	require.NoError(t, err)
	assert.Equal(t, "v1", tax.Version)
}

func TestLoaderCachesParsedDocuments(t *testing.T) {
	dir := t.TempDir()
	writeDist(t, dir, "en", ValuesFile, `{"values":[{"id":"a"}]}`)

	l, err := NewLoader(dir, 4)
	require.NoError(t, err)
	first, err := l.Values("en")
	require.NoError(t, err)

	writeDist(t, dir, "en", ValuesFile, `{"values":[{"id":"b"}]}`)
	second, err := l.Values("en")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	uncached, err := NewLoader(dir, 0)
	require.NoError(t, err)
	fresh, err := uncached.Values("en")
	require.NoError(t, err)
	assert.Equal(t, "b", fresh.Values[0].ID)
}

func TestLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	writeDist(t, dir, "en", AttributesFile, `{"attributes": [`)

	l, err := NewLoader(dir, 0)
	require.NoError(t, err)

	_, err = l.Categories("en")
	assert.True(t, errors.Is(err, internalerr.ErrSourceNotFound))

	_, err = l.Attributes("en")
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))

	_, err = l.Translations("fi", CategoryTranslations)
	assert.True(t, errors.Is(err, internalerr.ErrSourceNotFound))
}

func TestLoaderTranslations(t *testing.T) {
	dir := t.TempDir()
	writeDist(t, dir, "fi", AttributeTranslations, "gid://shopify/TaxonomyAttribute/1 : Väri\n")

	l, err := NewLoader(dir, 0)
	require.NoError(t, err)
	tr, err := l.Translations("fi", AttributeTranslations)
	require.NoError(t, err)
	assert.Equal(t, "Väri", tr["gid://shopify/TaxonomyAttribute/1"])
}
