package csvstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
	"github.com/cognicore/taxoload/pkg/taxoload/store"
)

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, err := Open(t.TempDir())
	require.NoError(t, err)

	in := store.Table{
		Name:    "attributes",
		Columns: []string{"id", "name", "handle", "description"},
		Rows: [][]string{
			{"1", "Color", "color", "Defines the primary color, pattern, or finish"},
			{"2", "Size", "size", `Quoted "value", with comma`},
		},
	}
	require.NoError(t, st.Write(ctx, in))

	out, err := st.Read(ctx, "attributes")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWriteProducesHeaderAndRows(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, st.Write(ctx, store.Table{
		Name:    "verticals",
		Columns: []string{"id", "name", "prefix"},
		Rows:    [][]string{{"1", "Apparel & Accessories", "aa"}},
	}))

	data, err := os.ReadFile(filepath.Join(dir, "verticals.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,name,prefix\n1,Apparel & Accessories,aa\n", string(data))
}

func TestNestedTableName(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := Open(dir)
	require.NoError(t, err)

	name := "localizations/localizations_vertical"
	require.NoError(t, st.Write(ctx, store.Table{
		Name:    name,
		Columns: []string{"id", "vertical_id", "language_code", "name"},
	}))

	_, err = os.Stat(filepath.Join(dir, "localizations", "localizations_vertical.csv"))
	require.NoError(t, err)

	names, err := st.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)
}

func TestReadMissingTable(t *testing.T) {
	st, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = st.Read(context.Background(), "extended_attributes")
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalerr.ErrTableNotFound))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestReadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.csv"), nil, 0o644))

	tbl, err := st.Read(context.Background(), "empty")
	require.NoError(t, err)
	assert.Empty(t, tbl.Columns)
	assert.Empty(t, tbl.Rows)
}

func TestOpenRequiresDir(t *testing.T) {
	_, err := Open("  ")
	assert.True(t, errors.Is(err, internalerr.ErrInvalidConfig))
}
