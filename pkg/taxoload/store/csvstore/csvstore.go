// Package csvstore keeps each table as a CSV file with a header row.
//
// Table names map to paths below the root directory: "categories" becomes
// <root>/categories.csv and "localizations/localizations_category" becomes
// <root>/localizations/localizations_category.csv.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
	"github.com/cognicore/taxoload/pkg/taxoload/store"
)

const ext = ".csv"

// Store implements store.Store on a directory of CSV files.
type Store struct {
	root string
}

// Open returns a store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: csv store directory is required", internalerr.ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the store directory.
func (s *Store) Root() string { return s.root }

// Path returns the file backing the named table.
func (s *Store) Path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name)+ext)
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Write replaces the table file. The new content is written to a temporary
// file in the same directory and renamed over the old one.
func (s *Store) Write(ctx context.Context, t store.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(t.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create table dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, t); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", t.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func encode(w io.Writer, t store.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read parses the table file. The first record is the header.
func (s *Store) Read(ctx context.Context, name string) (store.Table, error) {
	if err := ctx.Err(); err != nil {
		return store.Table{}, err
	}
	f, err := os.Open(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store.Table{}, fmt.Errorf("%w: %s: %w", internalerr.ErrTableNotFound, name, err)
		}
		return store.Table{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	t := store.Table{Name: name}
	header, err := r.Read()
	if err == io.EOF {
		return t, nil
	}
	if err != nil {
		return store.Table{}, fmt.Errorf("read %s header: %w", name, err)
	}
	t.Columns = header

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return store.Table{}, fmt.Errorf("read %s: %w", name, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Tables lists every table below the root.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ext || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), ext))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
