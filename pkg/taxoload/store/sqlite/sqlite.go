package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cognicore/taxoload/pkg/taxoload/store"
)

// sqliteStore implements store.Store with one SQLite table per output table.
//
// Every cell is stored as TEXT so values round-trip exactly as the CSV
// backend writes them; row order is preserved through rowid.
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates the table catalog if it doesn't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS taxoload_tables (
	name TEXT PRIMARY KEY,
	sql_name TEXT UNIQUE NOT NULL,
	columns TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Write replaces the named table inside a single transaction.
func (s *sqliteStore) Write(ctx context.Context, t store.Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("sqlite: table %s has no columns", t.Name)
	}
	cols, err := json.Marshal(t.Columns)
	if err != nil {
		return err
	}
	sqlName := tableName(t.Name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+quote(sqlName)); err != nil {
		return err
	}

	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = quote(c) + " TEXT"
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %s (%s)`, quote(sqlName), strings.Join(defs, ", "))); err != nil {
		return err
	}

	const catalog = `
INSERT INTO taxoload_tables (name, sql_name, columns) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	sql_name=excluded.sql_name,
	columns=excluded.columns;
`
	if _, err := tx.ExecContext(ctx, catalog, t.Name, sqlName, string(cols)); err != nil {
		return err
	}

	if err := insertRows(ctx, tx, sqlName, t); err != nil {
		return err
	}

	return tx.Commit()
}

func insertRows(ctx context.Context, tx *sql.Tx, sqlName string, t store.Table) error {
	if len(t.Rows) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(t.Columns)), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, quote(sqlName), placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]interface{}, len(t.Columns))
	for _, row := range t.Rows {
		for i := range args {
			args[i] = ""
			if i < len(row) {
				args[i] = row[i]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// Read loads the named table in insertion order.
func (s *sqliteStore) Read(ctx context.Context, name string) (store.Table, error) {
	var sqlName, rawCols string
	err := s.db.QueryRowContext(ctx, `SELECT sql_name, columns FROM taxoload_tables WHERE name = ?`, name).Scan(&sqlName, &rawCols)
	if err == sql.ErrNoRows {
		return store.Table{}, store.NotFound(name)
	}
	if err != nil {
		return store.Table{}, err
	}

	t := store.Table{Name: name}
	if err := json.Unmarshal([]byte(rawCols), &t.Columns); err != nil {
		return store.Table{}, fmt.Errorf("sqlite: decode columns of %s: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY rowid`, quote(sqlName)))
	if err != nil {
		return store.Table{}, err
	}
	defer rows.Close()

	for rows.Next() {
		cells := make([]sql.NullString, len(t.Columns))
		dest := make([]interface{}, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return store.Table{}, err
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = c.String
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

// Tables lists every table recorded in the catalog.
func (s *sqliteStore) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM taxoload_tables ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// tableName flattens nested table names ("localizations/x") into SQL names.
func tableName(name string) string {
	return strings.ReplaceAll(name, "/", "__")
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
