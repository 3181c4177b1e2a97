package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nhle/twodo/internal/tables"
)

// SQLitePersister stores each store table in a SQL table of the same
// name (in snake_case), one row per store row and one column per cell.
type SQLitePersister struct {
	db     *sqlx.DB
	path   string
	store  *tables.Store
	logger *zap.Logger
	auto   *autoSaver

	// sqlTables holds the names of the tables present in the database.
	sqlTables map[string]bool
}

// tableSpec maps one store table onto its SQL table.
type tableSpec struct {
	tableID string
	sqlName string
	cells   []string
	schema  tables.TableSchema
}

func (ts tableSpec) columns() []string {
	cols := make([]string, 0, len(ts.cells)+1)
	cols = append(cols, "id")
	for _, c := range ts.cells {
		cols = append(cols, columnName(c))
	}
	return cols
}

// NewSQLitePersister opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLitePersister(
	dbPath string,
	s *tables.Store,
	logger *zap.Logger,
	opts ...Option,
) (*SQLitePersister, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	p := &SQLitePersister{
		db:     db,
		path:   dbPath,
		store:  s,
		logger: logger.With(zap.String("backend", "sqlite"), zap.String("path", dbPath)),
	}
	if err := p.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := p.loadSQLTables(); err != nil {
		db.Close()
		return nil, err
	}

	p.auto = newAutoSaver(s, p.logger, buildOptions(opts), p.saveChange)
	return p, nil
}

// Describe implements Persister.
func (p *SQLitePersister) Describe() string {
	return "sqlite: " + p.path
}

// Close stops auto-save and closes the database connection.
func (p *SQLitePersister) Close() error {
	p.auto.stop()
	return p.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (p *SQLitePersister) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := p.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = p.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := p.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		p.logger.Info("applied migration", zap.Int("version", m.version))
	}

	return nil
}

func (p *SQLitePersister) loadSQLTables() error {
	var names []string
	if err := p.db.Select(&names, "SELECT name FROM sqlite_master WHERE type='table'"); err != nil {
		return fmt.Errorf("listing tables: %w", err)
	}
	p.sqlTables = make(map[string]bool, len(names))
	for _, n := range names {
		p.sqlTables[n] = true
	}
	return nil
}

// specs returns the store tables that have both a schema and a SQL table.
func (p *SQLitePersister) specs() map[string]tableSpec {
	out := make(map[string]tableSpec)
	for _, tableID := range p.store.SchemaTableIDs() {
		sqlName := columnName(tableID)
		if !p.sqlTables[sqlName] {
			p.logger.Warn("table has no sql counterpart, not persisted", zap.String("table", tableID))
			continue
		}
		schema, _ := p.store.TableSchema(tableID)
		out[tableID] = tableSpec{
			tableID: tableID,
			sqlName: sqlName,
			cells:   schema.Cells(),
			schema:  schema,
		}
	}
	return out
}

// Load implements Persister.
func (p *SQLitePersister) Load(ctx context.Context) error {
	content := make(tables.Tables)
	rows := 0

	for tableID, spec := range p.specs() {
		t, err := p.readTable(ctx, spec)
		if err != nil {
			return err
		}
		content[tableID] = t
		rows += len(t)
	}

	if rows == 0 {
		p.logger.Info("database empty, keeping in-memory content")
		return nil
	}

	p.auto.withoutSaving(func() {
		p.store.SetContent(content)
	})
	p.logger.Info("loaded store", zap.Int("rows", rows))
	return nil
}

func (p *SQLitePersister) readTable(ctx context.Context, spec tableSpec) (tables.Table, error) {
	rows, err := p.db.QueryxContext(ctx, "SELECT * FROM "+spec.sqlName)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", spec.sqlName, err)
	}
	defer rows.Close()

	byColumn := make(map[string]string, len(spec.cells))
	for _, c := range spec.cells {
		byColumn[columnName(c)] = c
	}

	t := make(tables.Table)
	for rows.Next() {
		m := make(map[string]any)
		if err := rows.MapScan(m); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", spec.sqlName, err)
		}

		id := sqlString(m["id"])
		if id == "" {
			continue
		}
		row := make(tables.Row, len(m))
		for col, v := range m {
			cell, ok := byColumn[col]
			if !ok {
				continue
			}
			if c, ok := fromSQL(v, spec.schema[cell].Type); ok {
				row[cell] = c
			}
		}
		t[id] = row
	}
	return t, rows.Err()
}

// Save implements Persister. The database is rewritten in a single
// transaction.
func (p *SQLitePersister) Save(ctx context.Context) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for tableID, spec := range p.specs() {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+spec.sqlName); err != nil {
			return fmt.Errorf("clearing %s: %w", spec.sqlName, err)
		}

		stmt, err := tx.PreparexContext(ctx, upsertQuery(spec))
		if err != nil {
			return fmt.Errorf("preparing insert for %s: %w", spec.sqlName, err)
		}
		for rowID, row := range p.store.GetTable(tableID) {
			if _, err := stmt.ExecContext(ctx, rowArgs(spec, rowID, row)...); err != nil {
				stmt.Close()
				return fmt.Errorf("writing %s %s: %w", spec.sqlName, rowID, err)
			}
		}
		stmt.Close()
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}

// saveChange writes only the rows touched by c, reading their current
// state from the store.
func (p *SQLitePersister) saveChange(ctx context.Context, c tables.Change) error {
	specs := p.specs()

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, tableID := range c.TableIDs() {
		spec, ok := specs[tableID]
		if !ok {
			continue
		}
		for _, rowID := range c.RowIDs(tableID) {
			row, exists := p.store.GetRow(tableID, rowID)
			if !exists {
				_, err = tx.ExecContext(ctx, "DELETE FROM "+spec.sqlName+" WHERE id = ?", rowID)
			} else {
				_, err = tx.ExecContext(ctx, upsertQuery(spec), rowArgs(spec, rowID, row)...)
			}
			if err != nil {
				return fmt.Errorf("saving %s %s: %w", spec.sqlName, rowID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing change: %w", err)
	}
	return nil
}

// StartAutoSave implements Persister.
func (p *SQLitePersister) StartAutoSave(ctx context.Context) error {
	return p.auto.start(ctx)
}

// StopAutoSave implements Persister.
func (p *SQLitePersister) StopAutoSave() {
	p.auto.stop()
}

func upsertQuery(spec tableSpec) string {
	cols := spec.columns()
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		spec.sqlName, strings.Join(cols, ", "), marks,
	)
}

// rowArgs lists the values of a row in column order. Absent cells are
// written as NULL; cells with a schema default are never absent.
func rowArgs(spec tableSpec, rowID string, row tables.Row) []any {
	args := make([]any, 0, len(spec.cells)+1)
	args = append(args, rowID)
	for _, c := range spec.cells {
		args = append(args, toSQL(row[c]))
	}
	return args
}

func toSQL(v any) any {
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return x
	}
}

// fromSQL converts a scanned column value to a cell value of the given
// type. NULL columns yield no cell.
func fromSQL(v any, typ tables.CellType) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case []byte:
		return string(x), true
	case int64:
		switch typ {
		case tables.TypeBoolean:
			return x != 0, true
		case tables.TypeString:
			return strconv.FormatInt(x, 10), true
		}
		return float64(x), true
	case float64:
		if typ == tables.TypeBoolean {
			return x != 0, true
		}
		return x, true
	default:
		return x, true
	}
}

func sqlString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return ""
}

// columnName converts a camelCase cell or table name to snake_case.
func columnName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
