package persist

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
// Column names are the snake_case form of the store's cell names.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS todos (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	completed   INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	priority    TEXT NOT NULL DEFAULT 'medium',
	due_date    INTEGER,
	category_id TEXT,
	created_at  INTEGER NOT NULL DEFAULT 0,
	updated_at  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS shopping_lists (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS shopping_items (
	id         TEXT PRIMARY KEY,
	list_id    TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL DEFAULT '',
	quantity   REAL NOT NULL DEFAULT 1,
	unit       TEXT,
	price      REAL,
	purchased  INTEGER NOT NULL DEFAULT 0 CHECK(purchased IN (0, 1)),
	created_at INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS notes (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '',
	category_id TEXT,
	tags        TEXT NOT NULL DEFAULT '[]',
	images      TEXT NOT NULL DEFAULT '[]',
	links       TEXT NOT NULL DEFAULT '[]',
	created_at  INTEGER NOT NULL DEFAULT 0,
	updated_at  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS categories (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT ''
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_todos_completed ON todos(completed);
CREATE INDEX IF NOT EXISTS idx_todos_category_id ON todos(category_id);
CREATE INDEX IF NOT EXISTS idx_todos_due_date ON todos(due_date);
CREATE INDEX IF NOT EXISTS idx_shopping_items_list_id ON shopping_items(list_id);
CREATE INDEX IF NOT EXISTS idx_notes_category_id ON notes(category_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
