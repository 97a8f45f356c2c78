package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Sodas. Quantity is nullable on purpose: the repository stores exactly
-- what the caller supplied and leaves defaulting to the form layer.
CREATE TABLE IF NOT EXISTS sodas(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  quantity INTEGER,
  price INTEGER NOT NULL DEFAULT 0,
  sold INTEGER NOT NULL DEFAULT 0,
  got INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sodas_name ON sodas(LOWER(name));

-- Operator sessions (sid cookie values)
CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  operator INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
`
	_, err := db.Exec(schema)
	return err
}

// SeedDemo inserts a few demo sodas when the table is empty. Idempotent;
// safe to run on every start. Also backs the "insert dummy data" action.
func SeedDemo(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM sodas`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo sodas")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO sodas(name, quantity, price, sold, got) VALUES
	  ('Cola', 24, 150, 0, 0),
	  ('Root Beer', 12, 175, 0, 0),
	  ('Ginger Ale', 6, 125, 0, 0)`)
	return tx.Commit()
}
