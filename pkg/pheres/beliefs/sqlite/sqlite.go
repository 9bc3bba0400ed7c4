// Package sqlite is the durable belief base implementation. Facts are
// written through to a SQLite database in canonical text form and
// re-parsed on open, so an agent's beliefs survive restarts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/pheres/pkg/pheres/beliefs"
	"github.com/cognicore/pheres/pkg/pheres/beliefs/membase"
	"github.com/cognicore/pheres/pkg/pheres/parser"
	"github.com/cognicore/pheres/pkg/pheres/term"
)

// base keeps the working set in memory and writes every change through
// to the database.
type base struct {
	db  *sql.DB
	mem *membase.Base
}

// Open opens (creating if needed) a durable belief base at path, with
// WAL mode enabled, and loads any previously stored facts.
func Open(ctx context.Context, path string) (beliefs.Base, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	b := &base{db: db, mem: membase.New()}
	if err := b.load(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS beliefs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	functor TEXT NOT NULL,
	arity INTEGER NOT NULL,
	fact TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS idx_beliefs_indicator ON beliefs(functor, arity);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (b *base) load(ctx context.Context) error {
	rows, err := b.db.QueryContext(ctx, "SELECT fact FROM beliefs ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return err
		}
		fact, err := parser.ParseTerm(text)
		if err != nil {
			return fmt.Errorf("stored belief %q: %w", text, err)
		}
		if _, err := b.mem.Assert(ctx, fact); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close closes the database connection.
func (b *base) Close() error {
	return b.db.Close()
}

// Assert adds a fact to memory and, when new, to the database.
func (b *base) Assert(ctx context.Context, fact term.Term) (bool, error) {
	added, err := b.mem.Assert(ctx, fact)
	if err != nil || !added {
		return added, err
	}

	functor, arity, _ := term.Indicator(fact)
	_, err = b.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO beliefs(functor, arity, fact) VALUES(?, ?, ?)",
		functor, arity, fact.String())
	if err != nil {
		return false, err
	}
	return true, nil
}

// Retract removes the first matching fact from memory and the database.
func (b *base) Retract(ctx context.Context, pattern term.Term) (term.Term, bool, error) {
	removed, ok, err := b.mem.Retract(ctx, pattern)
	if err != nil || !ok {
		return removed, ok, err
	}

	if _, err := b.db.ExecContext(ctx,
		"DELETE FROM beliefs WHERE fact = ?", removed.String()); err != nil {
		return nil, false, err
	}
	return removed, true, nil
}

// Candidates delegates to the in-memory working set.
func (b *base) Candidates(ctx context.Context, functor string, arity int) ([]term.Term, error) {
	return b.mem.Candidates(ctx, functor, arity)
}

// All delegates to the in-memory working set.
func (b *base) All(ctx context.Context) ([]term.Term, error) {
	return b.mem.All(ctx)
}
