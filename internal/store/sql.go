// internal/store/sql.go
//
// database/sql implementation of Store for SQLite and PostgreSQL.
// Responsibilities:
//   - Opening the database with dialect defaults (WAL + busy timeout on SQLite).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Mapping users, games and scores to rows; games carry the reveal state and
//     guess log as JSON text columns.
//
// Transactions:
//   - SQLite: BEGIN IMMEDIATE, so writers serialize on the database lock.
//   - PostgreSQL: reads of games and users inside a Tx use SELECT ... FOR UPDATE.

package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/history"
	"github.com/robalobadob/hangman/internal/scoring"
)

//go:embed migrations
var migrationsFS embed.FS

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLStore is a Store backed by database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	sqlReader
}

// OpenSQLite opens (and creates if missing) a SQLite database file and migrates it.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLStore, error) {
	// Ensure directory exists for ./data/hangman.db, etc.
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return Open(ctx, SQLiteDialect{}, dbPath)
}

// OpenPostgres connects to a PostgreSQL URL and migrates it.
func OpenPostgres(ctx context.Context, url string) (*SQLStore, error) {
	return Open(ctx, PostgresDialect{}, url)
}

// Open connects using dialect, configures the pool and applies migrations.
func Open(ctx context.Context, d Dialect, target string) (*SQLStore, error) {
	db, err := sql.Open(d.DriverName(), d.DSN(target))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := d.ConfigureConnection(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure connection: %w", err)
	}
	s := &SQLStore{db: db, dialect: d, sqlReader: sqlReader{q: db, d: d}}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error { return s.db.Close() }

// Update runs fn inside a database transaction.
func (s *SQLStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(&sqlTx{sqlReader{q: tx, d: s.dialect, lock: s.dialect.LockClause()}}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

/* ------------------------------ migrations ------------------------------ */

// migrate applies the dialect's embedded *.sql files in lexical order, each in
// its own transaction, skipping files already recorded in _migrations.
func (s *SQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	root := path.Join("migrations", s.dialect.MigrationsSubdir())
	entries, err := fs.ReadDir(migrationsFS, root)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".sql" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := s.db.QueryRowContext(ctx, s.dialect.Rebind(`SELECT 1 FROM _migrations WHERE name=?`), f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrationsFS.ReadFile(path.Join(root, f))
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(`INSERT INTO _migrations(name) VALUES (?)`), f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

/* -------------------------------- reads --------------------------------- */

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlReader struct {
	q    querier
	d    Dialect
	lock string // appended to single-row reads inside a transaction
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userCols  = `name, COALESCE(email, ''), wins, avg_attempts_remaining`
	gameCols  = `id, owner, word, attempts_allowed, attempts_remaining, revealed, game_over, won, history, created_at`
	scoreCols = `id, owner, date, won, attempts_remaining, number_of_letters`
)

func (r sqlReader) GetUser(ctx context.Context, name string) (*scoring.User, error) {
	row := r.q.QueryRowContext(ctx, r.d.Rebind(`SELECT `+userCols+` FROM users WHERE name=?`+r.lock), name)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (r sqlReader) ListUsers(ctx context.Context) ([]scoring.User, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []scoring.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r sqlReader) GetGame(ctx context.Context, id string) (*game.Game, error) {
	row := r.q.QueryRowContext(ctx, r.d.Rebind(`SELECT `+gameCols+` FROM games WHERE id=?`+r.lock), id)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

func (r sqlReader) ListActiveGames(ctx context.Context, owner string) ([]*game.Game, error) {
	query := `SELECT ` + gameCols + ` FROM games WHERE game_over=?`
	args := []any{false}
	if owner != "" {
		query += ` AND owner=?`
		args = append(args, owner)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.q.QueryContext(ctx, r.d.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*game.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r sqlReader) ListUserScores(ctx context.Context, owner string) ([]scoring.Score, error) {
	return r.listScores(ctx, `SELECT `+scoreCols+` FROM scores WHERE owner=? ORDER BY seq`, owner)
}

func (r sqlReader) ListScores(ctx context.Context) ([]scoring.Score, error) {
	return r.listScores(ctx, `SELECT `+scoreCols+` FROM scores ORDER BY seq`)
}

func (r sqlReader) listScores(ctx context.Context, query string, args ...any) ([]scoring.Score, error) {
	rows, err := r.q.QueryContext(ctx, r.d.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []scoring.Score{}
	for rows.Next() {
		var s scoring.Score
		if err := rows.Scan(&s.ID, &s.Owner, &s.Date, &s.Won, &s.AttemptsRemaining, &s.NumberOfLetters); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanUser(row rowScanner) (*scoring.User, error) {
	var u scoring.User
	if err := row.Scan(&u.Name, &u.Email, &u.Wins, &u.AvgAttemptsRemaining); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanGame(row rowScanner) (*game.Game, error) {
	var (
		g                  game.Game
		revealed, hist, ts string
	)
	if err := row.Scan(&g.ID, &g.Owner, &g.Word, &g.AttemptsAllowed, &g.AttemptsRemaining,
		&revealed, &g.GameOver, &g.Won, &hist, &ts); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(revealed), &g.Revealed); err != nil {
		return nil, fmt.Errorf("decode revealed of game %s: %w", g.ID, err)
	}
	var entries history.Log
	if err := json.Unmarshal([]byte(hist), &entries); err != nil {
		return nil, fmt.Errorf("decode history of game %s: %w", g.ID, err)
	}
	if len(entries) > 0 {
		g.Log = entries
	}
	created, err := time.Parse(timeLayout, ts)
	if err != nil {
		return nil, fmt.Errorf("decode created_at of game %s: %w", g.ID, err)
	}
	g.CreatedAt = created
	return &g, nil
}

/* -------------------------------- writes -------------------------------- */

type sqlTx struct {
	sqlReader
}

func (t *sqlTx) InsertUser(ctx context.Context, u *scoring.User) error {
	if _, err := t.GetUser(ctx, u.Name); err == nil {
		return ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	var email any
	if u.Email != "" {
		email = u.Email
	}
	_, err := t.q.ExecContext(ctx, t.d.Rebind(
		`INSERT INTO users (name, email, wins, avg_attempts_remaining) VALUES (?,?,?,?)`),
		u.Name, email, u.Wins, u.AvgAttemptsRemaining)
	if t.d.IsUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (t *sqlTx) PutUser(ctx context.Context, u *scoring.User) error {
	res, err := t.q.ExecContext(ctx, t.d.Rebind(
		`UPDATE users SET wins=?, avg_attempts_remaining=? WHERE name=?`),
		u.Wins, u.AvgAttemptsRemaining, u.Name)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (t *sqlTx) PutGame(ctx context.Context, g *game.Game) error {
	revealed, err := json.Marshal(g.Revealed)
	if err != nil {
		return err
	}
	entries := g.Log
	if entries == nil {
		entries = history.Log{}
	}
	hist, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	_, err = t.q.ExecContext(ctx, t.d.Rebind(`
		INSERT INTO games (`+gameCols+`)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (id) DO UPDATE SET
			attempts_remaining = excluded.attempts_remaining,
			revealed           = excluded.revealed,
			game_over          = excluded.game_over,
			won                = excluded.won,
			history            = excluded.history`),
		g.ID, g.Owner, g.Word, g.AttemptsAllowed, g.AttemptsRemaining,
		string(revealed), g.GameOver, g.Won, string(hist), g.CreatedAt.UTC().Format(timeLayout))
	return err
}

func (t *sqlTx) DeleteGame(ctx context.Context, id string) error {
	res, err := t.q.ExecContext(ctx, t.d.Rebind(`DELETE FROM games WHERE id=?`), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (t *sqlTx) InsertScore(ctx context.Context, s *scoring.Score) error {
	_, err := t.q.ExecContext(ctx, t.d.Rebind(`
		INSERT INTO scores (`+scoreCols+`) VALUES (?,?,?,?,?,?)`),
		s.ID, s.Owner, s.Date, s.Won, s.AttemptsRemaining, s.NumberOfLetters)
	return err
}

// requireRow maps "no row affected" to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
