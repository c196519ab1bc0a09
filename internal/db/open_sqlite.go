package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mithrel/arttown/pkg/api"
)

type sqliteStore struct{ db *sql.DB }

// conn returns the transaction carried by ctx, or the database handle.
func (s *sqliteStore) conn(ctx context.Context) execer {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *sqliteStore) SaveTable(ctx context.Context, t CachedTable) error {
	_, err := s.conn(ctx).ExecContext(ctx, `INSERT INTO content_cache(table_name, payload, digest, fetched_at) VALUES(?,?,?,?)
ON CONFLICT(table_name) DO UPDATE SET payload=excluded.payload, digest=excluded.digest, fetched_at=excluded.fetched_at`,
		string(t.Table), t.Payload, t.Digest, t.FetchedAt.UTC())
	return err
}

func (s *sqliteStore) LoadTable(ctx context.Context, table api.Table) (CachedTable, error) {
	t := CachedTable{Table: table}
	row := s.conn(ctx).QueryRowContext(ctx, `SELECT payload, digest, fetched_at FROM content_cache WHERE table_name=?`, string(table))
	if err := row.Scan(&t.Payload, &t.Digest, &t.FetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return CachedTable{}, ErrNotFound
		}
		return CachedTable{}, err
	}
	return t, nil
}

func (s *sqliteStore) SaveRefresh(ctx context.Context, tables []CachedTable, r RefreshRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txctx := WithTx(ctx, tx)
	for _, t := range tables {
		if err := s.SaveTable(txctx, t); err != nil {
			return err
		}
	}
	if err := s.AppendRefresh(txctx, r); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteStore) AppendRefresh(ctx context.Context, r RefreshRecord) error {
	ok := 0
	if r.OK {
		ok = 1
	}
	conn := s.conn(ctx)
	if _, err := conn.ExecContext(ctx, `INSERT INTO refresh_log(time, source, ok, message) VALUES(?,?,?,?)`,
		r.Time.UTC(), r.Source, ok, r.Message); err != nil {
		return err
	}
	_, err := conn.ExecContext(ctx, `DELETE FROM refresh_log WHERE rowid NOT IN (
		SELECT rowid FROM refresh_log ORDER BY time DESC, rowid DESC LIMIT ?)`, refreshLogKeep)
	return err
}

func (s *sqliteStore) ListRefreshes(ctx context.Context, limit int) ([]RefreshRecord, error) {
	q := `SELECT time, source, ok, message FROM refresh_log ORDER BY time DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.conn(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RefreshRecord
	for rows.Next() {
		var r RefreshRecord
		var ok int
		var msg sql.NullString
		if err := rows.Scan(&r.Time, &r.Source, &ok, &msg); err != nil {
			return nil, err
		}
		r.OK = ok == 1
		r.Message = msg.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error { return s.db.Close() }

// openSQLite connects to a SQLite database using modernc.org/sqlite driver and ensures schema exists.
func openSQLite(ctx context.Context, dsn string) (*sqliteStore, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// set WAL mode
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA busy_timeout=5000;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &sqliteStore{db: dbh}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS content_cache (
  table_name TEXT PRIMARY KEY,
  payload BLOB NOT NULL,
  digest TEXT NOT NULL DEFAULT '',
  fetched_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS refresh_log (
  time TIMESTAMP NOT NULL,
  source TEXT NOT NULL,
  ok INTEGER NOT NULL,
  message TEXT
);
CREATE INDEX IF NOT EXISTS idx_refresh_log_time ON refresh_log(time DESC);
`)
	return err
}

// CacheFetchedAt is a convenience for callers that only need freshness.
func CacheFetchedAt(ctx context.Context, s Store, table api.Table) (time.Time, bool) {
	t, err := s.LoadTable(ctx, table)
	if err != nil {
		return time.Time{}, false
	}
	return t.FetchedAt, true
}
