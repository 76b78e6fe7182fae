package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database, mostly for tests.
const MemoryPath = ":memory:"

// DB is the SQLite store for prices, news and the tracked-stock registry.
type DB struct {
	conn *sql.DB
	path string
}

var (
	_ interfaces.NewsStore      = (*DB)(nil)
	_ interfaces.PriceStore     = (*DB)(nil)
	_ interfaces.RiskDataSource = (*DB)(nil)
)

// Open opens (or creates) the database at path and runs migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps :memory: databases shared and serialises writers.
	conn.SetMaxOpenConns(1)

	if path != MemoryPath {
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Debug(ctx, "sqlite database opened", "path", path)
	return db, nil
}

func (db *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stocks (
			ticker       TEXT PRIMARY KEY,
			name         TEXT NOT NULL DEFAULT '',
			last_updated INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS prices (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker TEXT    NOT NULL,
			ts     INTEGER NOT NULL,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			volume REAL,
			UNIQUE (ticker, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_ts ON prices(ts)`,

		// published_at 0 means unknown; NULLs would defeat the unique key.
		`CREATE TABLE IF NOT EXISTS news (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker       TEXT    NOT NULL,
			tickers      TEXT    NOT NULL DEFAULT '',
			title        TEXT    NOT NULL,
			summary      TEXT    NOT NULL DEFAULT '',
			url          TEXT    NOT NULL DEFAULT '',
			published_at INTEGER NOT NULL DEFAULT 0,
			sentiment    REAL,
			UNIQUE (ticker, url, published_at)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_published ON news(published_at)`,
	}
	for _, s := range stmts {
		if _, err := db.conn.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(s), err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// UpsertStock records a tracked ticker and its display name.
func (db *DB) UpsertStock(ctx context.Context, symbol, name string, at time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO stocks (ticker, name, last_updated) VALUES (?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE stocks.name END,
			last_updated = excluded.last_updated`,
		strings.ToUpper(symbol), name, at.UTC().Unix())
	if err != nil {
		return fmt.Errorf("upsert stock %s: %w", symbol, err)
	}
	return nil
}

// InsertPrices stores bars, ignoring any (symbol, time) already present.
// It returns the number of new rows.
func (db *DB) InsertPrices(ctx context.Context, bars []types.PriceBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO prices (ticker, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, b := range bars {
		res, err := stmt.ExecContext(ctx, strings.ToUpper(b.Symbol), b.Time.UTC().Unix(),
			b.Open, b.High, b.Low, b.Close, b.Volume)
		if err != nil {
			return 0, fmt.Errorf("insert price %s@%s: %w", b.Symbol, b.Time.Format(time.RFC3339), err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// InsertNews stores articles, ignoring duplicates on (symbol, url, published_at).
// Titles and summaries are truncated to 500 and 2000 characters.
func (db *DB) InsertNews(ctx context.Context, items []types.NewsItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO news (ticker, tickers, title, summary, url, published_at, sentiment)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, it := range items {
		var published int64
		if it.PublishedAt != nil {
			published = it.PublishedAt.UTC().Unix()
		}
		var score any
		if it.Sentiment != nil {
			score = *it.Sentiment
		}
		tickers := it.Tickers
		if tickers == "" {
			tickers = strings.ToUpper(it.Symbol)
		}
		res, err := stmt.ExecContext(ctx, strings.ToUpper(it.Symbol), tickers,
			Truncate(it.Title, MaxTitleLen), Truncate(it.Summary, MaxSummaryLen),
			it.URL, published, score)
		if err != nil {
			return 0, fmt.Errorf("insert news %s %q: %w", it.Symbol, it.URL, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// QueryNews returns articles whose ticker list mentions symbol
// (case-insensitive) and whose publish time lies within [since, until].
func (db *DB) QueryNews(ctx context.Context, symbol string, since, until time.Time) ([]types.NewsItem, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT ticker, tickers, title, summary, url, published_at, sentiment
		FROM news
		WHERE instr(UPPER(tickers), UPPER(?)) > 0
		  AND published_at > 0
		  AND published_at BETWEEN ? AND ?
		ORDER BY published_at DESC`,
		symbol, since.UTC().Unix(), until.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("query news %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []types.NewsItem
	for rows.Next() {
		var (
			it        types.NewsItem
			published int64
			score     sql.NullFloat64
		)
		if err := rows.Scan(&it.Symbol, &it.Tickers, &it.Title, &it.Summary, &it.URL, &published, &score); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		if published > 0 {
			t := time.Unix(published, 0).UTC()
			it.PublishedAt = &t
		}
		if score.Valid {
			v := score.Float64
			it.Sentiment = &v
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// LatestClose returns the most recent stored close for symbol.
func (db *DB) LatestClose(ctx context.Context, symbol string) (float64, bool, error) {
	var close sql.NullFloat64
	err := db.conn.QueryRowContext(ctx, `
		SELECT close FROM prices
		WHERE ticker = ? AND close IS NOT NULL
		ORDER BY ts DESC LIMIT 1`, strings.ToUpper(symbol)).Scan(&close)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("latest close %s: %w", symbol, err)
	}
	return close.Float64, close.Valid, nil
}

// LoadRecentCloses returns close series per symbol, oldest first, covering
// the daysBack days that end at the newest stored bar.
func (db *DB) LoadRecentCloses(ctx context.Context, daysBack int) (map[string][]float64, error) {
	var maxTS sql.NullInt64
	if err := db.conn.QueryRowContext(ctx, `SELECT MAX(ts) FROM prices`).Scan(&maxTS); err != nil {
		return nil, fmt.Errorf("max ts: %w", err)
	}
	out := map[string][]float64{}
	if !maxTS.Valid {
		return out, nil
	}
	cutoff := maxTS.Int64 - int64(daysBack)*int64((24*time.Hour).Seconds())

	rows, err := db.conn.QueryContext(ctx, `
		SELECT ticker, close FROM prices
		WHERE ts >= ? AND close IS NOT NULL
		ORDER BY ticker, ts`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query closes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sym   string
			close float64
		)
		if err := rows.Scan(&sym, &close); err != nil {
			return nil, fmt.Errorf("scan close: %w", err)
		}
		out[sym] = append(out[sym], close)
	}
	return out, rows.Err()
}

// Stocks lists the registered tickers in alphabetical order.
func (db *DB) Stocks(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT ticker FROM stocks`)
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, rows.Err()
}

const (
	MaxTitleLen   = 500
	MaxSummaryLen = 2000
)

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
