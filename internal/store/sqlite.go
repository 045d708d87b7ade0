package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"ValueSentinel/internal/logging"
	"ValueSentinel/internal/model"
)

// SQLiteStore caches fundamentals in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *logging.Logger
	now    func() time.Time
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, logger *logging.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logging.NewSilent()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("sqlite snapshot store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fundamentals (
			symbol      TEXT PRIMARY KEY,
			fetched_at  INTEGER NOT NULL,
			source      TEXT,
			price       REAL,
			eps_ttm     REAL,
			payload     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fundamentals_fetched ON fundamentals(fetched_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) GetFundamentals(symbol string, maxAge time.Duration) (*model.Fundamentals, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fetchedAt int64
	var payload string
	err := s.db.QueryRow(`SELECT fetched_at, payload FROM fundamentals WHERE symbol = ?`,
		normalize(symbol)).Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query fundamentals: %w", err)
	}
	if s.now().Sub(time.Unix(fetchedAt, 0)) > maxAge {
		return nil, false, nil
	}

	var f model.Fundamentals
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		return nil, false, fmt.Errorf("decode fundamentals: %w", err)
	}
	return &f, true, nil
}

func (s *SQLiteStore) PutFundamentals(f *model.Fundamentals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode fundamentals: %w", err)
	}
	fetchedAt := f.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = s.now()
	}
	_, err = s.db.Exec(`INSERT INTO fundamentals (symbol, fetched_at, source, price, eps_ttm, payload)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(symbol) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			source     = excluded.source,
			price      = excluded.price,
			eps_ttm    = excluded.eps_ttm,
			payload    = excluded.payload`,
		normalize(f.Symbol), fetchedAt.Unix(), f.Source, f.Price, f.EPSTTM, string(payload),
	)
	return err
}

func (s *SQLiteStore) Close() error {
	s.logger.Info().Msg("closing sqlite snapshot store")
	return s.db.Close()
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
