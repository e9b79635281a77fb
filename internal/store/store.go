package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Kind identifies which digest variant was published.
type Kind string

const (
	KindNews   Kind = "news"
	KindDaily  Kind = "daily"
	KindWeekly Kind = "weekly"
	KindPoll   Kind = "poll"
)

// Publication is one successfully sent message.
type Publication struct {
	ID        string
	Kind      Kind
	ChatID    string
	MessageID int64
	Items     int
	SentAt    time.Time
}

// WeeklyState is the market snapshot the weekly summary compares against.
type WeeklyState struct {
	Date         time.Time `json:"date"`
	MarketCapUSD float64   `json:"mc_usd"`
}

const weeklyStateKey = "weekly_state"

type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS publications (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			chat_id    TEXT NOT NULL,
			message_id INTEGER NOT NULL DEFAULT 0,
			items      INTEGER NOT NULL DEFAULT 0,
			sent_at    DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_publications_sent_at ON publications(sent_at DESC);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	return errors.Join(errs...)
}

// Record stores p, assigning an ID and send time when they are unset.
func (s *Store) Record(p Publication) (Publication, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.SentAt.IsZero() {
		p.SentAt = time.Now()
	}
	p.SentAt = p.SentAt.UTC()

	_, err := s.writeDB.Exec(`
		INSERT INTO publications (id, kind, chat_id, message_id, items, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, string(p.Kind), p.ChatID, p.MessageID, p.Items, p.SentAt)
	if err != nil {
		return p, fmt.Errorf("recording publication %s: %w", p.ID, err)
	}
	return p, nil
}

// Recent returns up to limit publications, newest first.
func (s *Store) Recent(limit int) ([]Publication, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.readDB.Query(`
		SELECT id, kind, chat_id, message_id, items, sent_at
		FROM publications ORDER BY sent_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying publications: %w", err)
	}
	defer rows.Close()

	var out []Publication
	for rows.Next() {
		var (
			p    Publication
			kind string
		)
		if err := rows.Scan(&p.ID, &kind, &p.ChatID, &p.MessageID, &p.Items, &p.SentAt); err != nil {
			return nil, fmt.Errorf("scanning publication: %w", err)
		}
		p.Kind = Kind(kind)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Prune deletes publications older than the retention period.
func (s *Store) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC()
	res, err := s.writeDB.Exec(`DELETE FROM publications WHERE sent_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting publications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if _, err := s.writeDB.Exec(`VACUUM`); err != nil {
			return n, fmt.Errorf("vacuum: %w", err)
		}
	}
	return n, nil
}

// Stats returns the number of recorded publications and the file size.
func (s *Store) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := s.readDB.QueryRow(`SELECT COUNT(*) FROM publications`).Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting publications: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	return count, info.Size(), nil
}

// WeeklyState returns the last saved weekly snapshot, or nil if none exists.
func (s *Store) WeeklyState() (*WeeklyState, error) {
	var value string
	err := s.readDB.QueryRow(`SELECT value FROM meta WHERE key = ?`, weeklyStateKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading weekly state: %w", err)
	}
	var st WeeklyState
	if err := json.Unmarshal([]byte(value), &st); err != nil {
		return nil, fmt.Errorf("decoding weekly state: %w", err)
	}
	return &st, nil
}

func (s *Store) SaveWeeklyState(st WeeklyState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding weekly state: %w", err)
	}
	_, err = s.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, weeklyStateKey, string(data))
	if err != nil {
		return fmt.Errorf("saving weekly state: %w", err)
	}
	return nil
}
