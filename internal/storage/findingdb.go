package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/onionwatch/internal/model"
)

// FindingStore provides SQLite-based persistence for findings.
// It manages connection pooling and provides methods for saving and
// querying scan output across monitoring passes.
//
// Design decision: One database file for all monitored sites rather
// than a file per seed. Cross-site statistics and recency queries are
// the common read path, and a single file keeps backup trivial.
type FindingStore struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures FindingStore behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// timeFormat is how observed_at is stored. It matches SQLite's own
// datetime() output so datetime modifiers in queries compare correctly
// against stored values. Always UTC.
const timeFormat = "2006-01-02 15:04:05"

// Open opens or creates a FindingStore under the given directory.
// If CreateIfNotExists is true, the directory and database file are
// created; otherwise a missing database is an error.
func Open(dbDir string, opts Options) (*FindingStore, error) {
	dbPath := filepath.Join(dbDir, "onionwatch.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw prevents creating new files when CreateIfNotExists is off.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY churn under the concurrent scanner.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &FindingStore{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *FindingStore) Close() error {
	return s.db.Close()
}

// Path returns the path to the database file.
func (s *FindingStore) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *FindingStore) createTables() error {
	schema := `
	-- Findings store one extraction result per page per observation
	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		title TEXT,
		observed_at DATETIME NOT NULL,
		keyword_matches TEXT,
		entities TEXT,
		content_snippet TEXT,
		content_length INTEGER,
		has_matches INTEGER NOT NULL DEFAULT 0,
		UNIQUE(url, observed_at)
	);

	CREATE INDEX IF NOT EXISTS idx_findings_url ON findings(url);
	CREATE INDEX IF NOT EXISTS idx_findings_observed ON findings(observed_at);
	CREATE INDEX IF NOT EXISTS idx_findings_matches ON findings(has_matches);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveFinding inserts or updates a finding. A finding for the same URL
// at the same observation time replaces the previous row, so retrying
// a scan pass never duplicates records.
func (s *FindingStore) SaveFinding(ctx context.Context, f *model.Finding) (int64, error) {
	matchesJSON, err := json.Marshal(f.KeywordMatches)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize keyword matches: %w", err)
	}
	entitiesJSON, err := json.Marshal(f.Entities)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize entities: %w", err)
	}

	query := `
	INSERT INTO findings (url, title, observed_at, keyword_matches, entities, content_snippet, content_length, has_matches)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, observed_at) DO UPDATE SET
		title = excluded.title,
		keyword_matches = excluded.keyword_matches,
		entities = excluded.entities,
		content_snippet = excluded.content_snippet,
		content_length = excluded.content_length,
		has_matches = excluded.has_matches
	`

	result, err := s.db.ExecContext(ctx, query,
		f.URL,
		f.Title,
		f.ObservedAt.UTC().Format(timeFormat),
		string(matchesJSON),
		string(entitiesJSON),
		f.ContentSnippet,
		f.ContentLength,
		boolToInt(f.HasMatches),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save finding: %w", err)
	}

	return result.LastInsertId()
}

// SaveFindings saves a batch of findings, returning the first error.
func (s *FindingStore) SaveFindings(ctx context.Context, findings []*model.Finding) error {
	for _, f := range findings {
		if _, err := s.SaveFinding(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// LoadFindings returns all stored findings, newest first.
func (s *FindingStore) LoadFindings(ctx context.Context) ([]*model.Finding, error) {
	return s.queryFindings(ctx, `
	SELECT url, title, observed_at, keyword_matches, entities, content_snippet, content_length, has_matches
	FROM findings
	ORDER BY observed_at DESC
	`)
}

// FindingsSince returns findings observed within the given duration,
// newest first.
func (s *FindingStore) FindingsSince(ctx context.Context, within time.Duration) ([]*model.Finding, error) {
	modifier := fmt.Sprintf("-%d seconds", int(within.Seconds()))
	return s.queryFindings(ctx, `
	SELECT url, title, observed_at, keyword_matches, entities, content_snippet, content_length, has_matches
	FROM findings
	WHERE observed_at > datetime('now', ?)
	ORDER BY observed_at DESC
	`, modifier)
}

// FindingsWithMatches returns only findings flagged as matched (a
// keyword hit or an extracted entity), newest first.
func (s *FindingStore) FindingsWithMatches(ctx context.Context) ([]*model.Finding, error) {
	return s.queryFindings(ctx, `
	SELECT url, title, observed_at, keyword_matches, entities, content_snippet, content_length, has_matches
	FROM findings
	WHERE has_matches = 1
	ORDER BY observed_at DESC
	`)
}

// queryFindings runs a finding SELECT and scans the rows.
func (s *FindingStore) queryFindings(ctx context.Context, query string, args ...any) ([]*model.Finding, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var findings []*model.Finding
	for rows.Next() {
		var (
			f            model.Finding
			observedAt   string
			matchesJSON  sql.NullString
			entitiesJSON sql.NullString
			hasMatches   int
		)

		err := rows.Scan(
			&f.URL,
			&f.Title,
			&observedAt,
			&matchesJSON,
			&entitiesJSON,
			&f.ContentSnippet,
			&f.ContentLength,
			&hasMatches,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}

		f.ObservedAt = parseTimestamp(observedAt)
		f.HasMatches = hasMatches != 0

		if matchesJSON.Valid && matchesJSON.String != "" {
			if err := json.Unmarshal([]byte(matchesJSON.String), &f.KeywordMatches); err != nil {
				return nil, fmt.Errorf("failed to parse keyword matches: %w", err)
			}
		}
		if entitiesJSON.Valid && entitiesJSON.String != "" {
			if err := json.Unmarshal([]byte(entitiesJSON.String), &f.Entities); err != nil {
				return nil, fmt.Errorf("failed to parse entities: %w", err)
			}
		}

		findings = append(findings, &f)
	}

	return findings, rows.Err()
}

// RecentActivity counts findings observed in the trailing hour, day,
// and week. The buckets are cumulative: a finding from ten minutes ago
// is counted in all three.
func (s *FindingStore) RecentActivity(ctx context.Context) (model.RecencyBuckets, error) {
	query := `
	SELECT
		SUM(CASE WHEN observed_at > datetime('now', '-1 hours') THEN 1 ELSE 0 END),
		SUM(CASE WHEN observed_at > datetime('now', '-24 hours') THEN 1 ELSE 0 END),
		SUM(CASE WHEN observed_at > datetime('now', '-168 hours') THEN 1 ELSE 0 END)
	FROM findings
	`

	var lastHour, lastDay, lastWeek sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query).Scan(&lastHour, &lastDay, &lastWeek); err != nil {
		return model.RecencyBuckets{}, fmt.Errorf("failed to count recent activity: %w", err)
	}

	return model.RecencyBuckets{
		LastHour: int(lastHour.Int64),
		LastDay:  int(lastDay.Int64),
		LastWeek: int(lastWeek.Int64),
	}, nil
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending
// on configuration. Unparseable values become the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
