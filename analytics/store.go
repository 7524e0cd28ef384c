package analytics

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the analytics SQLite database: visits, bot visits, and the
// settings table carrying the hashing salt.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the analytics database at path.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("analytics: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("analytics: open db: %w", err)
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, fmt.Errorf("analytics: pragmas: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("analytics: ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS visits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    visitor_id TEXT NOT NULL,
    session_id TEXT NOT NULL,
    browser TEXT NOT NULL,
    os TEXT NOT NULL,
    device TEXT NOT NULL,
    path TEXT NOT NULL,
    referrer TEXT NOT NULL DEFAULT '',
    screen_size TEXT NOT NULL DEFAULT '',
    timestamp TEXT NOT NULL,
    duration_sec INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS bot_visits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    bot_name TEXT NOT NULL,
    user_agent TEXT NOT NULL,
    path TEXT NOT NULL,
    timestamp TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
CREATE INDEX IF NOT EXISTS idx_visits_visitor ON visits(visitor_id);
CREATE INDEX IF NOT EXISTS idx_bot_visits_timestamp ON bot_visits(timestamp);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`)
	return err
}

// GetSetting retrieves a setting value by key. Returns empty string when
// not found.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting stores a setting value by key (upsert).
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// SaveVisit stores a page view.
func (s *Store) SaveVisit(v Visit) error {
	_, err := s.db.Exec(`INSERT INTO visits
		(visitor_id, session_id, browser, os, device, path, referrer, screen_size, timestamp, duration_sec)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.VisitorID, v.SessionID, v.Browser, v.OS, v.Device, v.Path, v.Referrer,
		v.ScreenSize, v.Timestamp.UTC().Format(time.RFC3339), v.DurationSec)
	return err
}

// UpdateVisitDuration updates the most recent visit of visitor+path with
// the time spent, as reported by the unload beacon.
func (s *Store) UpdateVisitDuration(visitorID, path string, durationSec int) error {
	_, err := s.db.Exec(`UPDATE visits SET duration_sec = ?
		WHERE id = (SELECT id FROM visits WHERE visitor_id = ? AND path = ?
			ORDER BY timestamp DESC LIMIT 1)`,
		durationSec, visitorID, path)
	return err
}

// SaveBotVisit stores a crawler page view.
func (s *Store) SaveBotVisit(bv BotVisit) error {
	_, err := s.db.Exec(`INSERT INTO bot_visits (bot_name, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)`,
		bv.BotName, bv.UserAgent, bv.Path, bv.Timestamp.UTC().Format(time.RFC3339))
	return err
}

const topLimit = 10

// Stats aggregates the last days of visits ending at now.
func (s *Store) Stats(now time.Time, days int) (Stats, error) {
	if days <= 0 {
		days = 7
	}
	from := now.AddDate(0, 0, -days).UTC().Format(time.RFC3339)
	to := now.UTC().Format(time.RFC3339)

	stats := Stats{
		Period:       fmt.Sprintf("last %d days", days),
		TopPages:     []PageStat{},
		TopReferrers: []DimensionStat{},
		Browsers:     []DimensionStat{},
		Devices:      []DimensionStat{},
		Daily:        []DailyCount{},
	}

	var avgDuration float64
	err := s.db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT visitor_id),
			COALESCE(AVG(NULLIF(duration_sec, 0)), 0)
		FROM visits WHERE timestamp BETWEEN ? AND ?`, from, to).
		Scan(&stats.TotalViews, &stats.UniqueVisitors, &avgDuration)
	if err != nil {
		return Stats{}, fmt.Errorf("analytics: totals: %w", err)
	}
	stats.AvgDurationSec = int(math.Round(avgDuration))

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM bot_visits
		WHERE timestamp BETWEEN ? AND ?`, from, to).Scan(&stats.BotViews); err != nil {
		return Stats{}, fmt.Errorf("analytics: bot totals: %w", err)
	}

	if err := s.queryPages(&stats.TopPages, from, to); err != nil {
		return Stats{}, err
	}
	for _, dim := range []struct {
		column string
		dest   *[]DimensionStat
	}{
		{"referrer", &stats.TopReferrers},
		{"browser", &stats.Browsers},
		{"device", &stats.Devices},
	} {
		if err := s.queryDimension(dim.column, dim.dest, from, to); err != nil {
			return Stats{}, err
		}
	}

	rows, err := s.db.Query(`SELECT substr(timestamp, 1, 10) AS day, COUNT(*)
		FROM visits WHERE timestamp BETWEEN ? AND ?
		GROUP BY day ORDER BY day ASC`, from, to)
	if err != nil {
		return Stats{}, fmt.Errorf("analytics: daily views: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d DailyCount
		if err := rows.Scan(&d.Date, &d.Views); err != nil {
			return Stats{}, err
		}
		stats.Daily = append(stats.Daily, d)
	}
	return stats, rows.Err()
}

func (s *Store) queryPages(dest *[]PageStat, from, to string) error {
	rows, err := s.db.Query(`SELECT path, COUNT(*) AS views
		FROM visits WHERE timestamp BETWEEN ? AND ?
		GROUP BY path ORDER BY views DESC LIMIT ?`, from, to, topLimit)
	if err != nil {
		return fmt.Errorf("analytics: top pages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p PageStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return err
		}
		*dest = append(*dest, p)
	}
	return rows.Err()
}

func (s *Store) queryDimension(column string, dest *[]DimensionStat, from, to string) error {
	rows, err := s.db.Query(`SELECT `+column+`, COUNT(*) AS n
		FROM visits WHERE timestamp BETWEEN ? AND ?
		GROUP BY `+column+` ORDER BY n DESC LIMIT ?`, from, to, topLimit)
	if err != nil {
		return fmt.Errorf("analytics: %s breakdown: %w", column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return err
		}
		*dest = append(*dest, d)
	}
	return rows.Err()
}

// CleanupOldVisits removes visits and bot visits older than the retention
// period.
func (s *Store) CleanupOldVisits(retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(time.RFC3339)
	if _, err := s.db.Exec(`DELETE FROM visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("analytics: cleanup visits: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM bot_visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("analytics: cleanup bot_visits: %w", err)
	}
	return nil
}
