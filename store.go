package geopress

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/geopress/content"
	"github.com/eringen/geopress/frontmatter"
)

// Store is the SQLite index derived from the content directory. The Markdown
// files stay the source of truth; Sync rebuilds this index, and the server
// reads from it. Images and build history live here too.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema setup.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    author TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    pub_datetime TEXT NOT NULL,
    mod_datetime TEXT,
    featured INTEGER NOT NULL DEFAULT 0,
    draft INTEGER NOT NULL DEFAULT 0,
    og_image TEXT NOT NULL DEFAULT '',
    canonical_url TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL,
    body TEXT NOT NULL,
    html TEXT NOT NULL,
    source_path TEXT NOT NULL,
    word_count INTEGER NOT NULL DEFAULT 0,
    reading_minutes INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_posts_pub ON posts(pub_datetime);
CREATE INDEX IF NOT EXISTS idx_posts_draft ON posts(draft);

CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS builds (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    duration_ms INTEGER NOT NULL,
    pages INTEGER NOT NULL,
    posts INTEGER NOT NULL,
    outcome TEXT NOT NULL
);
`)
	return err
}

const postColumns = `slug, author, title, description, pub_datetime, mod_datetime,
	featured, draft, og_image, canonical_url, tags, body, html, source_path,
	word_count, reading_minutes`

// ReplacePosts reconciles the index with a freshly loaded corpus in a single
// transaction: everything out, the new corpus in.
func (s *Store) ReplacePosts(posts []content.Post) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM posts`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO posts (` + postColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range posts {
		var mod sql.NullString
		if p.Meta.ModDatetime != nil {
			mod = sql.NullString{String: p.Meta.ModDatetime.UTC().Format(time.RFC3339), Valid: true}
		}
		if _, err := stmt.Exec(
			p.Meta.Slug,
			p.Meta.Author,
			p.Meta.Title,
			p.Meta.Description,
			p.Meta.PubDatetime.UTC().Format(time.RFC3339),
			mod,
			boolInt(p.Meta.Featured),
			boolInt(p.Meta.Draft),
			p.Meta.OGImage,
			p.Meta.CanonicalURL,
			tagIndexValue(p.Meta.Tags),
			p.Body,
			p.HTML,
			p.SourcePath,
			p.WordCount,
			int(p.ReadingTime/time.Minute),
		); err != nil {
			return fmt.Errorf("geopress: index %s: %w", p.Meta.Slug, err)
		}
	}
	return tx.Commit()
}

// ListPosts returns posts visible at cutoff (not draft, published on or
// before it), newest first. If tag is non-empty, results are filtered to
// posts carrying that tag.
func (s *Store) ListPosts(tag string, cutoff time.Time) ([]content.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE draft = 0 AND pub_datetime <= ?`
	args := []any{cutoff.UTC().Format(time.RFC3339)}
	if tag != "" {
		query += ` AND instr(tags, ',' || ? || ',') > 0`
		args = append(args, strings.ToLower(strings.TrimSpace(tag)))
	}
	query += ` ORDER BY pub_datetime DESC, slug ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// ListFeatured returns the visible posts flagged featured, newest first.
func (s *Store) ListFeatured(cutoff time.Time) ([]content.Post, error) {
	rows, err := s.db.Query(`SELECT `+postColumns+` FROM posts
		WHERE draft = 0 AND pub_datetime <= ? AND featured = 1
		ORDER BY pub_datetime DESC, slug ASC`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// ListAllPosts returns every indexed post, drafts and scheduled included,
// newest first (admin view).
func (s *Store) ListAllPosts() ([]content.Post, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + ` FROM posts
		ORDER BY pub_datetime DESC, slug ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// GetPost returns a single post visible at cutoff.
func (s *Store) GetPost(slug string, cutoff time.Time) (content.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts
		WHERE slug = ? AND draft = 0 AND pub_datetime <= ?`,
		slug, cutoff.UTC().Format(time.RFC3339))
	return scanPost(row)
}

// GetPostAny returns a post by slug regardless of visibility (for admin).
func (s *Store) GetPostAny(slug string) (content.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
	return scanPost(row)
}

// DeletePost removes a post from the index by slug.
func (s *Store) DeletePost(slug string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE slug = ?`, slug)
	return err
}

// ListTags returns the sorted, deduplicated tags of the posts visible at
// cutoff.
func (s *Store) ListTags(cutoff time.Time) ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts WHERE draft = 0 AND pub_datetime <= ?`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// SaveImage upserts image metadata.
func (s *Store) SaveImage(img Image) error {
	_, err := s.db.Exec(upsertImage,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

const upsertImage = `INSERT OR REPLACE INTO images
	(filename, original_name, width, height, size, uploaded_at)
	VALUES (?, ?, ?, ?, ?, ?)`

// ListImages returns uploaded images, newest first.
func (s *Store) ListImages() ([]Image, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at
		FROM images ORDER BY uploaded_at DESC, filename ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes image metadata by filename.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}

// RecordBuild appends a static export run to the build history.
func (s *Store) RecordBuild(rec BuildRecord) error {
	_, err := s.db.Exec(`INSERT INTO builds (id, started_at, duration_ms, pages, posts, outcome)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt, rec.DurationMS, rec.Pages, rec.Posts, rec.Outcome)
	return err
}

// ListBuilds returns the most recent build records, newest first.
func (s *Store) ListBuilds(limit int) ([]BuildRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT id, started_at, duration_ms, pages, posts, outcome
		FROM builds ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var builds []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.DurationMS, &rec.Pages, &rec.Posts, &rec.Outcome); err != nil {
			return nil, err
		}
		builds = append(builds, rec)
	}
	return builds, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (content.Post, error) {
	var (
		p        content.Post
		pub      string
		mod      sql.NullString
		featured int
		draft    int
		tags     string
		minutes  int
	)
	err := row.Scan(
		&p.Meta.Slug, &p.Meta.Author, &p.Meta.Title, &p.Meta.Description,
		&pub, &mod, &featured, &draft, &p.Meta.OGImage, &p.Meta.CanonicalURL,
		&tags, &p.Body, &p.HTML, &p.SourcePath, &p.WordCount, &minutes,
	)
	if err != nil {
		return content.Post{}, err
	}

	p.Meta.PubDatetime, err = time.Parse(time.RFC3339, pub)
	if err != nil {
		return content.Post{}, fmt.Errorf("geopress: post %s: pub_datetime: %w", p.Meta.Slug, err)
	}
	if mod.Valid {
		t, err := time.Parse(time.RFC3339, mod.String)
		if err != nil {
			return content.Post{}, fmt.Errorf("geopress: post %s: mod_datetime: %w", p.Meta.Slug, err)
		}
		p.Meta.ModDatetime = &t
	}
	p.Meta.Featured = featured == 1
	p.Meta.Draft = draft == 1
	p.Meta.Tags = ParseTags(tags)
	p.ReadingTime = time.Duration(minutes) * time.Minute
	return p, nil
}

func scanPosts(rows *sql.Rows) ([]content.Post, error) {
	var posts []content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// tagIndexValue renders tags as ",a,b," so a single instr match finds exact
// tags without a join table.
func tagIndexValue(tags []string) string {
	if len(tags) == 0 {
		tags = []string{frontmatter.DefaultTag}
	}
	normalized := make([]string, len(tags))
	for i, t := range tags {
		normalized[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return "," + strings.Join(normalized, ",") + ","
}

// ParseTags splits a comma-delimited tag index value (e.g. ",geodesy,cesium,")
// into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
