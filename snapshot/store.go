// Package snapshot persists materialized catalogs to SQLite so they can be
// served or inspected without re-reading the document tree.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/blogcatalog"
)

// Store wraps a SQLite database holding one catalog per locale.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// schemaVersion is stored in PRAGMA user_version. A snapshot is derived
// data, so an older layout is dropped and rebuilt on open.
const schemaVersion = 2

func (s *Store) ensureSchema() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version != schemaVersion {
		if _, err := s.db.Exec(`
DROP TABLE IF EXISTS posts;
DROP TABLE IF EXISTS skipped;
DROP TABLE IF EXISTS exports;
`); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    locale TEXT NOT NULL,
    default_slug TEXT NOT NULL,
    slug TEXT NOT NULL,
    position INTEGER NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    date TEXT NOT NULL,
    published_at TEXT NOT NULL,
    published_utc TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '[]',
    body TEXT NOT NULL,
    cover TEXT NOT NULL,
    localized INTEGER NOT NULL DEFAULT 0,
    locale_slugs TEXT NOT NULL DEFAULT '{}',
    PRIMARY KEY (locale, default_slug)
);
CREATE INDEX IF NOT EXISTS posts_locale_slug ON posts (locale, slug);
CREATE TABLE IF NOT EXISTS skipped (
    locale TEXT NOT NULL,
    slug TEXT NOT NULL,
    reason TEXT NOT NULL,
    detail TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS exports (
    locale TEXT PRIMARY KEY,
    exported_at TEXT NOT NULL
);
`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion))
	return err
}

// Save replaces the stored catalog for c.Locale in one transaction.
func (s *Store) Save(c *blogcatalog.Catalog) (err error) {
	if c == nil {
		return errors.New("snapshot: nil catalog")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, q := range []string{`DELETE FROM posts WHERE locale = ?`, `DELETE FROM skipped WHERE locale = ?`} {
		if _, err = tx.Exec(q, c.Locale); err != nil {
			return err
		}
	}
	// Store in date order so ListPosts can rely on position for ties.
	posts := append([]blogcatalog.PostRecord(nil), c.Posts...)
	blogcatalog.SortByDate(posts)
	for i, p := range posts {
		published, publishedUTC := "", ""
		if p.HasDate() {
			published = p.PublishedAt.Format(time.RFC3339Nano)
			publishedUTC = p.PublishedAt.UTC().Format(utcLayout)
		}
		localized := 0
		if p.Localized {
			localized = 1
		}
		var slugs, tags []byte
		if slugs, err = json.Marshal(p.LocaleSlugs); err != nil {
			return err
		}
		if tags, err = encodeTags(p.Tags); err != nil {
			return err
		}
		if _, err = tx.Exec(`INSERT INTO posts (locale, default_slug, slug, position, title, description, date, published_at, published_utc, tags, body, cover, localized, locale_slugs) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Locale, p.DefaultSlug, p.Slug, i, p.Title, p.Description, p.Date, published, publishedUTC, string(tags), p.Body, p.Cover, localized, string(slugs)); err != nil {
			return fmt.Errorf("insert %s/%s: %w", c.Locale, p.DefaultSlug, err)
		}
	}
	for _, sk := range c.Report.Skipped {
		detail := ""
		if sk.Err != nil {
			detail = sk.Err.Error()
		}
		if _, err = tx.Exec(`INSERT INTO skipped (locale, slug, reason, detail) VALUES (?, ?, ?, ?)`,
			c.Locale, sk.Slug, string(sk.Reason), detail); err != nil {
			return err
		}
	}
	if _, err = tx.Exec(`INSERT OR REPLACE INTO exports (locale, exported_at) VALUES (?, ?)`,
		c.Locale, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}

const postColumns = `default_slug, slug, title, description, date, published_at, tags, body, cover, localized, locale_slugs`

// ListPosts returns the posts stored for locale, newest first with undated
// posts last. If tag is non-empty, only posts carrying exactly that tag
// are returned.
func (s *Store) ListPosts(locale, tag string) ([]blogcatalog.PostRecord, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE locale = ?`
	args := []any{locale}
	if tag != "" {
		q += ` AND EXISTS (SELECT 1 FROM json_each(posts.tags) WHERE json_each.value = ?)`
		args = append(args, tag)
	}
	q += ` ORDER BY published_utc = '', published_utc DESC, position`
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []blogcatalog.PostRecord
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListTags returns a sorted, deduplicated slice of the tags used in locale.
func (s *Store) ListTags(locale string) ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts WHERE locale = ?`, locale)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		tags, err := decodeTags(raw)
		if err != nil {
			return nil, err
		}
		for _, t := range tags {
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

// GetPost returns the post with effective slug in locale.
func (s *Store) GetPost(locale, slug string) (blogcatalog.PostRecord, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE locale = ? AND slug = ? ORDER BY position LIMIT 1`, locale, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return blogcatalog.PostRecord{}, blogcatalog.ErrNotFound
	}
	return p, err
}

// Skipped returns the load report entries stored for locale.
func (s *Store) Skipped(locale string) ([]blogcatalog.SkippedEntry, error) {
	rows, err := s.db.Query(`SELECT slug, reason, detail FROM skipped WHERE locale = ? ORDER BY slug`, locale)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []blogcatalog.SkippedEntry
	for rows.Next() {
		var slug, reason, detail string
		if err := rows.Scan(&slug, &reason, &detail); err != nil {
			return nil, err
		}
		e := blogcatalog.SkippedEntry{Slug: slug, Reason: blogcatalog.SkipReason(reason)}
		if detail != "" {
			e.Err = errors.New(detail)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Locales lists the locales that have been exported, sorted.
func (s *Store) Locales() ([]string, error) {
	rows, err := s.db.Query(`SELECT locale FROM exports ORDER BY locale`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

// LoadCatalog rebuilds a catalog from the snapshot, so a Store can stand
// in for the document tree.
func (s *Store) LoadCatalog(locale string) (*blogcatalog.Catalog, error) {
	posts, err := s.ListPosts(locale, "")
	if err != nil {
		return nil, err
	}
	skipped, err := s.Skipped(locale)
	if err != nil {
		return nil, err
	}
	cat := &blogcatalog.Catalog{Locale: locale, Posts: posts}
	for _, p := range posts {
		cat.Report.Loaded = append(cat.Report.Loaded, p.DefaultSlug)
	}
	cat.Report.Skipped = skipped
	return cat, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(sc scanner) (blogcatalog.PostRecord, error) {
	var defaultSlug, slug, title, description, date, published, tags, body, cover, slugs string
	var localized int
	if err := sc.Scan(&defaultSlug, &slug, &title, &description, &date, &published, &tags, &body, &cover, &localized, &slugs); err != nil {
		return blogcatalog.PostRecord{}, err
	}
	p := blogcatalog.PostRecord{
		Slug:        slug,
		DefaultSlug: defaultSlug,
		Title:       title,
		Description: description,
		Date:        date,
		Body:        body,
		Cover:       cover,
		Localized:   localized == 1,
	}
	tagList, err := decodeTags(tags)
	if err != nil {
		return blogcatalog.PostRecord{}, fmt.Errorf("post %s: %w", slug, err)
	}
	p.Tags = tagList
	if slugs != "" && slugs != "null" && slugs != "{}" {
		if err := json.Unmarshal([]byte(slugs), &p.LocaleSlugs); err != nil {
			return blogcatalog.PostRecord{}, fmt.Errorf("post %s: bad locale_slugs: %w", slug, err)
		}
	}
	if published != "" {
		t, err := time.Parse(time.RFC3339Nano, published)
		if err != nil {
			return blogcatalog.PostRecord{}, fmt.Errorf("post %s: bad published_at %q: %w", slug, published, err)
		}
		p.PublishedAt = t
	}
	return p, nil
}

// utcLayout has a fixed width so published_utc sorts as text.
const utcLayout = "2006-01-02T15:04:05.000000000Z"

// encodeTags stores tags as a JSON array so tags may contain any character
// and a single tag can be matched with json_each.
func encodeTags(tags []string) ([]byte, error) {
	if len(tags) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(tags)
}

func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("bad tags %q: %w", raw, err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}
