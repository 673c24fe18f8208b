package blogcatalog

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/blogcatalog/frontmatter"
	"github.com/eringen/blogcatalog/logfields"
	"github.com/eringen/blogcatalog/metrics"
)

// SkipReason classifies why a content entry was left out of a catalog.
type SkipReason string

const (
	SkipMissingDocument      SkipReason = "missing_document"
	SkipUnreadable           SkipReason = "unreadable"
	SkipMalformedFrontMatter SkipReason = "malformed_front_matter"
	SkipInvalidFields        SkipReason = "invalid_fields"
	SkipDraft                SkipReason = "draft"
)

// SkippedEntry records one entry that did not make it into the catalog.
type SkippedEntry struct {
	Slug   string
	Reason SkipReason
	Err    error
}

// LoadReport lists the outcome of every entry seen during a load.
type LoadReport struct {
	Loaded  []string
	Skipped []SkippedEntry
}

// SkippedFor returns the skipped entries with the given reason.
func (r LoadReport) SkippedFor(reason SkipReason) []SkippedEntry {
	var out []SkippedEntry
	for _, s := range r.Skipped {
		if s.Reason == reason {
			out = append(out, s)
		}
	}
	return out
}

// Lookup returns the skip record for slug, if the entry was skipped.
func (r LoadReport) Lookup(slug string) (SkippedEntry, bool) {
	for _, e := range r.Skipped {
		if e.Slug == slug {
			return e, true
		}
	}
	return SkippedEntry{}, false
}

// CatalogLoader materializes the catalog for one locale.
type CatalogLoader interface {
	LoadCatalog(locale string) (*Catalog, error)
}

// documentNames are tried in order inside each slug directory.
var documentNames = []string{"index.md", "index.markdown"}

var coverNames = []string{"cover.jpg", "cover.jpeg", "cover.png", "cover.gif", "cover.webp"}

// ContentStore reads posts from a directory-per-slug document tree:
//
//	<root>/<slug>/index.md
//	<root>/<slug>/cover.jpg   (optional)
type ContentStore struct {
	fsys          fs.FS
	defaultLocale string
	includeDrafts bool
	recorder      metrics.Recorder
	logger        *slog.Logger
}

// StoreOption configures a ContentStore.
type StoreOption func(*ContentStore)

// WithDefaultLocale sets the locale whose slug is the directory name.
func WithDefaultLocale(locale string) StoreOption {
	return func(s *ContentStore) { s.defaultLocale = locale }
}

// WithDrafts includes posts marked `draft: true`.
func WithDrafts(include bool) StoreOption {
	return func(s *ContentStore) { s.includeDrafts = include }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) StoreOption {
	return func(s *ContentStore) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger used for skip warnings.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *ContentStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewContentStore creates a store over fsys, whose root holds one
// directory per post.
func NewContentStore(fsys fs.FS, opts ...StoreOption) *ContentStore {
	s := &ContentStore{
		fsys:          fsys,
		defaultLocale: "en",
		recorder:      metrics.NoopRecorder{},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logfields.Component("content-store"))
	return s
}

// OpenContentStore creates a store over the directory dir.
func OpenContentStore(dir string, opts ...StoreOption) (*ContentStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open content dir: %s is not a directory", dir)
	}
	return NewContentStore(os.DirFS(dir), opts...), nil
}

// DefaultLocale returns the locale whose slugs are the directory names.
func (s *ContentStore) DefaultLocale() string {
	return s.defaultLocale
}

// LoadCatalog reads every entry and resolves it for locale. Broken entries
// are skipped and listed in the catalog's report; only an unreadable root
// is an error. Posts come back in directory order.
func (s *ContentStore) LoadCatalog(locale string) (*Catalog, error) {
	start := time.Now()
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read content root: %w", err)
	}

	cat := &Catalog{Locale: locale}
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || skipDirName(name) {
			continue
		}
		post, reason, err := s.loadEntry(name, locale)
		if reason != "" {
			cat.Report.Skipped = append(cat.Report.Skipped, SkippedEntry{Slug: name, Reason: reason, Err: err})
			s.recorder.IncSkippedEntry(locale, string(reason))
			if reason != SkipDraft {
				s.logger.Warn("Skipping content entry",
					logfields.Slug(name),
					logfields.Locale(locale),
					logfields.Reason(string(reason)),
					logfields.Error(err))
			}
			continue
		}
		cat.Posts = append(cat.Posts, post)
		cat.Report.Loaded = append(cat.Report.Loaded, name)
	}

	elapsed := time.Since(start)
	s.recorder.ObserveCatalogLoad(locale, elapsed)
	s.recorder.AddCatalogEntries(locale, len(cat.Report.Loaded), len(cat.Report.Skipped))
	s.logger.Debug("Catalog loaded",
		logfields.Locale(locale),
		logfields.Count(len(cat.Posts)),
		slog.Int("skipped", len(cat.Report.Skipped)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return cat, nil
}

func (s *ContentStore) loadEntry(slug, locale string) (PostRecord, SkipReason, error) {
	files, err := fs.ReadDir(s.fsys, slug)
	if err != nil {
		return PostRecord{}, SkipUnreadable, err
	}
	present := make(map[string]bool, len(files))
	for _, f := range files {
		if !f.IsDir() {
			present[strings.ToLower(f.Name())] = true
		}
	}

	docName := ""
	for _, n := range documentNames {
		if present[n] {
			docName = n
			break
		}
	}
	if docName == "" {
		return PostRecord{}, SkipMissingDocument, fs.ErrNotExist
	}
	cover := ""
	for _, n := range coverNames {
		if present[n] {
			cover = n
			break
		}
	}

	raw, err := s.readDocument(slug, files, docName)
	if err != nil {
		return PostRecord{}, SkipUnreadable, err
	}
	fields, body, err := frontmatter.Parse(raw)
	if err != nil {
		return PostRecord{}, SkipMalformedFrontMatter, err
	}
	doc, err := decodeDocument(fields, body, s.defaultLocale)
	if err != nil {
		return PostRecord{}, SkipInvalidFields, err
	}
	if doc.Draft && !s.includeDrafts {
		return PostRecord{}, SkipDraft, nil
	}
	return doc.materialize(slug, locale, cover), "", nil
}

// readDocument opens the document whose lowercased name is docName.
func (s *ContentStore) readDocument(slug string, files []fs.DirEntry, docName string) ([]byte, error) {
	for _, f := range files {
		if strings.ToLower(f.Name()) == docName {
			return fs.ReadFile(s.fsys, path.Join(slug, f.Name()))
		}
	}
	return nil, fs.ErrNotExist
}

// OpenCover opens the cover image of the post whose directory is defaultSlug.
func (s *ContentStore) OpenCover(defaultSlug, cover string) (fs.File, error) {
	if cover == "" || strings.ContainsAny(defaultSlug, `/\`) || strings.HasPrefix(defaultSlug, ".") {
		return nil, fs.ErrNotExist
	}
	files, err := fs.ReadDir(s.fsys, defaultSlug)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if strings.ToLower(f.Name()) == cover {
			return s.fsys.Open(path.Join(defaultSlug, f.Name()))
		}
	}
	return nil, fs.ErrNotExist
}

// LoadAll loads every locale in parallel. Loads share nothing but the
// read-only document tree.
func (s *ContentStore) LoadAll(ctx context.Context, locales []string) (map[string]*Catalog, error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]*Catalog, len(locales))
	for i, locale := range locales {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cat, err := s.LoadCatalog(locale)
			if err != nil {
				return fmt.Errorf("load catalog %s: %w", locale, err)
			}
			results[i] = cat
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]*Catalog, len(locales))
	for i, locale := range locales {
		out[locale] = results[i]
	}
	return out, nil
}

var _ CatalogLoader = (*ContentStore)(nil)
