package blogcatalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func doc(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

// testContent is a small multi-locale document tree shared by the tests.
func testContent() fstest.MapFS {
	return fstest.MapFS{
		"seo-basics/index.md": doc(`---
title: SEO Basics
description: Getting started with search
date: 2024-01-10
tags: [seo]
slug:
  es: conceptos-seo
locales:
  es:
    title: Conceptos de SEO
    body: Cuerpo en español
---
English body
`),
		"ai-marketing/index.md": doc(`---
title: AI in Marketing
description: Models everywhere
date: 2024-03-01
tags: [ai]
---
AI body
`),
		"ai-seo/index.md": doc(`---
title: AI meets SEO
description: Where both worlds collide
date: 2024-01-20
tags: [seo, ai]
title_es: IA y SEO
slug_es: ia-y-seo
content_es: Texto
---
Both
`),
		"ai-seo/cover.png":      doc("not really a png"),
		"broken/index.md":       doc("---\ntitle: [unclosed\n---\nbody\n"),
		"no-front/index.md":     doc("# Just markdown\n"),
		"empty-dir/notes.txt":   doc("nothing"),
		"draft-post/index.md":   doc("---\ntitle: WIP\ndate: 2024-02-02\ndraft: true\n---\n"),
		"undated/index.md":      doc("---\ntitle: Someday\ndescription: no date yet\ndate: soon\ntags: seo\n---\n"),
		"bad-fields/index.md":   doc("---\ntitle: Ok\ntags: {a: b}\n---\n"),
		".hidden/index.md":      doc("---\ntitle: Hidden\n---\n"),
		"_shared/index.md":      doc("---\ntitle: Shared partial\n---\n"),
		"README.md":             doc("not a post"),
	}
}

func TestLoadCatalog_DefaultLocale(t *testing.T) {
	s := NewContentStore(testContent())
	cat, err := s.LoadCatalog("en")
	require.NoError(t, err)
	require.Equal(t, "en", cat.Locale)

	slugs := make([]string, 0, len(cat.Posts))
	for _, p := range cat.Posts {
		slugs = append(slugs, p.Slug)
	}
	require.Equal(t, []string{"ai-marketing", "ai-seo", "seo-basics", "undated"}, slugs)

	p, err := FindBySlug(cat.Posts, "seo-basics")
	require.NoError(t, err)
	require.Equal(t, "SEO Basics", p.Title)
	require.Equal(t, "English body\n", p.Body)
	require.Equal(t, "2024-01-10", p.Date)
	require.True(t, p.HasDate())
	require.False(t, p.Localized)
	require.Equal(t, map[string]string{"es": "conceptos-seo"}, p.LocaleSlugs)

	undated, err := FindBySlug(cat.Posts, "undated")
	require.NoError(t, err)
	require.False(t, undated.HasDate())
	require.Equal(t, "soon", undated.Date)
	require.Equal(t, []string{"seo"}, undated.Tags)

	withCover, err := FindBySlug(cat.Posts, "ai-seo")
	require.NoError(t, err)
	require.Equal(t, "cover.png", withCover.Cover)
}

func TestLoadCatalog_LocaleOverridesAndFallback(t *testing.T) {
	s := NewContentStore(testContent())
	cat, err := s.LoadCatalog("es")
	require.NoError(t, err)

	p, err := FindBySlug(cat.Posts, "conceptos-seo")
	require.NoError(t, err)
	require.Equal(t, "seo-basics", p.DefaultSlug)
	require.Equal(t, "Conceptos de SEO", p.Title)
	require.Equal(t, "Getting started with search", p.Description, "falls back to default description")
	require.Equal(t, "Cuerpo en español", p.Body)
	require.True(t, p.Localized)

	flat, err := FindBySlug(cat.Posts, "ia-y-seo")
	require.NoError(t, err)
	require.Equal(t, "IA y SEO", flat.Title)
	require.Equal(t, "Texto", flat.Body)

	fallback, err := FindBySlug(cat.Posts, "ai-marketing")
	require.NoError(t, err)
	require.Equal(t, "AI in Marketing", fallback.Title)
	require.False(t, fallback.Localized)
}

func TestLoadCatalog_ReportsSkippedEntries(t *testing.T) {
	s := NewContentStore(testContent())
	cat, err := s.LoadCatalog("en")
	require.NoError(t, err)

	cases := map[string]SkipReason{
		"broken":     SkipMalformedFrontMatter,
		"no-front":   SkipMalformedFrontMatter,
		"empty-dir":  SkipMissingDocument,
		"draft-post": SkipDraft,
		"bad-fields": SkipInvalidFields,
	}
	for slug, want := range cases {
		got, ok := cat.Report.Lookup(slug)
		require.True(t, ok, slug)
		require.Equal(t, want, got.Reason, slug)
	}
	require.Len(t, cat.Report.Skipped, len(cases))
	require.Len(t, cat.Report.SkippedFor(SkipMalformedFrontMatter), 2)
	require.Len(t, cat.Report.Loaded, 4)

	_, hidden := cat.Report.Lookup(".hidden")
	require.False(t, hidden)
	_, shared := cat.Report.Lookup("_shared")
	require.False(t, shared, "underscore directories are ignored, not skipped")
	require.NotContains(t, cat.Report.Loaded, "_shared")
}

func TestLoadCatalog_IncludeDrafts(t *testing.T) {
	s := NewContentStore(testContent(), WithDrafts(true))
	cat, err := s.LoadCatalog("en")
	require.NoError(t, err)
	_, err = FindBySlug(cat.Posts, "draft-post")
	require.NoError(t, err)
}

func TestLoadCatalog_Idempotent(t *testing.T) {
	s := NewContentStore(testContent())
	first, err := s.LoadCatalog("es")
	require.NoError(t, err)
	second, err := s.LoadCatalog("es")
	require.NoError(t, err)
	require.Equal(t, first.Posts, second.Posts)
	require.Equal(t, first.Report.Loaded, second.Report.Loaded)
}

func TestLoadCatalog_StringSlugOverridesDefaultLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"dir-name/index.md": doc("---\ntitle: T\nslug: pretty-name\n---\n"),
	}
	s := NewContentStore(fsys, WithDefaultLocale("en"))
	en, err := s.LoadCatalog("en")
	require.NoError(t, err)
	require.Equal(t, "pretty-name", en.Posts[0].Slug)

	de, err := s.LoadCatalog("de")
	require.NoError(t, err)
	require.Equal(t, "dir-name", de.Posts[0].Slug)
}

func TestLoadAll_LoadsEveryLocale(t *testing.T) {
	s := NewContentStore(testContent())
	all, err := s.LoadAll(context.Background(), []string{"en", "es", "de"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, loc := range []string{"en", "es", "de"} {
		require.Equal(t, loc, all[loc].Locale)
		require.Len(t, all[loc].Posts, 4)
	}
}

func TestLoadAll_CanceledContext(t *testing.T) {
	s := NewContentStore(testContent())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.LoadAll(ctx, []string{"en"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestOpenContentStore_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "hello"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello", "index.md"),
		[]byte("---\r\ntitle: Hello\r\ndate: 2024-05-01\r\n---\r\nBody\r\n"), 0o644))

	s, err := OpenContentStore(dir)
	require.NoError(t, err)
	cat, err := s.LoadCatalog("en")
	require.NoError(t, err)
	require.Len(t, cat.Posts, 1)
	require.Equal(t, "Hello", cat.Posts[0].Title)

	_, err = OpenContentStore(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestOpenCover(t *testing.T) {
	s := NewContentStore(testContent())
	f, err := s.OpenCover("ai-seo", "cover.png")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "not really a png", string(data))

	_, err = s.OpenCover("../ai-seo", "cover.png")
	require.Error(t, err)
	_, err = s.OpenCover("seo-basics", "")
	require.Error(t, err)
}
