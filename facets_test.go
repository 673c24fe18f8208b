package blogcatalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllTags(t *testing.T) {
	require.Equal(t, []string{"ai", "seo"}, AllTags(scenarioCatalog()))
	require.Empty(t, AllTags(nil))
}

func TestArchiveDates_NewestFirstSkipsUndated(t *testing.T) {
	posts := append(scenarioCatalog(), post("u", "tbd"), post("d", "2023-12-31"))
	require.Equal(t, []string{"2024-03", "2024-01", "2023-12"}, ArchiveDates(posts))
}

func TestTagCounts(t *testing.T) {
	require.Equal(t, map[string]int{"seo": 2, "ai": 2}, TagCounts(scenarioCatalog()))
}

func TestFindDuplicateSlugs(t *testing.T) {
	posts := []PostRecord{
		{Slug: "hola", DefaultSlug: "zeta"},
		{Slug: "hola", DefaultSlug: "alpha"},
		{Slug: "unique", DefaultSlug: "unique"},
	}
	require.Equal(t, map[string][]string{"hola": {"alpha", "zeta"}}, FindDuplicateSlugs(posts))
	require.Empty(t, FindDuplicateSlugs(scenarioCatalog()))
}
