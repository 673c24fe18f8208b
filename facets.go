package blogcatalog

import (
	"sort"
)

// AllTags returns every distinct tag in posts, sorted.
func AllTags(posts []PostRecord) []string {
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			set[t] = struct{}{}
		}
	}
	return sortedKeys(set, false)
}

// ArchiveDates returns the distinct YYYY-MM buckets of dated posts, newest first.
func ArchiveDates(posts []PostRecord) []string {
	set := make(map[string]struct{})
	for _, p := range posts {
		if a := p.Archive(); a != "" {
			set[a] = struct{}{}
		}
	}
	return sortedKeys(set, true)
}

// TagCounts returns how many posts carry each tag.
func TagCounts(posts []PostRecord) map[string]int {
	counts := make(map[string]int)
	for _, p := range posts {
		for _, t := range p.Tags {
			counts[t]++
		}
	}
	return counts
}

// FindDuplicateSlugs maps every effective slug used by more than one post
// to the directories that resolve to it. Query results do not define which
// duplicate wins, so builds should run this first.
func FindDuplicateSlugs(posts []PostRecord) map[string][]string {
	bySlug := make(map[string][]string)
	for _, p := range posts {
		bySlug[p.Slug] = append(bySlug[p.Slug], p.DefaultSlug)
	}
	dups := make(map[string][]string)
	for slug, dirs := range bySlug {
		if len(dirs) > 1 {
			sort.Strings(dirs)
			dups[slug] = dirs
		}
	}
	return dups
}

func sortedKeys(set map[string]struct{}, desc bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	if desc {
		sort.Sort(sort.Reverse(sort.StringSlice(out)))
	} else {
		sort.Strings(out)
	}
	return out
}
