package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/matzehuels/photowall/pkg/gallery"
)

// Match returns the ids of items whose name fuzzy-matches pattern, best
// match first. An empty pattern matches nothing.
func Match(items []gallery.Item, pattern string) []string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = displayName(it)
	}
	matches := fuzzy.Find(pattern, names)
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = items[m.Index].ID
	}
	return ids
}

// Visibility builds a predicate for gallery.Engine.SetVisibility. With an
// empty pattern every item is visible.
func Visibility(items []gallery.Item, pattern string) func(gallery.Item) bool {
	if strings.TrimSpace(pattern) == "" {
		return func(gallery.Item) bool { return true }
	}
	keep := make(map[string]struct{})
	for _, id := range Match(items, pattern) {
		keep[id] = struct{}{}
	}
	return func(it gallery.Item) bool {
		_, ok := keep[it.ID]
		return ok
	}
}

func displayName(it gallery.Item) string {
	if it.Name != "" {
		return it.Name
	}
	return it.ID
}
