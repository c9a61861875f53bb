package catalog

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Index maps each entry's key to the entry. It is immutable once built and
// safe for concurrent readers.
type Index struct {
	entries []Entry
	byKey   map[string]int
}

// NewIndex keys every entry by its id, else its topic, else "entry-<n>"
// where n is the 1-based position in entries. Keys must be unique.
func NewIndex(entries []Entry) (*Index, error) {
	idx := &Index{
		entries: make([]Entry, 0, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		key := entryKey(e, i+1)
		if j, ok := idx.byKey[key]; ok {
			return nil, &DuplicateKeyError{Key: key, First: idx.entries[j].Block, Second: e.Block}
		}
		e.Key = key
		e.Extra = maps.Clone(e.Extra)
		idx.byKey[key] = len(idx.entries)
		idx.entries = append(idx.entries, e)
	}
	return idx, nil
}

func entryKey(e Entry, pos int) string {
	if id := strings.TrimSpace(e.ID); id != "" {
		return id
	}
	if topic := strings.TrimSpace(e.Topic); topic != "" {
		return topic
	}
	return fmt.Sprintf("entry-%d", pos)
}

func (idx *Index) Lookup(key string) (Entry, error) {
	key = strings.TrimSpace(key)
	if i, ok := idx.byKey[key]; ok {
		return idx.entries[i].clone(), nil
	}
	return Entry{}, &NotFoundError{Key: key}
}

// All yields entries in the order they were indexed.
func (idx *Index) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range idx.entries {
			if !yield(e.clone()) {
				return
			}
		}
	}
}

func (idx *Index) Size() int {
	return len(idx.entries)
}

// ByCategory returns entries whose category matches case-insensitively.
// An empty category matches everything.
func (idx *Index) ByCategory(category string) []Entry {
	all := strings.TrimSpace(category) == ""
	out := make([]Entry, 0)
	for _, e := range idx.entries {
		if all || foldEqual(e.Category, category) {
			out = append(out, e.clone())
		}
	}
	return out
}

// clone copies the Extra map so callers never share it with the index.
func (e Entry) clone() Entry {
	e.Extra = maps.Clone(e.Extra)
	return e
}

// Categories returns the distinct categories sorted case-insensitively. The
// first spelling seen wins.
func (idx *Index) Categories() []string {
	fold := cases.Fold()
	seen := make(map[string]string)
	for _, e := range idx.entries {
		k := fold.String(e.Category)
		if _, ok := seen[k]; !ok {
			seen[k] = e.Category
		}
	}
	keys := slices.Sorted(maps.Keys(seen))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, seen[k])
	}
	return out
}
