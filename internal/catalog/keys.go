package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// Canonical field names. Anything else found in a record lands in Entry.Extra.
const (
	fieldID               = "id"
	fieldTopic            = "topic"
	fieldCategory         = "category"
	fieldSubcategory      = "subcategory"
	fieldBriefDescription = "brief_description"
	fieldDescription      = "description"
)

// Column names used by spreadsheet exports of the catalog.
var fieldAliases = map[string]string{
	"catalog_item_name":              fieldSubcategory,
	"catalog_item_short_description": fieldBriefDescription,
	"catalog_item_description":       fieldDescription,
	"short_description":              fieldBriefDescription,
}

// normalizeKey folds case and treats spaces, hyphens and underscores alike,
// so "Brief Description" and "BRIEF-DESCRIPTION" compare equal.
func normalizeKey(key string) string {
	folded := cases.Fold().String(strings.TrimSpace(key))
	var b strings.Builder
	b.Grow(len(folded))
	lastSep := false
	for _, r := range folded {
		if r == ' ' || r == '-' || r == '_' || r == '\t' {
			if !lastSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			lastSep = true
			continue
		}
		b.WriteRune(r)
		lastSep = false
	}
	return strings.TrimSuffix(b.String(), "_")
}

func canonicalField(key string) string {
	k := normalizeKey(key)
	if alias, ok := fieldAliases[k]; ok {
		return alias
	}
	return k
}

// foldCategory is the form categories are compared in, both in memory and in
// the category_fold column.
func foldCategory(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func foldEqual(a, b string) bool {
	return foldCategory(a) == foldCategory(b)
}
