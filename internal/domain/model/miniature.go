package model

import (
	"sort"
	"strings"
	"time"
)

// Miniature is a single entry in the collection. Keywords hold the
// normalized comma-joined tag string; ImageData holds a self-contained
// data URI so a record never references external files.
type Miniature struct {
	ID        string
	Game      string
	Name      string
	Amount    int
	Painted   bool
	Keywords  string
	ImageData string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MiniatureUpdate is a partial update: nil fields are left untouched.
// An update with no fields set is still applied and bumps UpdatedAt.
type MiniatureUpdate struct {
	Game      *string
	Name      *string
	Amount    *int
	Painted   *bool
	Keywords  *string
	ImageData *string
}

// IsEmpty reports whether no field is set on the update.
func (u MiniatureUpdate) IsEmpty() bool {
	return u.Game == nil && u.Name == nil && u.Amount == nil &&
		u.Painted == nil && u.Keywords == nil && u.ImageData == nil
}

// Filter narrows a List call. All conditions are conjunctive: an exact
// game match, an exact painted match, and a comma-separated search string
// where every term must match at least one of keywords, game, or name.
type Filter struct {
	Game    *string
	Painted *bool
	Search  string
}

// SearchTerms splits the search string on commas into lower-cased,
// trimmed, non-empty terms.
func (f Filter) SearchTerms() []string {
	var terms []string
	for _, raw := range strings.Split(f.Search, ",") {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// NormalizeKeywords canonicalizes a free-form tag string: lower-cased,
// reduced to alphanumerics, spaces and hyphens, trimmed, deduplicated,
// and joined with ", ". The function is pure and idempotent; callers
// apply it before persistence.
func NormalizeKeywords(raw string) string {
	seen := make(map[string]bool)
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := normalizeTag(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return strings.Join(tags, ", ")
}

// SplitKeywords splits a keyword string into its trimmed, non-empty tags.
// It does not normalize; pass stored (already normalized) values.
func SplitKeywords(keywords string) []string {
	var tags []string
	for _, part := range strings.Split(keywords, ",") {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// UnionKeywords collects the distinct tags across many keyword strings,
// sorted ascending.
func UnionKeywords(keywordStrings []string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, ks := range keywordStrings {
		for _, tag := range SplitKeywords(ks) {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

func normalizeTag(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
