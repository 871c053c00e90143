package collect

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// newCollator builds a locale-aware collator with numeric ordering, so
// "2 Reports" sorts before "10 Reports". An unparseable locale falls
// back to the root collation.
func newCollator(locale string) *collate.Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return collate.New(tag, collate.Numeric)
}

// leadingOrder matches the sort-prefix conventions used in input trees:
// leading digits, whitespace, dots, dashes and underscores.
var leadingOrder = regexp.MustCompile(`^[\d\s\-_.]+`)

// sanitizeName turns a directory or file stem into a display title:
// the leading ordering prefix is stripped and underscores become spaces.
// A name consisting only of prefix characters is kept verbatim rather
// than reduced to nothing.
func sanitizeName(stem string) string {
	s := leadingOrder.ReplaceAllString(stem, "")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return strings.TrimSpace(stem)
	}
	return s
}

// fileStem returns the file name without its extension.
func fileStem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// isCoverName reports whether a root-level file name designates the
// cover document, by case-insensitive keyword match on the stem.
func (c *Collector) isCoverName(name string) bool {
	stem := strings.ToLower(fileStem(name))
	for _, kw := range c.coverKeywords {
		if kw != "" && strings.Contains(stem, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
