package models

import (
	"regexp"
	"strings"
)

// whitespaceClass mirrors the ECMAScript \s class so slugs stay identical to
// the ones already stored by earlier tooling.
const whitespaceClass = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var (
	slugStrip      = regexp.MustCompile(`[^a-z0-9` + whitespaceClass + `-]`)
	slugWhitespace = regexp.MustCompile(`[` + whitespaceClass + `]+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// MaxSlugLength caps derived slugs.
const MaxSlugLength = 100

// Slugify derives the URL slug for an event name: lowercase, drop everything
// but [a-z0-9], whitespace and '-', turn whitespace runs into '-', collapse
// repeated hyphens, cut to 100 characters. No uniqueness suffix is added and
// leading or trailing hyphens are kept.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	if len(s) > MaxSlugLength {
		s = s[:MaxSlugLength]
	}
	return s
}
