package common

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Parameterize turns free text into a slug: diacritics are stripped, letters
// are lower-cased and every run of characters that are neither letters nor
// digits becomes a single hyphen. Leading and trailing hyphens are trimmed.
// Letters of any script are kept.
//
//	Parameterize("San Francisco, CA") == "san-francisco-ca"
//	Parameterize("São Paulo")         == "sao-paulo"
//	Parameterize("Москва")            == "москва"
func Parameterize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(stripped), "-")
	return strings.Trim(slug, "-")
}
