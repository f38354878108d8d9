package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from name. Accented letters are folded
// to their base letter.
//
//   - "Diamond Solitaire Ring" -> "diamond-solitaire-ring"
//   - "Crème Brûlée Pendant" -> "creme-brulee-pendant"
//   - "14k  Gold & Pearl!" -> "14k-gold-pearl"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
