package orm

import "strings"

// irregulars maps English nouns whose plural does not follow suffix rules.
// Lookup happens after lowercasing, so model names like "Person" hit the
// "person" entry.
var irregulars = map[string]string{
	"person": "people",
	"child":  "children",
	"man":    "men",
	"woman":  "women",
	"mouse":  "mice",
	"goose":  "geese",
	"foot":   "feet",
	"tooth":  "teeth",
	"datum":  "data",
	"index":  "indices",
}

// Pluralize derives the plural table-name form of a lowercased noun.
// Rules are applied in order:
//
//	irregular map hit        → mapped form
//	-s -ss -sh -ch -x -z     → +es      (bus → buses)
//	consonant + y            → -y +ies  (city → cities)
//	-f / -fe                 → -ves     (leaf → leaves, knife → knives)
//	consonant + o            → +es      (hero → heroes)
//	otherwise                → +s       (cat → cats)
//
// Pure and deterministic; runs once per model type.
func Pluralize(word string) string {
	w := strings.ToLower(word)
	if w == "" {
		return w
	}

	if plural, ok := irregulars[w]; ok {
		return plural
	}

	switch {
	case strings.HasSuffix(w, "ss"),
		strings.HasSuffix(w, "sh"),
		strings.HasSuffix(w, "ch"),
		strings.HasSuffix(w, "s"),
		strings.HasSuffix(w, "x"),
		strings.HasSuffix(w, "z"):
		return w + "es"

	case strings.HasSuffix(w, "y") && len(w) > 1 && !isVowel(w[len(w)-2]):
		return w[:len(w)-1] + "ies"

	case strings.HasSuffix(w, "fe"):
		return w[:len(w)-2] + "ves"

	case strings.HasSuffix(w, "f"):
		return w[:len(w)-1] + "ves"

	case strings.HasSuffix(w, "o") && len(w) > 1 && !isVowel(w[len(w)-2]):
		return w + "es"

	default:
		return w + "s"
	}
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
