// Package langcat holds the static catalogue of languages the assistant
// supports and lookup helpers over it.
//
// Lookup by code is exact. Lookup by display name is fuzzy: spoken language
// selection ("switch me to Urdu") arrives via transcription and rarely matches
// the catalogue spelling exactly, so [FindByName] ranks entries by Jaro-Winkler
// similarity against both the English and native names.
package langcat

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// minNameScore is the minimum Jaro-Winkler similarity for FindByName to accept
// a candidate. Below this the query is considered unrecognised.
const minNameScore = 0.80

// Language is one supported language.
type Language struct {
	// Code is the BCP-47 primary language subtag (e.g., "en").
	Code string

	// Name is the English display name.
	Name string

	// NativeName is the language's own name for itself.
	NativeName string
}

// catalogue is the fixed set of supported languages.
var catalogue = []Language{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "ar", Name: "Arabic", NativeName: "العربية"},
	{Code: "ur", Name: "Urdu", NativeName: "اردو"},
}

// All returns a copy of the full catalogue in stable order.
func All() []Language {
	out := make([]Language, len(catalogue))
	copy(out, catalogue)
	return out
}

// Supported reports whether code is in the catalogue. Matching is
// case-insensitive on the primary subtag ("EN" and "en-US" both match "en").
func Supported(code string) bool {
	_, ok := Find(code)
	return ok
}

// Find returns the catalogue entry for code, matching the primary subtag
// case-insensitively.
func Find(code string) (Language, bool) {
	subtag := strings.ToLower(code)
	if i := strings.IndexByte(subtag, '-'); i >= 0 {
		subtag = subtag[:i]
	}
	for _, l := range catalogue {
		if l.Code == subtag {
			return l, true
		}
	}
	return Language{}, false
}

// FindByName resolves a human display name to a catalogue entry using
// Jaro-Winkler similarity against both Name and NativeName. Returns false when
// no entry scores at least 0.80; close misses are preferred over wrong
// guesses since the result drives a language switch.
func FindByName(name string) (Language, bool) {
	query := strings.TrimSpace(strings.ToLower(name))
	if query == "" {
		return Language{}, false
	}

	var (
		best      Language
		bestScore float64
	)
	for _, l := range catalogue {
		score := matchr.JaroWinkler(query, strings.ToLower(l.Name), false)
		if s := matchr.JaroWinkler(query, strings.ToLower(l.NativeName), false); s > score {
			score = s
		}
		if score > bestScore {
			best = l
			bestScore = score
		}
	}
	if bestScore < minNameScore {
		return Language{}, false
	}
	return best, true
}
