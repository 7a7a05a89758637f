package weather

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxLocationLen caps what is sent to the provider as a place name.
const maxLocationLen = 64

var (
	// preposition finds candidate starts of a place name.
	preposition = regexp.MustCompile(`(?i)\b(?:in|at|for)\s+`)

	// phraseEnd stops a place name at sentence punctuation.
	phraseEnd = regexp.MustCompile(`[?.!,;:()"]`)

	// trailingTime strips time qualifiers such as "today" or "this weekend".
	trailingTime = regexp.MustCompile(`(?i)\s+(?:right now|today|tomorrow|tonight|now|currently|this (?:morning|afternoon|evening|week|weekend))$`)

	leadingArticle = regexp.MustCompile(`(?i)^the\s+`)

	// validPlace accepts letters (any script), spaces, hyphens, apostrophes
	// and dots.
	validPlace = regexp.MustCompile(`^[\p{L}][\p{L}\p{M} '.\-]*$`)

	// activity matches a lowercase gerund such as "running".
	activity = regexp.MustCompile(`^[a-z]+ing$`)
)

// timePhrases are phrases that follow a preposition but name a time rather
// than a place, as in "at the moment" or "for the weekend".
var timePhrases = map[string]bool{
	"moment":    true,
	"weekend":   true,
	"week":      true,
	"morning":   true,
	"afternoon": true,
	"evening":   true,
	"night":     true,
	"day":       true,
	"today":     true,
	"tomorrow":  true,
	"tonight":   true,
	"now":       true,
	"present":   true,
	"next week": true,
	"next days": true,
}

// nonPlaceWords cannot start a place name: pronouns, possessives, deictic
// words and temperature units, as in "for me", "at my place", "in here" or
// "in celsius".
var nonPlaceWords = map[string]bool{
	"i": true, "me": true, "you": true, "us": true, "we": true, "them": true,
	"him": true, "her": true, "it": true, "this": true, "that": true,
	"my": true, "your": true, "our": true, "their": true, "his": true, "its": true,
	"here": true, "there": true, "home": true, "general": true, "detail": true,
	"celsius": true, "fahrenheit": true, "kelvin": true, "degrees": true,
	"metric": true, "imperial": true, "c": true, "f": true,
}

// ExtractLocation returns the place named in a weather query. It reads the
// text after the last "in", "at" or "for" up to punctuation, trims time
// qualifiers and a leading "the", and title-cases the result. Earlier
// prepositions are tried when the last one introduces something other than a
// place (a time, a pronoun, a unit or an activity), so "weather in Paris for
// the weekend" and "temperature in Paris in celsius" both yield "Paris".
func ExtractLocation(query string) (string, bool) {
	matches := preposition.FindAllStringIndex(query, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		rest := query[matches[i][1]:]
		if loc := phraseEnd.FindStringIndex(rest); loc != nil {
			rest = rest[:loc[0]]
		}
		// A later preposition belongs to a different phrase.
		if i+1 < len(matches) {
			if end := matches[i+1][0] - matches[i][1]; end < len(rest) {
				rest = rest[:end]
			}
		}
		afterFor := strings.EqualFold(strings.TrimSpace(query[matches[i][0]:matches[i][1]]), "for")
		if place, ok := cleanPlace(rest, afterFor); ok {
			return place, true
		}
	}
	return "", false
}

// cleanPlace normalises a candidate phrase. afterFor marks phrases introduced
// by "for", where a lone gerund names an activity ("good weather for running").
func cleanPlace(s string, afterFor bool) (string, bool) {
	s = strings.Join(strings.Fields(s), " ")
	for {
		trimmed := trailingTime.ReplaceAllString(s, "")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	s = leadingArticle.ReplaceAllString(s, "")

	if s == "" || len(s) > maxLocationLen || timePhrases[strings.ToLower(s)] {
		return "", false
	}
	if !validPlace.MatchString(s) {
		return "", false
	}
	words := strings.Fields(s)
	// Lowercase "us" is a pronoun; "US" is a country.
	if first := words[0]; nonPlaceWords[strings.ToLower(first)] && !isAcronym(first) {
		return "", false
	}
	if afterFor && len(words) == 1 && activity.MatchString(s) {
		return "", false
	}
	return titleCase(words), true
}

// titleCase capitalises each word but keeps acronyms such as "US" or "NYC".
// A Caser holds state, so one is built per call.
func titleCase(words []string) string {
	caser := cases.Title(language.Und)
	out := make([]string, len(words))
	for i, w := range words {
		if isAcronym(w) {
			out[i] = w
			continue
		}
		out[i] = caser.String(w)
	}
	return strings.Join(out, " ")
}

func isAcronym(w string) bool {
	letters := 0
	for _, r := range w {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}
