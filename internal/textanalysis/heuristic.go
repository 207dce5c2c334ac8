package textanalysis

import (
	"context"
	"strings"
	"unicode"
)

// knownPlaces is a small gazetteer used by the heuristic analyzer. It is not
// meant to be complete; unknown places are still picked up by the
// capitalized-word rule below.
var knownPlaces = []string{
	"new york", "san francisco", "los angeles", "united states",
	"united kingdom", "berlin", "london", "paris", "amsterdam", "munich",
	"moscow", "toronto", "singapore", "tokyo", "sydney", "bangalore",
	"germany", "france", "canada", "india", "usa", "uk", "europe",
}

// Heuristic is a deterministic, dependency-free Analyzer. It exists so the
// whole workflow can run and be tested without a model backend, and serves
// as the degradation target when no AI provider is configured.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Lemmatize lowercases and tokenizes the text and applies a few
// suffix-stripping rules. Both the surface token and its lemma are returned
// so membership checks work for either form.
func (h *Heuristic) Lemmatize(_ context.Context, text string) ([]string, error) {
	tokens := tokenize(strings.ToLower(text))

	seen := make(map[string]bool, len(tokens)*2)
	lemmas := make([]string, 0, len(tokens)*2)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		lemmas = append(lemmas, s)
	}

	for _, token := range tokens {
		add(token)
		add(lemma(token))
	}

	return lemmas, nil
}

// NamedEntities finds locations via the gazetteer and, failing that, via
// capitalized words following "in". Everything it returns is labelled as a
// place; no other entity classes are recognized.
func (h *Heuristic) NamedEntities(_ context.Context, text string) ([]Entity, error) {
	var entities []Entity

	matched := make(map[string]bool)
	for _, place := range knownPlaces {
		found := findPlace(text, place)
		if found == "" {
			continue
		}
		if matched[strings.ToLower(found)] {
			continue
		}
		matched[strings.ToLower(found)] = true
		entities = append(entities, Entity{Text: found, Label: LabelGPE})
	}

	for _, candidate := range capitalizedAfterIn(text) {
		if matched[strings.ToLower(candidate)] {
			continue
		}
		matched[strings.ToLower(candidate)] = true
		entities = append(entities, Entity{Text: candidate, Label: LabelLocation})
	}

	return entities, nil
}

func lemma(token string) string {
	switch {
	case strings.HasSuffix(token, "ies") && len(token) > 4:
		return token[:len(token)-3] + "y"
	case strings.HasSuffix(token, "s") &&
		!strings.HasSuffix(token, "ss") &&
		!strings.HasSuffix(token, "us") &&
		!strings.HasSuffix(token, "is") &&
		len(token) > 3:
		return token[:len(token)-1]
	default:
		return token
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '+' && r != '#'
	})
}

// findPlace looks for place (one or more space-separated words) in text,
// matching whole words case-insensitively, and returns the matching words as
// they appear in the text. Matching runs word by word rather than by byte
// offset so surrounding non-ASCII runes cannot skew the slice.
func findPlace(text, place string) string {
	words := strings.Fields(text)
	placeWords := strings.Fields(place)
	if len(placeWords) == 0 {
		return ""
	}

	for i := 0; i+len(placeWords) <= len(words); i++ {
		run := make([]string, 0, len(placeWords))
		for j, want := range placeWords {
			got := strings.TrimFunc(words[i+j], func(r rune) bool { return !isWordRune(r) })
			if !strings.EqualFold(got, want) {
				run = nil
				break
			}
			run = append(run, got)
		}
		if run != nil {
			return strings.Join(run, " ")
		}
	}

	return ""
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// capitalizedAfterIn collects runs of capitalized words that directly follow
// the word "in", e.g. "developer in New York" -> "New York".
func capitalizedAfterIn(text string) []string {
	words := strings.Fields(text)
	var found []string

	for i, word := range words {
		if !strings.EqualFold(word, "in") || i+1 >= len(words) {
			continue
		}

		var run []string
		for _, next := range words[i+1:] {
			trimmed := strings.TrimFunc(next, func(r rune) bool { return !isWordRune(r) })
			if trimmed == "" || !unicode.IsUpper(rune(trimmed[0])) {
				break
			}
			run = append(run, trimmed)
		}
		if len(run) > 0 {
			found = append(found, strings.Join(run, " "))
		}
	}

	return found
}
