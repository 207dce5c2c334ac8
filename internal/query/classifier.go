package query

import (
	"context"
	"regexp"
	"strings"

	"github.com/xzayogn/jobchat/internal/textanalysis"
	"go.uber.org/zap"
)

// Intent is the outcome of classifying one free-text query. When
// IsJobRelated is false no extraction is performed and RefinedQuery stays
// empty.
type Intent struct {
	OriginalQuery   string
	RefinedQuery    string
	IsJobRelated    bool
	JobTitle        string
	Location        string
	ExperienceLevel string
}

var jobRelatedTerms = []string{
	"job", "career", "position", "opportunity", "vacancy", "opening",
	"work", "employment", "role", "developer", "engineer", "manager",
	"analyst", "designer", "consultant", "specialist", "coordinator",
	"associate", "lead", "senior", "junior", "mid", "principal",
}

var conversationalPrefixes = []string{
	"i'm", "i am", "looking for", "show me", "find me", "searching for",
	"need", "want", "some", "please", "help me find", "can you find",
	"interested in", "seeking", "hunting for",
}

// experienceLevels maps seniority markers to their normalized form. Order
// matters: the first key found in the cleaned query wins.
var experienceLevels = []struct {
	key        string
	normalized string
}{
	{"entry level", "entry"},
	{"junior", "junior"},
	{"mid", "mid-level"},
	{"senior", "senior"},
	{"lead", "senior"},
	{"principal", "senior"},
	{"staff", "senior"},
}

// jobTitlePatterns cover common role-family x seniority combinations.
// Tried in order; the first match wins.
var jobTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)((?:senior|junior|lead|principal|staff)?\s*(?:software|python|java|frontend|backend|fullstack|full stack|web)?\s*(?:developer|engineer|architect|programmer))`),
	regexp.MustCompile(`(?i)((?:data|machine learning|ml|ai|devops|cloud|security)\s*(?:engineer|scientist|analyst|architect))`),
	regexp.MustCompile(`(?i)((?:product|project|program)\s*(?:manager|lead|owner))`),
	regexp.MustCompile(`(?i)((?:ux|ui|user experience|user interface)\s*(?:designer|researcher))`),
	regexp.MustCompile(`(?i)((?:business|systems|data)\s*(?:analyst|consultant))`),
	regexp.MustCompile(`(?i)((?:marketing|sales|account)\s*(?:manager|executive|representative))`),
}

var fillerWords = map[string]bool{
	"a": true, "an": true, "the": true, "for": true,
	"about": true, "related": true, "to": true,
}

// Classifier decides whether free text is a job search and extracts
// normalized search parameters from it. Pattern and keyword logic is owned
// here; lemmatization and NER come from the injected analyzer.
type Classifier struct {
	analyzer textanalysis.Analyzer
	log      *zap.Logger
}

func NewClassifier(analyzer textanalysis.Analyzer, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{analyzer: analyzer, log: log}
}

// Classify runs the full classification pass. The analyzer is best-effort:
// when it fails, classification degrades to keyword and pattern matching
// instead of returning an error.
func (c *Classifier) Classify(ctx context.Context, text string) Intent {
	intent := Intent{OriginalQuery: text}

	if strings.TrimSpace(text) == "" {
		return intent
	}

	lowered := strings.ToLower(text)
	lemmas := c.lemmas(ctx, lowered)

	if !isJobRelated(lowered, lemmas) {
		return intent
	}

	intent.IsJobRelated = true
	cleaned := cleanConversational(text)

	for _, pattern := range jobTitlePatterns {
		if match := pattern.FindStringSubmatch(cleaned); match != nil {
			intent.JobTitle = strings.TrimSpace(match[1])
			break
		}
	}

	// NER runs on the raw input so location casing survives cleaning.
	intent.Location = c.location(ctx, text)

	for _, level := range experienceLevels {
		if strings.Contains(cleaned, level.key) {
			intent.ExperienceLevel = level.normalized
			break
		}
	}

	var parts []string
	if intent.ExperienceLevel != "" {
		parts = append(parts, intent.ExperienceLevel)
	}
	if intent.JobTitle != "" {
		parts = append(parts, intent.JobTitle)
	}
	if intent.Location != "" {
		parts = append(parts, "in", intent.Location)
	}

	intent.RefinedQuery = strings.TrimSpace(strings.Join(parts, " "))
	if intent.RefinedQuery == "" {
		intent.RefinedQuery = cleaned
	}

	return intent
}

func (c *Classifier) lemmas(ctx context.Context, lowered string) map[string]bool {
	if c.analyzer == nil {
		return nil
	}

	lemmas, err := c.analyzer.Lemmatize(ctx, lowered)
	if err != nil {
		c.log.Warn("lemmatization unavailable, falling back to keyword matching", zap.Error(err))
		return nil
	}

	set := make(map[string]bool, len(lemmas))
	for _, lemma := range lemmas {
		set[lemma] = true
	}
	return set
}

func (c *Classifier) location(ctx context.Context, text string) string {
	if c.analyzer == nil {
		return ""
	}

	entities, err := c.analyzer.NamedEntities(ctx, text)
	if err != nil {
		c.log.Warn("entity recognition unavailable, skipping location extraction", zap.Error(err))
		return ""
	}

	var locations []string
	for _, entity := range entities {
		if entity.IsLocation() {
			locations = append(locations, entity.Text)
		}
	}

	// Multiple detected locations are concatenated, not disambiguated.
	return strings.Join(locations, " ")
}

func isJobRelated(lowered string, lemmas map[string]bool) bool {
	for _, term := range jobRelatedTerms {
		if strings.Contains(lowered, term) || lemmas[term] {
			return true
		}
	}

	for _, pattern := range jobTitlePatterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}

	for _, prefix := range conversationalPrefixes {
		if strings.Contains(lowered, prefix) {
			return true
		}
	}

	return false
}

func cleanConversational(text string) string {
	cleaned := strings.ToLower(text)
	for _, prefix := range conversationalPrefixes {
		cleaned = strings.ReplaceAll(cleaned, prefix, "")
	}

	words := strings.Fields(cleaned)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if fillerWords[word] {
			continue
		}
		kept = append(kept, word)
	}

	return strings.TrimSpace(strings.Join(kept, " "))
}
