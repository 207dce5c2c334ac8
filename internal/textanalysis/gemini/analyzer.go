package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/xzayogn/jobchat/internal/logger"
	"github.com/xzayogn/jobchat/internal/textanalysis"
	"github.com/xzayogn/jobchat/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Analyzer implements textanalysis.Analyzer on top of a Gemini generator.
// One model round-trip returns both lemmas and entities; Lemmatize and
// NamedEntities share the parsing path.
type Analyzer struct {
	generator  contentGenerator
	maxRetries int
	maxLogLen  int
	log        *zap.Logger
}

func NewAnalyzer(generator contentGenerator, maxRetries, maxLogLength int, log *zap.Logger) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Analyzer{
		generator:  generator,
		maxRetries: maxRetries,
		maxLogLen:  maxLogLength,
		log:        log,
	}
}

var _ textanalysis.Analyzer = (*Analyzer)(nil)

func (a *Analyzer) Lemmatize(ctx context.Context, text string) ([]string, error) {
	parsed, err := a.analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	return parsed.Lemmas, nil
}

func (a *Analyzer) NamedEntities(ctx context.Context, text string) ([]textanalysis.Entity, error) {
	parsed, err := a.analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	entities := make([]textanalysis.Entity, 0, len(parsed.Entities))
	for _, entity := range parsed.Entities {
		entities = append(entities, textanalysis.Entity{
			Text:  entity.Text,
			Label: entity.Label,
		})
	}
	return entities, nil
}

type analysisResponse struct {
	Lemmas   []string `json:"lemmas"`
	Entities []struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	} `json:"entities"`
}

func (a *Analyzer) analyze(ctx context.Context, text string) (*analysisResponse, error) {
	if strings.TrimSpace(text) == "" {
		return &analysisResponse{}, nil
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{TEXT}}", text)

	a.log.Debug("gemini analyze request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("text_preview", logger.TruncateForLog(text, a.maxLogLen)),
	)

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			if err := utils.WaitFor(ctx, time.Duration(attempt)*time.Second); err != nil {
				return nil, err
			}
		}

		raw, err := a.generator.GenerateContent(ctx, prompt)
		if err != nil {
			lastErr = err
			a.log.Warn("gemini analyze attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		a.log.Debug("gemini analyze response",
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
		)

		parsed, err := parseResponse(raw)
		if err != nil {
			lastErr = err
			a.log.Warn("gemini analyze response unparsable",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		return parsed, nil
	}

	return nil, fmt.Errorf("gemini analyze failed after %d attempts: %w", a.maxRetries+1, lastErr)
}

func parseResponse(raw string) (*analysisResponse, error) {
	cleaned := stripCodeFences(raw)

	var parsed analysisResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("decode analysis response: %w", err)
	}

	return &parsed, nil
}

// stripCodeFences removes a surrounding markdown code fence which some
// models insist on adding despite the prompt.
func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	return strings.TrimSpace(trimmed)
}
