package gemini

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	responses  []string
	errs       []error
	calls      int
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	idx := s.calls
	s.calls++

	var err error
	if idx < len(s.errs) {
		err = s.errs[idx]
	}
	if err != nil {
		return "", err
	}

	if idx < len(s.responses) {
		return s.responses[idx], nil
	}
	return s.responses[len(s.responses)-1], nil
}

func TestAnalyzerLemmatize(t *testing.T) {
	stub := &stubGenerator{responses: []string{
		`{"lemmas": ["look", "for", "job"], "entities": []}`,
	}}
	analyzer := NewAnalyzer(stub, 0, 0, zap.NewNop())

	lemmas, err := analyzer.Lemmatize(context.Background(), "looking for jobs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(lemmas) != 3 || lemmas[2] != "job" {
		t.Fatalf("unexpected lemmas: %v", lemmas)
	}

	if stub.lastPrompt == "" {
		t.Fatalf("expected prompt to be sent")
	}
}

func TestAnalyzerNamedEntitiesWithFence(t *testing.T) {
	stub := &stubGenerator{responses: []string{
		"```json\n{\"lemmas\": [], \"entities\": [{\"text\": \"Berlin\", \"label\": \"GPE\"}]}\n```",
	}}
	analyzer := NewAnalyzer(stub, 0, 0, zap.NewNop())

	entities, err := analyzer.NamedEntities(context.Background(), "developer in Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %v", entities)
	}
	if entities[0].Text != "Berlin" || !entities[0].IsLocation() {
		t.Fatalf("unexpected entity: %+v", entities[0])
	}
}

func TestAnalyzerRetriesOnFailure(t *testing.T) {
	stub := &stubGenerator{
		errs:      []error{errors.New("quota exceeded"), nil},
		responses: []string{"", `{"lemmas": ["job"], "entities": []}`},
	}
	analyzer := NewAnalyzer(stub, 2, 0, zap.NewNop())

	lemmas, err := analyzer.Lemmatize(context.Background(), "jobs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", stub.calls)
	}
	if len(lemmas) != 1 || lemmas[0] != "job" {
		t.Fatalf("unexpected lemmas: %v", lemmas)
	}
}

func TestAnalyzerExhaustsRetries(t *testing.T) {
	boom := errors.New("backend down")
	stub := &stubGenerator{errs: []error{boom, boom}}
	analyzer := NewAnalyzer(stub, 1, 0, zap.NewNop())

	if _, err := analyzer.Lemmatize(context.Background(), "jobs"); err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if stub.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", stub.calls)
	}
}

func TestAnalyzerEmptyText(t *testing.T) {
	stub := &stubGenerator{}
	analyzer := NewAnalyzer(stub, 0, 0, zap.NewNop())

	lemmas, err := analyzer.Lemmatize(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lemmas) != 0 {
		t.Fatalf("expected no lemmas, got %v", lemmas)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no generator calls for empty text")
	}
}
