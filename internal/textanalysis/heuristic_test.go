package textanalysis

import (
	"context"
	"slices"
	"testing"
)

func TestHeuristicLemmatize(t *testing.T) {
	h := NewHeuristic()

	lemmas, err := h.Lemmatize(context.Background(), "Looking for engineering jobs and vacancies")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"job", "jobs", "vacancy", "engineering"} {
		if !slices.Contains(lemmas, want) {
			t.Fatalf("expected lemma %q in %v", want, lemmas)
		}
	}
}

func TestHeuristicLemmatizeKeepsShortWords(t *testing.T) {
	h := NewHeuristic()

	lemmas, err := h.Lemmatize(context.Background(), "c++ devops is us")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// "is" and "us" must not be stripped to nonsense.
	for _, want := range []string{"c++", "devops", "devop", "is", "us"} {
		if !slices.Contains(lemmas, want) {
			t.Fatalf("expected %q in %v", want, lemmas)
		}
	}
}

func TestHeuristicNamedEntitiesGazetteer(t *testing.T) {
	h := NewHeuristic()

	entities, err := h.NamedEntities(context.Background(), "senior python developer in Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entities) == 0 {
		t.Fatalf("expected at least one entity")
	}
	if entities[0].Text != "Berlin" || !entities[0].IsLocation() {
		t.Fatalf("unexpected entity: %+v", entities[0])
	}
}

func TestHeuristicNamedEntitiesNonASCII(t *testing.T) {
	h := NewHeuristic()

	// Lowercasing can change the byte length of runes like 'Ⱥ'; matching
	// must not depend on byte offsets staying aligned.
	entities, err := h.NamedEntities(context.Background(), "ȺȺ Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %v", entities)
	}
	if entities[0].Text != "Berlin" || entities[0].Label != LabelGPE {
		t.Fatalf("unexpected entity: %+v", entities[0])
	}
}

func TestHeuristicNamedEntitiesMultiWordPlace(t *testing.T) {
	h := NewHeuristic()

	entities, err := h.NamedEntities(context.Background(), "ML roles in New York, onsite")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entities) == 0 {
		t.Fatalf("expected at least one entity")
	}
	if entities[0].Text != "New York" || entities[0].Label != LabelGPE {
		t.Fatalf("unexpected entity: %+v", entities[0])
	}
}

func TestHeuristicNamedEntitiesCapitalizedRun(t *testing.T) {
	h := NewHeuristic()

	entities, err := h.NamedEntities(context.Background(), "data engineer in Novi Sad")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %v", entities)
	}
	if entities[0].Text != "Novi Sad" || entities[0].Label != LabelLocation {
		t.Fatalf("unexpected entity: %+v", entities[0])
	}
}

func TestHeuristicNamedEntitiesNone(t *testing.T) {
	h := NewHeuristic()

	entities, err := h.NamedEntities(context.Background(), "remote backend position")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 0 {
		t.Fatalf("expected no entities, got %v", entities)
	}
}
