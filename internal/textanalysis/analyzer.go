package textanalysis

import "context"

// Entity labels produced by named entity recognition. Only geopolitical and
// generic location labels are consumed by the query classifier.
const (
	LabelGPE      = "GPE"
	LabelLocation = "LOC"
)

// Entity is a single named entity found in free text.
type Entity struct {
	Text  string
	Label string
}

// IsLocation reports whether the entity denotes a place.
func (e Entity) IsLocation() bool {
	return e.Label == LabelGPE || e.Label == LabelLocation
}

// Analyzer is the text-analysis capability consumed by the query
// classifier. Implementations may be model-backed or fully deterministic;
// callers must tolerate errors and degrade to keyword-only matching.
type Analyzer interface {
	Lemmatize(ctx context.Context, text string) ([]string, error)
	NamedEntities(ctx context.Context, text string) ([]Entity, error)
}
