package domain

import (
	"fmt"
	"time"
)

// FittedModel is the trained artifact: frozen feature schema, normalization
// parameters, label vocabularies, the normalized training matrix and the
// corpus it was built from. It is never mutated after Fit returns.
type FittedModel struct {
	ID            string    `json:"id"`
	SchemaVersion int       `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"`

	FeatureNames []string            `json:"feature_names"`
	Means        []float64           `json:"means"`
	Scales       []float64           `json:"scales"`
	Vocabularies map[string][]string `json:"vocabularies"`

	Vectors [][]float64     `json:"vectors"`
	Corpus  []BookingRecord `json:"corpus"`
}

// Validate checks the internal consistency of a loaded model. A model
// without feature names is reported as not fitted.
func (m *FittedModel) Validate() error {
	if m == nil || len(m.FeatureNames) == 0 || len(m.Vectors) == 0 {
		return ErrModelNotFitted
	}
	n := len(m.FeatureNames)
	if len(m.Means) != n || len(m.Scales) != n {
		return fmt.Errorf("%w: %d features but %d means / %d scales",
			ErrSchemaMismatch, n, len(m.Means), len(m.Scales))
	}
	if len(m.Corpus) != len(m.Vectors) {
		return fmt.Errorf("%w: %d vectors but %d corpus records",
			ErrSchemaMismatch, len(m.Vectors), len(m.Corpus))
	}
	for i, v := range m.Vectors {
		if len(v) != n {
			return fmt.Errorf("%w: vector %d has %d components, want %d",
				ErrSchemaMismatch, i, len(v), n)
		}
	}
	for i, s := range m.Scales {
		if s == 0 {
			return fmt.Errorf("%w: zero scale for %q", ErrSchemaMismatch, m.FeatureNames[i])
		}
	}
	return nil
}

// ModelInfo is the summary exposed by the API.
type ModelInfo struct {
	ID            string    `json:"id"`
	SchemaVersion int       `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"`
	FeatureNames  []string  `json:"feature_names"`
	CorpusSize    int       `json:"corpus_size"`
}

func (m *FittedModel) Info() ModelInfo {
	return ModelInfo{
		ID:            m.ID,
		SchemaVersion: m.SchemaVersion,
		CreatedAt:     m.CreatedAt,
		FeatureNames:  append([]string(nil), m.FeatureNames...),
		CorpusSize:    len(m.Corpus),
	}
}
