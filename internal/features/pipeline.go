package features

import (
	"fmt"

	"hotel_recommender/internal/domain"
)

// Vector is a normalized feature vector in Pipeline.Names order.
type Vector []float64

// Pipeline is a fitted transform. It holds no mutable state, so one
// instance can serve concurrent Transform calls.
type Pipeline struct {
	names  []string
	vocab  map[string]Vocabulary
	scaler Scaler
}

// Fit learns label vocabularies and normalization parameters from corpus
// and returns the pipeline together with the normalized training matrix.
// This is the only place parameters are learned.
func Fit(corpus []domain.BookingRecord) (*Pipeline, []Vector, error) {
	if len(corpus) == 0 {
		return nil, nil, fmt.Errorf("%w: empty corpus", domain.ErrInputNotFound)
	}
	obs := make([]Observation, len(corpus))
	for i, b := range corpus {
		o, err := FromBooking(b)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}
		obs[i] = o
	}

	vocab := make(map[string]Vocabulary, len(CategoricalColumns))
	for _, col := range CategoricalColumns {
		vals := make([]string, len(obs))
		for i, o := range obs {
			vals[i] = o.categorical(col)
		}
		vocab[col] = FitVocabulary(vals)
	}

	p := &Pipeline{names: append([]string(nil), Schema...), vocab: vocab}
	raw := make([][]float64, len(obs))
	for i, o := range obs {
		row, err := p.project(o)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}
		raw[i] = row
	}
	sc, err := FitScaler(raw)
	if err != nil {
		return nil, nil, err
	}
	p.scaler = sc

	out := make([]Vector, len(raw))
	for i, row := range raw {
		v, err := p.scaler.Apply(row)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = v
	}
	return p, out, nil
}

// FromModel rebuilds the pipeline frozen inside m.
func FromModel(m *domain.FittedModel) (*Pipeline, error) {
	if m == nil || len(m.FeatureNames) == 0 {
		return nil, domain.ErrModelNotFitted
	}
	if len(m.Means) != len(m.FeatureNames) || len(m.Scales) != len(m.FeatureNames) {
		return nil, fmt.Errorf("%w: normalization parameters do not match %d features",
			domain.ErrSchemaMismatch, len(m.FeatureNames))
	}
	vocab := make(map[string]Vocabulary, len(m.Vocabularies))
	for col, classes := range m.Vocabularies {
		vocab[col] = NewVocabulary(classes)
	}
	p := &Pipeline{
		names:  append([]string(nil), m.FeatureNames...),
		vocab:  vocab,
		scaler: Scaler{Mean: append([]float64(nil), m.Means...), Scale: append([]float64(nil), m.Scales...)},
	}
	// Every column must be producible before the pipeline is handed out.
	if _, err := p.project(Observation{}); err != nil {
		return nil, err
	}
	return p, nil
}

// Transform projects o onto the feature names and normalizes it.
func (p *Pipeline) Transform(o Observation) (Vector, error) {
	row, err := p.project(o)
	if err != nil {
		return nil, err
	}
	v, err := p.scaler.Apply(row)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// TransformBooking is Transform(FromBooking(b)).
func (p *Pipeline) TransformBooking(b domain.BookingRecord) (Vector, error) {
	o, err := FromBooking(b)
	if err != nil {
		return nil, err
	}
	return p.Transform(o)
}

// TransformPreference is Transform(FromPreference(pref)).
func (p *Pipeline) TransformPreference(pref domain.UserPreference) (Vector, error) {
	o, err := FromPreference(pref)
	if err != nil {
		return nil, err
	}
	return p.Transform(o)
}

// project builds the raw (unnormalized) row in p.names order.
func (p *Pipeline) project(o Observation) ([]float64, error) {
	row := make([]float64, len(p.names))
	for i, col := range p.names {
		if isCategorical(col) {
			v, ok := p.vocab[col]
			if !ok {
				return nil, fmt.Errorf("%w: no vocabulary for %q", domain.ErrSchemaMismatch, col)
			}
			code := DefaultCode
			if s := o.categorical(col); s != "" {
				code, _ = v.Code(s)
			}
			row[i] = float64(code)
			continue
		}
		x, ok := o.numeric(col)
		if !ok {
			return nil, fmt.Errorf("%w: unknown feature %q", domain.ErrSchemaMismatch, col)
		}
		row[i] = x
	}
	return row, nil
}

// Names returns the ordered feature names.
func (p *Pipeline) Names() []string { return append([]string(nil), p.names...) }

// Scaler returns a copy of the normalization parameters.
func (p *Pipeline) Scaler() Scaler {
	return Scaler{
		Mean:  append([]float64(nil), p.scaler.Mean...),
		Scale: append([]float64(nil), p.scaler.Scale...),
	}
}

// Vocabularies returns the persisted form of the label encodings.
func (p *Pipeline) Vocabularies() map[string][]string {
	out := make(map[string][]string, len(p.vocab))
	for col, v := range p.vocab {
		out[col] = v.Classes()
	}
	return out
}

// Vocabulary returns the encoding of col.
func (p *Pipeline) Vocabulary(col string) (Vocabulary, bool) {
	v, ok := p.vocab[col]
	return v, ok
}
