// Package recommend fits the nearest-neighbor model over the booking corpus
// and answers "k most similar stays" queries for a user preference.
package recommend

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"hotel_recommender/internal/domain"
	"hotel_recommender/internal/features"
)

// Engine answers queries against one FittedModel. It is read-only and safe
// for concurrent use.
type Engine struct {
	model    *domain.FittedModel
	pipeline *features.Pipeline
	index    *Index
}

// Fit runs the feature pipeline over corpus and bundles the result into a
// FittedModel. The corpus is stored with missing values resolved.
func Fit(corpus []domain.BookingRecord) (*domain.FittedModel, error) {
	p, vectors, err := features.Fit(corpus)
	if err != nil {
		return nil, err
	}
	sc := p.Scaler()
	m := &domain.FittedModel{
		ID:            uuid.NewString(),
		SchemaVersion: features.SchemaVersion,
		CreatedAt:     time.Now().UTC(),
		FeatureNames:  p.Names(),
		Means:         sc.Mean,
		Scales:        sc.Scale,
		Vocabularies:  p.Vocabularies(),
		Vectors:       make([][]float64, len(vectors)),
		Corpus:        make([]domain.BookingRecord, len(corpus)),
	}
	for i, v := range vectors {
		m.Vectors[i] = v
	}
	for i, b := range corpus {
		m.Corpus[i] = b.Resolve()
	}
	return m, nil
}

// New validates m and prepares it for querying.
func New(m *domain.FittedModel) (*Engine, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.SchemaVersion != features.SchemaVersion {
		return nil, fmt.Errorf("%w: model schema v%d, pipeline v%d",
			domain.ErrSchemaMismatch, m.SchemaVersion, features.SchemaVersion)
	}
	p, err := features.FromModel(m)
	if err != nil {
		return nil, err
	}
	vs := make([]features.Vector, len(m.Vectors))
	for i, v := range m.Vectors {
		vs[i] = v
	}
	idx, err := NewIndex(vs)
	if err != nil {
		return nil, err
	}
	return &Engine{model: m, pipeline: p, index: idx}, nil
}

// Recommend is New(m) followed by Engine.Recommend.
func Recommend(m *domain.FittedModel, pref domain.UserPreference, k int) ([]domain.Recommendation, error) {
	e, err := New(m)
	if err != nil {
		return nil, err
	}
	return e.Recommend(pref, k)
}

// Recommend returns up to k corpus stays closest to pref, most similar
// first. k larger than the corpus is capped to the corpus size.
func (e *Engine) Recommend(pref domain.UserPreference, k int) ([]domain.Recommendation, error) {
	if e == nil || e.index == nil {
		return nil, domain.ErrModelNotFitted
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", domain.ErrInvalidParameter, k)
	}
	q, err := e.pipeline.TransformPreference(pref)
	if err != nil {
		return nil, err
	}
	hits, err := e.index.Query(q, k)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Recommendation, 0, len(hits))
	for _, h := range hits {
		out = append(out, toRecommendation(h, e.model.Corpus[h.Index]))
	}
	return out, nil
}

// Model returns the model the engine was built from.
func (e *Engine) Model() *domain.FittedModel { return e.model }

// Pipeline returns the frozen feature pipeline.
func (e *Engine) Pipeline() *features.Pipeline { return e.pipeline }

func toRecommendation(h Neighbor, b domain.BookingRecord) domain.Recommendation {
	id := strconv.Itoa(h.Index)
	name := b.Hotel
	if name == "" {
		name = "Hotel"
	}
	loc := domain.DefaultCountry
	if b.Country != nil {
		loc = *b.Country
	}
	children := 0
	if b.Children != nil {
		children = *b.Children
	}
	return domain.Recommendation{
		HotelID:         id,
		Name:            name,
		SimilarityScore: 1 - h.Distance,
		Distance:        h.Distance,
		Price:           b.ADR,
		Location:        loc,
		Guests:          b.Adults + children + b.Babies,
		Rating:          displayRating(id),
	}
}

// displayRating is a cosmetic 3.0-5.0 rating, stable per hotel id.
func displayRating(id string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	r := 3.0 + float64(h.Sum32()%21)/10
	return math.Round(r*10) / 10
}
