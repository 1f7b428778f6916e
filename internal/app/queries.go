package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_recommender/internal/adapters/observability"
	"hotel_recommender/internal/domain"
	"hotel_recommender/internal/recommend"
	"hotel_recommender/internal/validation"
)

const StatusSuccess = "success"

// RecommendRequest is one recommendation query. K == 0 means the
// configured default.
type RecommendRequest struct {
	UserID     string                `json:"user_id,omitempty"`
	Preference domain.UserPreference `json:"preferences"`
	// K is the list length; nil means the configured default.
	K *int `json:"k,omitempty"`
}

// RecommendationService serves queries against the currently loaded model.
// The engine can be swapped while requests are in flight.
type RecommendationService struct {
	mu     sync.RWMutex
	engine *recommend.Engine

	store    domain.ModelStore
	cache    domain.Cache
	cacheTTL time.Duration
	defaultK int
	maxK     int
	now      func() time.Time
}

func NewRecommendationService(store domain.ModelStore, c domain.Cache, ttl time.Duration, defaultK, maxK int) *RecommendationService {
	return &RecommendationService{
		store:    store,
		cache:    c,
		cacheTTL: ttl,
		defaultK: defaultK,
		maxK:     maxK,
		now:      time.Now,
	}
}

// Reload reads the latest model from the store and swaps it in. On error the
// previous engine keeps serving.
func (s *RecommendationService) Reload(ctx context.Context) error {
	m, err := s.store.LoadModel(ctx)
	if err != nil {
		return err
	}
	return s.Use(m)
}

// Use swaps in an already loaded model.
func (s *RecommendationService) Use(m *domain.FittedModel) error {
	e, err := recommend.New(m)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.engine = e
	s.mu.Unlock()
	observability.ModelCorpusSize.Set(float64(len(m.Corpus)))
	log.Info().Str("model_id", m.ID).Int("corpus", len(m.Corpus)).Msg("model loaded")
	return nil
}

func (s *RecommendationService) current() *recommend.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// Model describes the loaded model.
func (s *RecommendationService) Model() (domain.ModelInfo, error) {
	e := s.current()
	if e == nil {
		return domain.ModelInfo{}, domain.ErrModelNotFitted
	}
	return e.Model().Info(), nil
}

func (s *RecommendationService) Recommend(ctx context.Context, req RecommendRequest) (res domain.RecommendationResult, err error) {
	start := time.Now()
	defer func() { observability.ObserveRecommend(err, time.Since(start)) }()

	if err := validation.Struct(req.Preference); err != nil {
		return domain.RecommendationResult{}, err
	}
	k := s.defaultK
	if req.K != nil {
		k = *req.K
	}
	if k < 1 || k > s.maxK {
		return domain.RecommendationResult{}, fmt.Errorf("%w: k must be between 1 and %d, got %d",
			domain.ErrInvalidParameter, s.maxK, k)
	}
	e := s.current()
	if e == nil {
		return domain.RecommendationResult{}, domain.ErrModelNotFitted
	}
	modelID := e.Model().ID

	var recs []domain.Recommendation
	key := cacheKey(modelID, req.Preference, k)
	hit := false
	if s.cache != nil {
		if ok, cerr := s.cache.Get(ctx, key, &recs); cerr != nil {
			log.Warn().Err(cerr).Str("key", key).Msg("cache read failed")
		} else {
			hit = ok
		}
	}
	if !hit {
		recs, err = e.Recommend(req.Preference, k)
		if err != nil {
			return domain.RecommendationResult{}, err
		}
		if s.cache != nil {
			if cerr := s.cache.Set(ctx, key, recs, int(s.cacheTTL.Seconds())); cerr != nil {
				log.Warn().Err(cerr).Str("key", key).Msg("cache write failed")
			}
		}
	}

	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
	}
	return domain.RecommendationResult{
		UserID:          userID,
		ModelID:         modelID,
		Recommendations: recs,
		Count:           len(recs),
		Timestamp:       s.now().UTC().Format(time.RFC3339),
		Status:          StatusSuccess,
	}, nil
}

// cacheKey hashes the resolved preference, so requests that differ only in
// omitted-vs-default fields share an entry.
func cacheKey(modelID string, pref domain.UserPreference, k int) string {
	b, _ := json.Marshal(pref.Resolve())
	sum := sha256.Sum256(b)
	return fmt.Sprintf("recs:%s:%s:%d", modelID, hex.EncodeToString(sum[:12]), k)
}
