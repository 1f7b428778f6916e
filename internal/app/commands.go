package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_recommender/internal/adapters/observability"
	"hotel_recommender/internal/domain"
	"hotel_recommender/internal/recommend"
)

// TrainingService fits a model over a booking source and persists it.
type TrainingService struct {
	store domain.ModelStore
}

func NewTrainingService(store domain.ModelStore) *TrainingService {
	return &TrainingService{store: store}
}

func (s *TrainingService) Train(ctx context.Context, src domain.BookingSource) (*domain.FittedModel, error) {
	corpus, err := src.LoadBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	log.Info().Int("records", len(corpus)).Msg("corpus loaded")

	start := time.Now()
	m, err := recommend.Fit(corpus)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	dur := time.Since(start)
	observability.ObserveFit(len(m.Corpus), dur)

	if err := s.store.SaveModel(ctx, m); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	log.Info().
		Str("model_id", m.ID).
		Int("features", len(m.FeatureNames)).
		Dur("fit", dur).
		Msg("model trained")
	return m, nil
}

// ImportReport summarizes one import run.
type ImportReport struct {
	Rows    int   `json:"rows"`
	Batches int   `json:"batches"`
	Failed  int   `json:"failed_batches"`
	Trimmed int64 `json:"trimmed_rows"`
}

// ImportService copies a booking source into the repository in batches,
// with at most `workers` batches in flight.
type ImportService struct {
	repo    domain.BookingRepository
	workers int64
	batch   int
}

func NewImportService(r domain.BookingRepository, workers, batch int) *ImportService {
	if workers < 1 {
		workers = 1
	}
	if batch < 1 {
		batch = 500
	}
	return &ImportService{repo: r, workers: int64(workers), batch: batch}
}

// Import writes every record at its source position, then drops rows past
// the end of the source so the table holds exactly this corpus. Failed
// batches are logged and reported; the first few errors are returned
// joined, and the table is not trimmed in that case.
func (s *ImportService) Import(ctx context.Context, src domain.BookingSource) (ImportReport, error) {
	rs, err := src.LoadBookings(ctx)
	if err != nil {
		return ImportReport{}, fmt.Errorf("load bookings: %w", err)
	}
	if len(rs) == 0 {
		return ImportReport{}, fmt.Errorf("%w: source has no bookings", domain.ErrInputNotFound)
	}

	sem := semaphore.NewWeighted(s.workers)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		rep  = ImportReport{Rows: len(rs)}
		errs []error
	)

	for start := 0; start < len(rs); start += s.batch {
		end := min(start+s.batch, len(rs))

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		rep.Batches++

		wg.Add(1)
		go func(start int, chunk []domain.BookingRecord) {
			defer wg.Done()
			defer sem.Release(1)

			if err := s.repo.UpsertBookings(ctx, int64(start), chunk); err != nil {
				log.Warn().Int("start", start).Int("rows", len(chunk)).Err(err).Msg("batch failed")
				observability.ObserveImport("failed", len(chunk))
				mu.Lock()
				rep.Failed++
				if len(errs) < 5 {
					errs = append(errs, fmt.Errorf("rows %d-%d: %w", start, start+len(chunk)-1, err))
				}
				mu.Unlock()
				return
			}
			observability.ObserveImport("ok", len(chunk))
			log.Debug().Int("start", start).Int("rows", len(chunk)).Msg("batch ok")
		}(start, rs[start:end])
	}

	wg.Wait()
	if len(errs) == 0 {
		n, err := s.repo.TrimBookings(ctx, int64(len(rs)))
		if err != nil {
			errs = append(errs, fmt.Errorf("trim stale rows: %w", err))
		}
		rep.Trimmed = n
	}
	log.Info().
		Int("rows", rep.Rows).
		Int("batches", rep.Batches).
		Int("failed", rep.Failed).
		Int64("trimmed", rep.Trimmed).
		Msg("import completed")
	return rep, errors.Join(errs...)
}
