package domain

import (
	"context"
	"io"
)

// BookingSource yields the training corpus in insertion order.
type BookingSource interface {
	LoadBookings(ctx context.Context) ([]BookingRecord, error)
}

type BookingRepository interface {
	BookingSource
	UpsertBookings(ctx context.Context, start int64, rs []BookingRecord) error
	// TrimBookings deletes every row at position n or later.
	TrimBookings(ctx context.Context, n int64) (int64, error)
	CountBookings(ctx context.Context) (int64, error)
}

// ModelStore persists a FittedModel opaquely. Load returns ErrModelNotFitted
// when nothing has been saved yet.
type ModelStore interface {
	SaveModel(ctx context.Context, m *FittedModel) error
	LoadModel(ctx context.Context) (*FittedModel, error)
}

// DatasetClient downloads a raw booking dataset.
type DatasetClient interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
