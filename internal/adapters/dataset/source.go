package dataset

import (
	"context"

	"hotel_recommender/internal/adapters/csvsource"
	"hotel_recommender/internal/domain"
)

// Source is a BookingSource backed by a CSV at a URL.
type Source struct {
	client domain.DatasetClient
	url    string
}

func NewSource(c domain.DatasetClient, url string) *Source {
	return &Source{client: c, url: url}
}

func (s *Source) LoadBookings(ctx context.Context) ([]domain.BookingRecord, error) {
	body, err := s.client.Fetch(ctx, s.url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return csvsource.Decode(ctx, body)
}
