// Package csvsource reads the hotel-bookings CSV dump into BookingRecords.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"hotel_recommender/internal/domain"
)

// Source loads bookings from a CSV file on disk.
type Source struct {
	path string
}

func New(path string) *Source { return &Source{path: path} }

func (s *Source) Path() string { return s.path }

// LoadBookings reads the whole file in row order.
func (s *Source) LoadBookings(ctx context.Context) ([]domain.BookingRecord, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInputNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	return Decode(ctx, f)
}

// Decode parses a header row followed by booking rows. A missing required
// column or an unparsable cell is ErrSchemaMismatch.
func Decode(ctx context.Context, r io.Reader) ([]domain.BookingRecord, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	cols, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", domain.ErrInputNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h, err := newHeader(cols)
	if err != nil {
		return nil, err
	}

	var out []domain.BookingRecord
	for line := 2; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrSchemaMismatch, line, err)
		}
		b, err := mapBooking(h, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, b)
	}
	return out, nil
}
