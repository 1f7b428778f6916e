package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"hotel_recommender/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// Repo keeps the booking corpus and trained models in MySQL.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// UpsertBookings writes rs as rows start, start+1, ... in one statement.
func (r *Repo) UpsertBookings(ctx context.Context, start int64, rs []domain.BookingRecord) error {
	if len(rs) == 0 {
		return nil
	}
	ph := "(" + strings.TrimSuffix(strings.Repeat("?,", bookingParams), ",") + ")"
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*bookingParams)
	for i, b := range rs {
		values = append(values, ph)
		args = append(args,
			start+int64(i),
			b.Hotel,
			b.IsCanceled,
			b.LeadTime,
			b.ArrivalYear,
			b.ArrivalMonth,
			b.ArrivalDay,
			b.WeekendNights,
			b.WeekNights,
			b.Adults,
			valInt(b.Children),
			b.Babies,
			b.Meal,
			valStr(b.Country),
			b.MarketSegment,
			b.DistributionChannel,
			b.CustomerType,
			b.IsRepeatedGuest,
			b.PreviousCancellations,
			b.PreviousBookingsNotCanceled,
			b.BookingChanges,
			b.DaysInWaitingList,
			b.ReservedRoomType,
			b.AssignedRoomType,
			b.DepositType,
			valInt(b.Agent),
			valInt(b.Company),
			b.ADR,
			b.RequiredCarParkingSpaces,
			b.TotalOfSpecialRequests,
			b.ReservationStatus,
		)
	}
	sqlStr := insertBookingsPrefix + strings.Join(values, ",") + insertBookingsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// LoadBookings returns the corpus in row order. An empty table is
// ErrInputNotFound.
func (r *Repo) LoadBookings(ctx context.Context) ([]domain.BookingRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectBookingsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BookingRecord
	for rows.Next() {
		var (
			b                      domain.BookingRecord
			id                     int64
			children, agent, compy sql.NullInt64
			country                sql.NullString
		)
		if err := rows.Scan(
			&id,
			&b.Hotel,
			&b.IsCanceled,
			&b.LeadTime,
			&b.ArrivalYear,
			&b.ArrivalMonth,
			&b.ArrivalDay,
			&b.WeekendNights,
			&b.WeekNights,
			&b.Adults,
			&children,
			&b.Babies,
			&b.Meal,
			&country,
			&b.MarketSegment,
			&b.DistributionChannel,
			&b.CustomerType,
			&b.IsRepeatedGuest,
			&b.PreviousCancellations,
			&b.PreviousBookingsNotCanceled,
			&b.BookingChanges,
			&b.DaysInWaitingList,
			&b.ReservedRoomType,
			&b.AssignedRoomType,
			&b.DepositType,
			&agent,
			&compy,
			&b.ADR,
			&b.RequiredCarParkingSpaces,
			&b.TotalOfSpecialRequests,
			&b.ReservationStatus,
		); err != nil {
			return nil, err
		}
		b.Children = intPtr(children)
		b.Country = strPtr(country)
		b.Agent = intPtr(agent)
		b.Company = intPtr(compy)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: bookings table is empty", domain.ErrInputNotFound)
	}
	return out, nil
}

func (r *Repo) TrimBookings(ctx context.Context, n int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, trimBookingsSQL, n)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repo) CountBookings(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, countBookingsSQL).Scan(&n)
	return n, err
}

// SaveModel appends m; LoadModel always returns the newest one.
func (r *Repo) SaveModel(ctx context.Context, m *domain.FittedModel) error {
	if err := m.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertModelSQL,
		m.ID, m.SchemaVersion, len(m.Corpus), m.CreatedAt.UTC(), payload)
	return err
}

func (r *Repo) LoadModel(ctx context.Context) (*domain.FittedModel, error) {
	var payload []byte
	if err := r.db.QueryRowContext(ctx, latestModelSQL).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrModelNotFitted
		}
		return nil, err
	}
	var m domain.FittedModel
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("%w: decode model: %v", domain.ErrSchemaMismatch, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }
