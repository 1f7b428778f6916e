package features

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hotel_recommender/internal/domain"
)

// Observation is the common shape both inputs are reduced to before any
// feature is derived. Categorical values are raw strings; an empty string
// encodes to DefaultCode.
type Observation struct {
	Hotel               string
	Country             string
	MarketSegment       string
	DistributionChannel string
	CustomerType        string

	LeadTime      int
	ArrivalMonth  int
	WeekendNights int
	WeekNights    int

	Adults   int
	Children int
	Babies   int

	IsRepeatedGuest             int
	PreviousCancellations       int
	PreviousBookingsNotCanceled int
	BookingChanges              int
	DaysInWaitingList           int

	ADR             float64
	ParkingSpaces   int
	SpecialRequests int

	// Business comes from a corporate id on bookings and from the declared
	// trip type on preferences.
	Business bool
}

// FromBooking resolves missing values and the arrival date of b.
func FromBooking(b domain.BookingRecord) (Observation, error) {
	r := b.Resolve()
	date, err := ArrivalDate(r.ArrivalYear, r.ArrivalMonth, r.ArrivalDay)
	if err != nil {
		return Observation{}, err
	}
	return Observation{
		Hotel:                       r.Hotel,
		Country:                     *r.Country,
		MarketSegment:               r.MarketSegment,
		DistributionChannel:         r.DistributionChannel,
		CustomerType:                r.CustomerType,
		LeadTime:                    r.LeadTime,
		ArrivalMonth:                int(date.Month()),
		WeekendNights:               r.WeekendNights,
		WeekNights:                  r.WeekNights,
		Adults:                      r.Adults,
		Children:                    *r.Children,
		Babies:                      r.Babies,
		IsRepeatedGuest:             r.IsRepeatedGuest,
		PreviousCancellations:       r.PreviousCancellations,
		PreviousBookingsNotCanceled: r.PreviousBookingsNotCanceled,
		BookingChanges:              r.BookingChanges,
		DaysInWaitingList:           r.DaysInWaitingList,
		ADR:                         r.ADR,
		ParkingSpaces:               r.RequiredCarParkingSpaces,
		SpecialRequests:             r.TotalOfSpecialRequests,
		Business:                    *r.Company > 0,
	}, nil
}

// FromPreference maps a preference onto the booking shape. Booking history
// fields a guest cannot state (prior cancellations, waiting list, ...) are 0.
func FromPreference(p domain.UserPreference) (Observation, error) {
	r := p.Resolve()
	if r.ArrivalMonth < 1 || r.ArrivalMonth > 12 {
		return Observation{}, fmt.Errorf("%w: arrival month %d", domain.ErrInvalidParameter, r.ArrivalMonth)
	}
	return Observation{
		Hotel:           r.Hotel,
		Country:         r.Country,
		LeadTime:        r.LeadTime,
		ArrivalMonth:    r.ArrivalMonth,
		WeekendNights:   r.WeekendNights,
		WeekNights:      r.WeekNights,
		Adults:          r.Adults,
		Children:        r.Children,
		Babies:          r.Babies,
		ADR:             r.Budget,
		ParkingSpaces:   r.ParkingRequired,
		SpecialRequests: r.SpecialRequests,
		Business:        r.IsBusiness(),
	}, nil
}

// ArrivalDate combines the arrival columns into a calendar date. Dates that
// do not exist (April 31st) are rejected rather than normalized.
func ArrivalDate(year int, month string, day int) (time.Time, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return time.Time{}, err
	}
	t := time.Date(year, m, day, 0, 0, 0, 0, time.UTC)
	if day < 1 || t.Month() != m || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: invalid arrival date %d-%s-%d", domain.ErrSchemaMismatch, year, month, day)
	}
	return t, nil
}

// ParseMonth accepts English month names, three-letter abbreviations and
// numbers 1-12.
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), nil
		}
		return 0, fmt.Errorf("%w: arrival month %q", domain.ErrSchemaMismatch, s)
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: arrival month %q", domain.ErrSchemaMismatch, s)
}

// IsSummer reports June through August.
func IsSummer(month int) bool { return month >= 6 && month <= 8 }

// IsWinter reports December through February.
func IsWinter(month int) bool { return month == 12 || month == 1 || month == 2 }

func (o Observation) categorical(col string) string {
	switch col {
	case ColHotel:
		return o.Hotel
	case ColCountry:
		return o.Country
	case ColMarketSegment:
		return o.MarketSegment
	case ColDistributionChannel:
		return o.DistributionChannel
	case ColCustomerType:
		return o.CustomerType
	}
	return ""
}

// numeric returns the value of a non-categorical column, derived features
// included.
func (o Observation) numeric(col string) (float64, bool) {
	switch col {
	case ColLeadTime:
		return float64(o.LeadTime), true
	case ColArrivalMonth:
		return float64(o.ArrivalMonth), true
	case ColWeekendNights:
		return float64(o.WeekendNights), true
	case ColWeekNights:
		return float64(o.WeekNights), true
	case ColAdults:
		return float64(o.Adults), true
	case ColChildren:
		return float64(o.Children), true
	case ColBabies:
		return float64(o.Babies), true
	case ColIsRepeatedGuest:
		return float64(o.IsRepeatedGuest), true
	case ColPreviousCancellations:
		return float64(o.PreviousCancellations), true
	case ColPreviousBookingsNotCanceled:
		return float64(o.PreviousBookingsNotCanceled), true
	case ColBookingChanges:
		return float64(o.BookingChanges), true
	case ColDaysInWaitingList:
		return float64(o.DaysInWaitingList), true
	case ColADR:
		return o.ADR, true
	case ColParkingSpaces:
		return float64(o.ParkingSpaces), true
	case ColSpecialRequests:
		return float64(o.SpecialRequests), true
	case ColTotalRevenue:
		return o.ADR * float64(o.WeekendNights+o.WeekNights), true
	case ColIsSummer:
		return flag(IsSummer(o.ArrivalMonth)), true
	case ColIsWinter:
		return flag(IsWinter(o.ArrivalMonth)), true
	case ColTotalGuests:
		return float64(o.Adults + o.Children + o.Babies), true
	case ColIsFamily:
		return flag(o.Children+o.Babies > 0), true
	case ColIsBusiness:
		return flag(o.Business), true
	}
	return 0, false
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
