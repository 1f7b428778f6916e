package csvsource

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"hotel_recommender/internal/domain"
)

/********** alias registry (single source of truth) **********/

// columnAliases lists accepted header names per field, preferred first.
var columnAliases = map[string][]string{
	"hotel":                          {"hotel", "hotel_type"},
	"is_canceled":                    {"is_canceled"},
	"lead_time":                      {"lead_time"},
	"arrival_date_year":              {"arrival_date_year", "arrival_year"},
	"arrival_date_month":             {"arrival_date_month", "arrival_month"},
	"arrival_date_day_of_month":      {"arrival_date_day_of_month", "arrival_day"},
	"stays_in_weekend_nights":        {"stays_in_weekend_nights", "weekend_nights"},
	"stays_in_week_nights":           {"stays_in_week_nights", "week_nights"},
	"adults":                         {"adults"},
	"children":                       {"children"},
	"babies":                         {"babies", "infants"},
	"meal":                           {"meal"},
	"country":                        {"country"},
	"market_segment":                 {"market_segment"},
	"distribution_channel":           {"distribution_channel"},
	"is_repeated_guest":              {"is_repeated_guest"},
	"previous_cancellations":         {"previous_cancellations"},
	"previous_bookings_not_canceled": {"previous_bookings_not_canceled"},
	"reserved_room_type":             {"reserved_room_type"},
	"assigned_room_type":             {"assigned_room_type"},
	"booking_changes":                {"booking_changes"},
	"deposit_type":                   {"deposit_type"},
	"agent":                          {"agent"},
	"company":                        {"company"},
	"days_in_waiting_list":           {"days_in_waiting_list"},
	"customer_type":                  {"customer_type"},
	"adr":                            {"adr", "average_daily_rate"},
	"required_car_parking_spaces":    {"required_car_parking_spaces", "parking_spaces"},
	"total_of_special_requests":      {"total_of_special_requests", "special_requests"},
	"reservation_status":             {"reservation_status"},
}

// requiredColumns feed the feature schema and must be in the header.
var requiredColumns = []string{
	"hotel", "lead_time", "arrival_date_year", "arrival_date_month",
	"arrival_date_day_of_month", "stays_in_weekend_nights", "stays_in_week_nights",
	"adults", "children", "babies", "country", "market_segment",
	"distribution_channel", "customer_type", "is_repeated_guest",
	"previous_cancellations", "previous_bookings_not_canceled", "booking_changes",
	"days_in_waiting_list", "adr", "required_car_parking_spaces",
	"total_of_special_requests",
}

// header maps each canonical field to its column position.
type header map[string]int

func newHeader(cols []string) (header, error) {
	pos := make(map[string]int, len(cols))
	for i, c := range cols {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")))] = i
	}
	h := make(header, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := pos[a]; ok {
				h[field] = i
				break
			}
		}
	}
	var missing []string
	for _, f := range requiredColumns {
		if _, ok := h[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return h, nil
}

/********** tiny helpers **********/

// cell returns the trimmed value of field, "" when the column is absent.
func (h header) cell(row []string, field string) string {
	i, ok := h[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isNull(s string) bool {
	switch strings.ToUpper(s) {
	case "", "NA", "NAN", "NULL", "NONE":
		return true
	}
	return false
}

// rowMapper accumulates the first parse error so mapBooking reads linearly.
type rowMapper struct {
	h   header
	row []string
	err error
}

func (m *rowMapper) str(field string) string {
	s := m.h.cell(m.row, field)
	if isNull(s) {
		return ""
	}
	return s
}

func (m *rowMapper) strPtr(field string) *string {
	if s := m.str(field); s != "" {
		return &s
	}
	return nil
}

// intFlexible accepts "3" and "3.0" (pandas writes nullable ints as floats).
func (m *rowMapper) intFlexible(field string) *int {
	s := m.h.cell(m.row, field)
	if isNull(s) {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		m.fail(field, s)
		return nil
	}
	n := int(f)
	return &n
}

func (m *rowMapper) count(field string) int {
	if p := m.intFlexible(field); p != nil {
		return *p
	}
	return 0
}

func (m *rowMapper) float(field string) float64 {
	s := strings.ReplaceAll(m.h.cell(m.row, field), ",", ".")
	if isNull(s) {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		m.fail(field, s)
		return 0
	}
	return f
}

func (m *rowMapper) fail(field, val string) {
	if m.err == nil {
		m.err = fmt.Errorf("%w: column %s: cannot parse %q", domain.ErrSchemaMismatch, field, val)
	}
}

/********** booking mapper **********/

func mapBooking(h header, row []string) (domain.BookingRecord, error) {
	m := &rowMapper{h: h, row: row}
	b := domain.BookingRecord{
		Hotel:                       m.str("hotel"),
		IsCanceled:                  m.count("is_canceled"),
		LeadTime:                    m.count("lead_time"),
		ArrivalYear:                 m.count("arrival_date_year"),
		ArrivalMonth:                m.str("arrival_date_month"),
		ArrivalDay:                  m.count("arrival_date_day_of_month"),
		WeekendNights:               m.count("stays_in_weekend_nights"),
		WeekNights:                  m.count("stays_in_week_nights"),
		Adults:                      m.count("adults"),
		Children:                    m.intFlexible("children"),
		Babies:                      m.count("babies"),
		Meal:                        m.str("meal"),
		Country:                     m.strPtr("country"),
		MarketSegment:               m.str("market_segment"),
		DistributionChannel:         m.str("distribution_channel"),
		CustomerType:                m.str("customer_type"),
		IsRepeatedGuest:             m.count("is_repeated_guest"),
		PreviousCancellations:       m.count("previous_cancellations"),
		PreviousBookingsNotCanceled: m.count("previous_bookings_not_canceled"),
		BookingChanges:              m.count("booking_changes"),
		DaysInWaitingList:           m.count("days_in_waiting_list"),
		ReservedRoomType:            m.str("reserved_room_type"),
		AssignedRoomType:            m.str("assigned_room_type"),
		DepositType:                 m.str("deposit_type"),
		Agent:                       m.intFlexible("agent"),
		Company:                     m.intFlexible("company"),
		ADR:                         m.float("adr"),
		RequiredCarParkingSpaces:    m.count("required_car_parking_spaces"),
		TotalOfSpecialRequests:      m.count("total_of_special_requests"),
		ReservationStatus:           m.str("reservation_status"),
	}
	if m.err != nil {
		return domain.BookingRecord{}, m.err
	}
	if b.LeadTime < 0 || b.WeekendNights < 0 || b.WeekNights < 0 || b.Adults < 0 || b.Babies < 0 {
		return domain.BookingRecord{}, fmt.Errorf("%w: negative count", domain.ErrSchemaMismatch)
	}
	return b, nil
}
