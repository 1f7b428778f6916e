package domain

// Defaults applied to nullable booking fields on load.
const (
	DefaultCountry = "Unknown"
	// DefaultCategory stands in for any other missing categorical value.
	DefaultCategory = "Unknown"
)

// BookingRecord is one historical reservation row. Nullable columns are
// pointers until Resolve fills them in.
type BookingRecord struct {
	Hotel       string `json:"hotel"`
	IsCanceled  int    `json:"is_canceled"`
	LeadTime    int    `json:"lead_time"`
	ArrivalYear int    `json:"arrival_date_year"`
	// ArrivalMonth is kept as it appears in the source ("July" or "7").
	ArrivalMonth string `json:"arrival_date_month"`
	ArrivalDay   int    `json:"arrival_date_day_of_month"`

	WeekendNights int `json:"stays_in_weekend_nights"`
	WeekNights    int `json:"stays_in_week_nights"`

	Adults   int  `json:"adults"`
	Children *int `json:"children,omitempty"`
	Babies   int  `json:"babies"`

	Meal                string  `json:"meal"`
	Country             *string `json:"country,omitempty"`
	MarketSegment       string  `json:"market_segment"`
	DistributionChannel string  `json:"distribution_channel"`
	CustomerType        string  `json:"customer_type"`

	IsRepeatedGuest             int `json:"is_repeated_guest"`
	PreviousCancellations       int `json:"previous_cancellations"`
	PreviousBookingsNotCanceled int `json:"previous_bookings_not_canceled"`
	BookingChanges              int `json:"booking_changes"`
	DaysInWaitingList           int `json:"days_in_waiting_list"`

	ReservedRoomType string `json:"reserved_room_type"`
	AssignedRoomType string `json:"assigned_room_type"`
	DepositType      string `json:"deposit_type"`

	Agent   *int `json:"agent,omitempty"`
	Company *int `json:"company,omitempty"`

	ADR                      float64 `json:"adr"`
	RequiredCarParkingSpaces int     `json:"required_car_parking_spaces"`
	TotalOfSpecialRequests   int     `json:"total_of_special_requests"`
	ReservationStatus        string  `json:"reservation_status"`
}

// Resolve returns a copy with every nullable field set to its documented
// default (children 0, country "Unknown", agent 0, company 0). Empty
// categorical columns become "Unknown" as well.
func (b BookingRecord) Resolve() BookingRecord {
	out := b
	for _, s := range []*string{&out.Hotel, &out.MarketSegment, &out.DistributionChannel, &out.CustomerType} {
		if *s == "" {
			*s = DefaultCategory
		}
	}
	if out.Children == nil {
		out.Children = ptr(0)
	}
	if out.Country == nil || *out.Country == "" {
		out.Country = ptr(DefaultCountry)
	}
	if out.Agent == nil {
		out.Agent = ptr(0)
	}
	if out.Company == nil {
		out.Company = ptr(0)
	}
	return out
}

// Resolved reports whether no nullable field is left unset.
func (b BookingRecord) Resolved() bool {
	return b.Children != nil && b.Country != nil && b.Agent != nil && b.Company != nil
}

func ptr[T any](v T) *T { return &v }
