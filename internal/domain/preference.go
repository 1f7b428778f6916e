package domain

import "strings"

// Trip types understood by the preference form.
const (
	TripLeisure  = "leisure"
	TripBusiness = "business"
)

// Preference defaults. They are part of the feature schema: changing one
// changes what an empty request recommends.
const (
	DefaultBudget         = 100.0
	DefaultAdults         = 2
	DefaultChildren       = 0
	DefaultBabies         = 0
	DefaultLeadTime       = 30
	DefaultArrivalMonth   = 6
	DefaultWeekendNights  = 2
	DefaultWeekNights     = 3
	DefaultParking        = 0
	DefaultSpecialRequest = 0
	DefaultTripType       = TripLeisure
)

// UserPreference describes a desired stay. Every field is optional; a nil
// field takes the matching Default* value in Resolve.
type UserPreference struct {
	Budget          *float64 `json:"budget,omitempty" validate:"omitempty,gte=0"`
	Adults          *int     `json:"adults,omitempty" validate:"omitempty,gte=0,lte=50"`
	Children        *int     `json:"children,omitempty" validate:"omitempty,gte=0,lte=50"`
	Babies          *int     `json:"babies,omitempty" validate:"omitempty,gte=0,lte=50"`
	LeadTime        *int     `json:"lead_time,omitempty" validate:"omitempty,gte=0"`
	ArrivalMonth    *int     `json:"arrival_month,omitempty" validate:"omitempty,gte=1,lte=12"`
	WeekendNights   *int     `json:"weekend_nights,omitempty" validate:"omitempty,gte=0"`
	WeekNights      *int     `json:"week_nights,omitempty" validate:"omitempty,gte=0"`
	ParkingRequired *int     `json:"parking_required,omitempty" validate:"omitempty,gte=0"`
	SpecialRequests *int     `json:"special_requests,omitempty" validate:"omitempty,gte=0"`
	TripType        *string  `json:"trip_type,omitempty" validate:"omitempty,oneof=leisure business"`

	// Hotel and Country are only meaningful when they match the training
	// vocabulary; anything else encodes to the default code.
	Hotel   *string `json:"hotel,omitempty"`
	Country *string `json:"country,omitempty"`
}

// ResolvedPreference is a UserPreference with every default applied.
type ResolvedPreference struct {
	Budget          float64 `json:"budget"`
	Adults          int     `json:"adults"`
	Children        int     `json:"children"`
	Babies          int     `json:"babies"`
	LeadTime        int     `json:"lead_time"`
	ArrivalMonth    int     `json:"arrival_month"`
	WeekendNights   int     `json:"weekend_nights"`
	WeekNights      int     `json:"week_nights"`
	ParkingRequired int     `json:"parking_required"`
	SpecialRequests int     `json:"special_requests"`
	TripType        string  `json:"trip_type"`
	Hotel           string  `json:"hotel,omitempty"`
	Country         string  `json:"country,omitempty"`
}

// Resolve applies the documented defaults. It is the single place where
// preference defaults live.
func (p UserPreference) Resolve() ResolvedPreference {
	r := ResolvedPreference{
		Budget:          or(p.Budget, DefaultBudget),
		Adults:          or(p.Adults, DefaultAdults),
		Children:        or(p.Children, DefaultChildren),
		Babies:          or(p.Babies, DefaultBabies),
		LeadTime:        or(p.LeadTime, DefaultLeadTime),
		ArrivalMonth:    or(p.ArrivalMonth, DefaultArrivalMonth),
		WeekendNights:   or(p.WeekendNights, DefaultWeekendNights),
		WeekNights:      or(p.WeekNights, DefaultWeekNights),
		ParkingRequired: or(p.ParkingRequired, DefaultParking),
		SpecialRequests: or(p.SpecialRequests, DefaultSpecialRequest),
		TripType:        strings.ToLower(strings.TrimSpace(or(p.TripType, DefaultTripType))),
		Hotel:           or(p.Hotel, ""),
		Country:         or(p.Country, ""),
	}
	if r.TripType == "" {
		r.TripType = DefaultTripType
	}
	return r
}

// IsBusiness reports whether the trip was explicitly declared as business.
func (r ResolvedPreference) IsBusiness() bool { return r.TripType == TripBusiness }

func or[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
