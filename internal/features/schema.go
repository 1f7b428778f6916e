// Package features turns booking records and user preferences into the
// fixed-order numeric vectors the recommendation index is built on.
//
// Training rows and live preferences go through the same Observation ->
// raw row -> projection -> standard score path. Only the construction of
// the Observation differs between the two kinds of input.
package features

// SchemaVersion identifies the column set and order below. Bump it when
// either changes; persisted models carry the version they were built with.
const SchemaVersion = 1

// Feature column names.
const (
	ColHotel                       = "hotel"
	ColLeadTime                    = "lead_time"
	ColArrivalMonth                = "arrival_month"
	ColWeekendNights               = "stays_in_weekend_nights"
	ColWeekNights                  = "stays_in_week_nights"
	ColAdults                      = "adults"
	ColChildren                    = "children"
	ColBabies                      = "babies"
	ColCountry                     = "country"
	ColIsRepeatedGuest             = "is_repeated_guest"
	ColPreviousCancellations       = "previous_cancellations"
	ColPreviousBookingsNotCanceled = "previous_bookings_not_canceled"
	ColBookingChanges              = "booking_changes"
	ColDaysInWaitingList           = "days_in_waiting_list"
	ColADR                         = "adr"
	ColParkingSpaces               = "required_car_parking_spaces"
	ColSpecialRequests             = "total_of_special_requests"
	ColTotalRevenue                = "total_revenue"
	ColIsSummer                    = "is_summer"
	ColIsWinter                    = "is_winter"
	ColTotalGuests                 = "total_guests"
	ColIsFamily                    = "is_family"
	ColIsBusiness                  = "is_business"

	// Encoded but not part of the v1 vector.
	ColMarketSegment       = "market_segment"
	ColDistributionChannel = "distribution_channel"
	ColCustomerType        = "customer_type"
)

// Schema is the ordered feature list of SchemaVersion.
var Schema = []string{
	ColHotel, ColLeadTime, ColArrivalMonth, ColWeekendNights,
	ColWeekNights, ColAdults, ColChildren, ColBabies, ColCountry,
	ColIsRepeatedGuest, ColPreviousCancellations, ColPreviousBookingsNotCanceled,
	ColBookingChanges, ColDaysInWaitingList, ColADR, ColParkingSpaces,
	ColSpecialRequests, ColTotalRevenue, ColIsSummer, ColIsWinter,
	ColTotalGuests, ColIsFamily, ColIsBusiness,
}

// CategoricalColumns are label-encoded with a vocabulary learned at Fit.
var CategoricalColumns = []string{
	ColHotel, ColCountry, ColMarketSegment, ColDistributionChannel, ColCustomerType,
}

func isCategorical(col string) bool {
	for _, c := range CategoricalColumns {
		if c == col {
			return true
		}
	}
	return false
}
