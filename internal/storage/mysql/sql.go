package mysql

// bookingColumns is the column order shared by inserts and selects.
const bookingColumns = "id, hotel, is_canceled, lead_time, arrival_date_year, arrival_date_month," +
	" arrival_date_day_of_month, stays_in_weekend_nights, stays_in_week_nights, adults, children, babies," +
	" meal, country, market_segment, distribution_channel, customer_type, is_repeated_guest," +
	" previous_cancellations, previous_bookings_not_canceled, booking_changes, days_in_waiting_list," +
	" reserved_room_type, assigned_room_type, deposit_type, agent, company, adr," +
	" required_car_parking_spaces, total_of_special_requests, reservation_status"

const bookingParams = 31

const insertBookingsPrefix = "INSERT INTO bookings (" + bookingColumns + ")\nVALUES "

// Re-importing the same file overwrites rows by position.
const insertBookingsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  hotel                          = VALUES(hotel),\n" +
	"  is_canceled                    = VALUES(is_canceled),\n" +
	"  lead_time                      = VALUES(lead_time),\n" +
	"  arrival_date_year              = VALUES(arrival_date_year),\n" +
	"  arrival_date_month             = VALUES(arrival_date_month),\n" +
	"  arrival_date_day_of_month      = VALUES(arrival_date_day_of_month),\n" +
	"  stays_in_weekend_nights        = VALUES(stays_in_weekend_nights),\n" +
	"  stays_in_week_nights           = VALUES(stays_in_week_nights),\n" +
	"  adults                         = VALUES(adults),\n" +
	"  children                       = VALUES(children),\n" +
	"  babies                         = VALUES(babies),\n" +
	"  meal                           = VALUES(meal),\n" +
	"  country                        = VALUES(country),\n" +
	"  market_segment                 = VALUES(market_segment),\n" +
	"  distribution_channel           = VALUES(distribution_channel),\n" +
	"  customer_type                  = VALUES(customer_type),\n" +
	"  is_repeated_guest              = VALUES(is_repeated_guest),\n" +
	"  previous_cancellations         = VALUES(previous_cancellations),\n" +
	"  previous_bookings_not_canceled = VALUES(previous_bookings_not_canceled),\n" +
	"  booking_changes                = VALUES(booking_changes),\n" +
	"  days_in_waiting_list           = VALUES(days_in_waiting_list),\n" +
	"  reserved_room_type             = VALUES(reserved_room_type),\n" +
	"  assigned_room_type             = VALUES(assigned_room_type),\n" +
	"  deposit_type                   = VALUES(deposit_type),\n" +
	"  agent                          = VALUES(agent),\n" +
	"  company                        = VALUES(company),\n" +
	"  adr                            = VALUES(adr),\n" +
	"  required_car_parking_spaces    = VALUES(required_car_parking_spaces),\n" +
	"  total_of_special_requests      = VALUES(total_of_special_requests),\n" +
	"  reservation_status             = VALUES(reservation_status),\n" +
	"  imported_at                    = CURRENT_TIMESTAMP\n"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Row order is corpus order; recommendation ids are positions in it.
const selectBookingsSQL = "SELECT " + bookingColumns + " FROM bookings ORDER BY id"

const countBookingsSQL = `SELECT COUNT(*) FROM bookings`

// Rows left over from a longer previous import.
const trimBookingsSQL = `DELETE FROM bookings WHERE id >= ?`

const insertModelSQL = `
INSERT INTO models (id, schema_version, corpus_size, created_at, payload)
VALUES (?, ?, ?, ?, ?)
`

const latestModelSQL = `
SELECT payload
FROM models
ORDER BY seq DESC
LIMIT 1
`
