// Package timezone pins every clock reading and calendar date to the zone in
// APP_TIMEZONE (UTC when unset).
//
// Booking nights are counted on calendar dates, so check-in and check-out
// strings go through ParseDate, which accepts "2006-01-02" or RFC3339 and
// truncates to midnight in the application zone:
//
//	checkIn, err := timezone.ParseDate("2025-07-01")
//	now := timezone.Now()
//
// Only IANA zone names are accepted ("Asia/Jakarta", "America/New_York").
package timezone
