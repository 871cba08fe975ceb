// Package timezone is the application's wall clock. Service dates, opening hours and
// reservation slots are all interpreted in the zone named by APP_TIMEZONE.
//
//	date, err := timezone.ParseDate("2025-03-14") // midnight in the app zone
//	opens := timezone.At(date, 17*60)             // 17:00 that day
//	label := timezone.Format(opens, timezone.ClockLayout)
package timezone
