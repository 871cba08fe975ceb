package timezone

import (
	"rms/config"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var location = sync.OnceValue(func() *time.Location {
	name := config.Get().App.Timezone
	if name == "" {
		log.Warn().Msg("APP_TIMEZONE not set, using UTC")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Unknown IANA timezone, using UTC")

		return time.UTC
	}

	log.Info().Str("timezone", loc.String()).Msg("Application timezone loaded")

	return loc
})

// GetLocation returns the application timezone. It is resolved from configuration on
// first use.
func GetLocation() *time.Location {
	return location()
}

func Now() time.Time {
	return time.Now().In(GetLocation())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// Parse reads value as a wall-clock time in the application timezone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, GetLocation())
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// ParseDate parses a YYYY-MM-DD service date as midnight in the application timezone.
func ParseDate(value string) (time.Time, error) {
	return Parse(DateLayout, value)
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := ToAppTime(t).Date()

	return time.Date(y, m, d, 0, 0, 0, 0, GetLocation())
}

// At returns the wall-clock time minutes after midnight of date. Minutes outside one
// day roll into the neighbouring days, and DST shifts keep the wall clock.
func At(date time.Time, minutes int) time.Time {
	y, m, d := StartOfDay(date).Date()

	return time.Date(y, m, d, 0, minutes, 0, 0, GetLocation())
}
