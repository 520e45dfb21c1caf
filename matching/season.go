package matching

import (
	"errors"
	"math"
	"strings"
)

// Season names as stored in the seasons vocabulary
const (
	SeasonWinter = "Winter"
	SeasonFall   = "Fall"
	SeasonSpring = "Spring"
	SeasonSummer = "Summer"
)

var (
	// ErrMissingSeasonOrTemperature is returned when neither input yields a season
	ErrMissingSeasonOrTemperature = errors.New("missing season or temperature")
	// ErrInvalidTemperature is returned for NaN or infinite temperatures
	ErrInvalidTemperature = errors.New("temperature must be a finite number")
)

// ResolveSeasons returns the season set to filter the catalogue with.
// Explicit seasons win; otherwise the temperature (Celsius) picks the set:
// below 10 is Winter, below 20 is Fall and Spring, anything else is Summer.
func ResolveSeasons(seasons []string, temperature *float64) ([]string, error) {
	explicit := make([]string, 0, len(seasons))
	for _, s := range seasons {
		if s = strings.TrimSpace(s); s != "" {
			explicit = append(explicit, s)
		}
	}
	if len(explicit) > 0 {
		return explicit, nil
	}

	if temperature == nil {
		return nil, ErrMissingSeasonOrTemperature
	}
	if math.IsNaN(*temperature) || math.IsInf(*temperature, 0) {
		return nil, ErrInvalidTemperature
	}

	switch t := *temperature; {
	case t < 10:
		return []string{SeasonWinter}, nil
	case t < 20:
		return []string{SeasonFall, SeasonSpring}, nil
	default:
		return []string{SeasonSummer}, nil
	}
}

// ContainsSeason reports whether season is in the set, ignoring case
func ContainsSeason(set []string, season string) bool {
	for _, s := range set {
		if strings.EqualFold(s, season) {
			return true
		}
	}
	return false
}
