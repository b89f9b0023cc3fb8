package valueobjects

import (
	"fmt"
	"strings"
)

// Season names one of the four season flags
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// AllSeasons returns the seasons in calendar order
func AllSeasons() []Season {
	return []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter}
}

// ParseSeason parses a season name, case-insensitively. "autumn" is accepted for fall.
func ParseSeason(s string) (Season, error) {
	switch Season(strings.ToLower(strings.TrimSpace(s))) {
	case SeasonSpring:
		return SeasonSpring, nil
	case SeasonSummer:
		return SeasonSummer, nil
	case SeasonFall, "autumn":
		return SeasonFall, nil
	case SeasonWinter:
		return SeasonWinter, nil
	}
	return "", fmt.Errorf("invalid season %q: must be one of spring, summer, fall, winter", s)
}

// Seasons holds the independent season flags of a recipe
type Seasons struct {
	Spring bool `json:"spring" yaml:"spring"`
	Summer bool `json:"summer" yaml:"summer"`
	Fall   bool `json:"fall" yaml:"fall"`
	Winter bool `json:"winter" yaml:"winter"`
}

// SeasonsOf builds flags from a list of season names
func SeasonsOf(seasons ...Season) Seasons {
	var s Seasons
	for _, season := range seasons {
		s = s.With(season)
	}
	return s
}

// With returns a copy with the given season flagged
func (s Seasons) With(season Season) Seasons {
	switch season {
	case SeasonSpring:
		s.Spring = true
	case SeasonSummer:
		s.Summer = true
	case SeasonFall:
		s.Fall = true
	case SeasonWinter:
		s.Winter = true
	}
	return s
}

// Has reports whether the given season is flagged
func (s Seasons) Has(season Season) bool {
	switch season {
	case SeasonSpring:
		return s.Spring
	case SeasonSummer:
		return s.Summer
	case SeasonFall:
		return s.Fall
	case SeasonWinter:
		return s.Winter
	}
	return false
}

// Any reports whether at least one of the given seasons is flagged
func (s Seasons) Any(seasons ...Season) bool {
	for _, season := range seasons {
		if s.Has(season) {
			return true
		}
	}
	return false
}

// List returns the flagged seasons in calendar order
func (s Seasons) List() []Season {
	out := make([]Season, 0, 4)
	for _, season := range AllSeasons() {
		if s.Has(season) {
			out = append(out, season)
		}
	}
	return out
}

// IsEmpty reports whether no season is flagged
func (s Seasons) IsEmpty() bool {
	return !s.Spring && !s.Summer && !s.Fall && !s.Winter
}

// String renders the flagged seasons as a comma separated list
func (s Seasons) String() string {
	names := make([]string, 0, 4)
	for _, season := range s.List() {
		names = append(names, string(season))
	}
	return strings.Join(names, ",")
}
