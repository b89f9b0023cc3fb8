package valueobjects

import (
	"fmt"
	"strings"
)

// Diet classifies a recipe by the most permissive diet it fits.
// Diets are ordered: vegan < vegetarian < omnivore.
type Diet string

const (
	DietVegan      Diet = "vegan"
	DietVegetarian Diet = "vegetarian"
	DietOmnivore   Diet = "omnivore"
)

var dietRanks = map[Diet]int{
	DietVegan:      1,
	DietVegetarian: 2,
	DietOmnivore:   3,
}

// AllDiets returns every diet in ascending order
func AllDiets() []Diet {
	return []Diet{DietVegan, DietVegetarian, DietOmnivore}
}

// ParseDiet parses a diet name, case-insensitively
func ParseDiet(s string) (Diet, error) {
	d := Diet(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("invalid diet %q: must be one of %s", s, joinDiets())
	}
	return d, nil
}

// IsValid reports whether d is a known diet
func (d Diet) IsValid() bool {
	_, ok := dietRanks[d]
	return ok
}

// Rank returns the ordering position of the diet, 0 for unknown values
func (d Diet) Rank() int {
	return dietRanks[d]
}

// AtMost reports whether d is no more permissive than max
func (d Diet) AtMost(max Diet) bool {
	return d.IsValid() && max.IsValid() && d.Rank() <= max.Rank()
}

// String returns the diet name
func (d Diet) String() string {
	return string(d)
}

func joinDiets() string {
	names := make([]string, 0, len(dietRanks))
	for _, d := range AllDiets() {
		names = append(names, string(d))
	}
	return strings.Join(names, ", ")
}
