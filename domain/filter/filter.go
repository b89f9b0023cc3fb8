// Package filter holds the recipe list criteria and its URL query string form.
//
// A Filter narrows the catalog by name substring, maximum diet, maximum
// preparation time, required tags and acceptable seasons. Tags are combined
// with AND, seasons with OR. The same value drives the store queries on the
// server and the shareable link state on the client.
package filter

import (
	"sort"
	"strings"
	"unicode/utf8"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

// MaxNameLength bounds the name substring accepted in a filter
const MaxNameLength = 200

// Sort is a list ordering. A leading "-" reverses it.
type Sort string

const (
	SortName         Sort = "name"
	SortNameDesc     Sort = "-name"
	SortPrepTime     Sort = "prepTime"
	SortPrepTimeDesc Sort = "-prepTime"
	SortDiet         Sort = "diet"
	SortDietDesc     Sort = "-diet"
	SortCreated      Sort = "created"
	SortCreatedDesc  Sort = "-created"
)

// DefaultSort is used when no ordering is requested
const DefaultSort = SortName

// AllSorts returns every supported ordering
func AllSorts() []Sort {
	return []Sort{
		SortName, SortNameDesc,
		SortPrepTime, SortPrepTimeDesc,
		SortDiet, SortDietDesc,
		SortCreated, SortCreatedDesc,
	}
}

// ParseSort parses an ordering name. An empty string yields the default.
func ParseSort(s string) (Sort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSort, nil
	}
	for _, candidate := range AllSorts() {
		if strings.EqualFold(s, string(candidate)) {
			return candidate, nil
		}
	}
	return "", pkgerrors.NewValidationErrorf("invalid sort %q", s)
}

// IsValid reports whether the ordering is supported
func (s Sort) IsValid() bool {
	for _, candidate := range AllSorts() {
		if s == candidate {
			return true
		}
	}
	return false
}

// Field returns the ordering key without its direction
func (s Sort) Field() string {
	return strings.TrimPrefix(string(s), "-")
}

// Descending reports whether the ordering is reversed
func (s Sort) Descending() bool {
	return strings.HasPrefix(string(s), "-")
}

func (s Sort) String() string {
	return string(s)
}

// Filter is the set of criteria used to narrow the recipe list.
// The zero value matches every recipe.
type Filter struct {
	Name        string                `json:"name,omitempty" yaml:"name,omitempty"`
	MaxDiet     valueobjects.Diet     `json:"diet,omitempty" yaml:"diet,omitempty"`
	MaxPrepTime valueobjects.PrepTime `json:"prepTime,omitempty" yaml:"prepTime,omitempty"`
	Tags        []string              `json:"tags,omitempty" yaml:"tags,omitempty"`
	Seasons     []valueobjects.Season `json:"seasons,omitempty" yaml:"seasons,omitempty"`
	Sort        Sort                  `json:"sort,omitempty" yaml:"sort,omitempty"`
}

// Normalize returns the canonical form of the filter: trimmed name,
// deduplicated tags, seasons in calendar order and an explicit sort.
func (f Filter) Normalize() Filter {
	out := Filter{
		Name:        strings.TrimSpace(f.Name),
		MaxDiet:     f.MaxDiet,
		MaxPrepTime: f.MaxPrepTime,
		Tags:        normalizeTags(f.Tags),
		Seasons:     normalizeSeasons(f.Seasons),
		Sort:        f.Sort,
	}
	if out.Sort == "" {
		out.Sort = DefaultSort
	}
	return out
}

// Validate checks every criterion and reports all invalid fields together
func (f Filter) Validate() error {
	verrs := pkgerrors.NewValidationErrors()

	if utf8.RuneCountInString(f.Name) > MaxNameLength {
		verrs.Addf("name", "name filter exceeds maximum length of %d characters", MaxNameLength)
	}
	if f.MaxDiet != "" && !f.MaxDiet.IsValid() {
		verrs.Addf("diet", "invalid diet %q", f.MaxDiet)
	}
	if f.MaxPrepTime != "" && !f.MaxPrepTime.IsValid() {
		verrs.Addf("prepTime", "invalid prep time %q", f.MaxPrepTime)
	}
	for _, tag := range f.Tags {
		if strings.Contains(tag, valueobjects.TagSeparator) {
			verrs.Addf("tags", "tag %q cannot contain %q", tag, valueobjects.TagSeparator)
		}
	}
	for _, season := range f.Seasons {
		if _, err := valueobjects.ParseSeason(string(season)); err != nil {
			verrs.Addf("seasons", "invalid season %q", season)
		}
	}
	if f.Sort != "" && !f.Sort.IsValid() {
		verrs.Addf("sort", "invalid sort %q", f.Sort)
	}

	return verrs.ErrOrNil()
}

// IsZero reports whether the filter narrows nothing and uses the default order
func (f Filter) IsZero() bool {
	n := f.Normalize()
	return n.Name == "" &&
		n.MaxDiet == "" &&
		n.MaxPrepTime == "" &&
		len(n.Tags) == 0 &&
		len(n.Seasons) == 0 &&
		n.Sort == DefaultSort
}

// Matches reports whether the recipe satisfies every criterion
func (f Filter) Matches(r *entities.Recipe) bool {
	if r == nil {
		return false
	}

	if name := strings.TrimSpace(f.Name); name != "" {
		if !strings.Contains(strings.ToLower(r.Name()), strings.ToLower(name)) {
			return false
		}
	}
	if f.MaxDiet != "" && !r.Diet().AtMost(f.MaxDiet) {
		return false
	}
	if f.MaxPrepTime != "" && !r.PrepTime().AtMost(f.MaxPrepTime) {
		return false
	}
	if tags := normalizeTags(f.Tags); len(tags) > 0 && !r.Tags().ContainsAll(tags) {
		return false
	}
	if seasons := normalizeSeasons(f.Seasons); len(seasons) > 0 && !r.Seasons().Any(seasons...) {
		return false
	}
	return true
}

// Less orders two recipes by the filter's sort. Ties fall back to the
// name and then the id so the order is total.
func (f Filter) Less(a, b *entities.Recipe) bool {
	s := f.Sort
	if s == "" {
		s = DefaultSort
	}

	var cmp int
	switch s.Field() {
	case "prepTime":
		cmp = a.PrepTime().Rank() - b.PrepTime().Rank()
	case "diet":
		cmp = a.Diet().Rank() - b.Diet().Rank()
	case "created":
		cmp = a.CreatedAt().Compare(b.CreatedAt())
	default:
		cmp = compareNames(a.Name(), b.Name())
	}
	if s.Descending() {
		cmp = -cmp
	}
	if cmp != 0 {
		return cmp < 0
	}

	if c := compareNames(a.Name(), b.Name()); c != 0 {
		return c < 0
	}
	return a.ID().String() < b.ID().String()
}

// Apply filters and orders recipes in memory
func (f Filter) Apply(recipes []*entities.Recipe) []*entities.Recipe {
	out := make([]*entities.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return f.Less(out[i], out[j])
	})
	return out
}

func compareNames(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeSeasons keeps known seasons only, in calendar order.
// Unknown names are left for Validate to report.
func normalizeSeasons(seasons []valueobjects.Season) []valueobjects.Season {
	if len(seasons) == 0 {
		return nil
	}
	var flags valueobjects.Seasons
	var unknown []valueobjects.Season
	for _, season := range seasons {
		parsed, err := valueobjects.ParseSeason(string(season))
		if err != nil {
			unknown = append(unknown, season)
			continue
		}
		flags = flags.With(parsed)
	}
	out := append(flags.List(), unknown...)
	if len(out) == 0 {
		return nil
	}
	return out
}
