package valueobjects

import (
	"fmt"
	"strings"
)

// PrepTime is the preparation-time bucket of a recipe
type PrepTime string

const (
	PrepTimeUnder15 PrepTime = "under15"
	PrepTime15To30  PrepTime = "15to30"
	PrepTime30To60  PrepTime = "30to60"
	PrepTimeOver60  PrepTime = "over60"
)

var prepTimeRanks = map[PrepTime]int{
	PrepTimeUnder15: 1,
	PrepTime15To30:  2,
	PrepTime30To60:  3,
	PrepTimeOver60:  4,
}

var prepTimeLabels = map[PrepTime]string{
	PrepTimeUnder15: "< 15 min",
	PrepTime15To30:  "15-30 min",
	PrepTime30To60:  "30-60 min",
	PrepTimeOver60:  "> 60 min",
}

// AllPrepTimes returns every bucket from fastest to slowest
func AllPrepTimes() []PrepTime {
	return []PrepTime{PrepTimeUnder15, PrepTime15To30, PrepTime30To60, PrepTimeOver60}
}

// ParsePrepTime parses a bucket name, case-insensitively
func ParsePrepTime(s string) (PrepTime, error) {
	p := PrepTime(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		names := make([]string, 0, len(prepTimeRanks))
		for _, pt := range AllPrepTimes() {
			names = append(names, string(pt))
		}
		return "", fmt.Errorf("invalid prep time %q: must be one of %s", s, strings.Join(names, ", "))
	}
	return p, nil
}

// IsValid reports whether p is a known bucket
func (p PrepTime) IsValid() bool {
	_, ok := prepTimeRanks[p]
	return ok
}

// Rank returns the ordering position of the bucket, 0 for unknown values
func (p PrepTime) Rank() int {
	return prepTimeRanks[p]
}

// AtMost reports whether p is no slower than max
func (p PrepTime) AtMost(max PrepTime) bool {
	return p.IsValid() && max.IsValid() && p.Rank() <= max.Rank()
}

// Label returns a human readable range
func (p PrepTime) Label() string {
	if l, ok := prepTimeLabels[p]; ok {
		return l
	}
	return string(p)
}

// String returns the bucket name
func (p PrepTime) String() string {
	return string(p)
}
