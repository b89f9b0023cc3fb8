package valueobjects

import (
	"strings"
	"unicode/utf8"

	"recipebook/domain/config"
	pkgerrors "recipebook/pkg/errors"
)

// TagSeparator joins tags in filter URLs and so cannot appear inside a tag
const TagSeparator = ","

// Tags is an ordered, duplicate-free list of free-text labels
type Tags struct {
	values []string
}

// NewTags normalizes raw tags using the default domain configuration
func NewTags(raw []string) (Tags, error) {
	return NewTagsWithConfig(raw, config.DefaultDomainConfig())
}

// NewTagsWithConfig trims every tag, drops empty ones and removes duplicates.
// The first occurrence of a tag keeps its position.
func NewTagsWithConfig(raw []string, cfg *config.DomainConfig) (Tags, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	values := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		if strings.Contains(tag, TagSeparator) {
			return Tags{}, pkgerrors.NewValidationErrorf("tag %q cannot contain %q", tag, TagSeparator)
		}
		if utf8.RuneCountInString(tag) > cfg.MaxTagLength {
			return Tags{}, pkgerrors.NewValidationErrorf("tag %q exceeds maximum length of %d characters", tag, cfg.MaxTagLength)
		}
		seen[tag] = struct{}{}
		values = append(values, tag)
	}

	if len(values) > cfg.MaxTagsPerRecipe {
		return Tags{}, pkgerrors.NewValidationErrorf("a recipe can have at most %d tags", cfg.MaxTagsPerRecipe)
	}

	return Tags{values: values}, nil
}

// Values returns a copy of the tags
func (t Tags) Values() []string {
	out := make([]string, len(t.values))
	copy(out, t.values)
	return out
}

// Contains reports whether the tag is present
func (t Tags) Contains(tag string) bool {
	for _, v := range t.values {
		if v == tag {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every given tag is present
func (t Tags) ContainsAll(tags []string) bool {
	for _, tag := range tags {
		if !t.Contains(tag) {
			return false
		}
	}
	return true
}

// Len returns the number of tags
func (t Tags) Len() int {
	return len(t.values)
}

// Equals compares two tag lists including order
func (t Tags) Equals(other Tags) bool {
	if len(t.values) != len(other.values) {
		return false
	}
	for i := range t.values {
		if t.values[i] != other.values[i] {
			return false
		}
	}
	return true
}
