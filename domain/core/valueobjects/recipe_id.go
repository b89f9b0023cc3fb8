package valueobjects

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// RecipeID is a value object representing a unique recipe identifier.
// The catalog treats it as opaque; new identifiers are random UUIDs.
type RecipeID struct {
	value string
}

// NewRecipeID creates a new random RecipeID
func NewRecipeID() RecipeID {
	return RecipeID{value: uuid.New().String()}
}

// NewRecipeIDFromString creates a RecipeID from an existing string
func NewRecipeIDFromString(id string) (RecipeID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return RecipeID{}, errors.New("recipe ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return RecipeID{}, errors.New("recipe ID must be a valid UUID")
	}
	return RecipeID{value: id}, nil
}

// String returns the string representation of the RecipeID
func (id RecipeID) String() string {
	return id.value
}

// Equals checks if two RecipeIDs are equal
func (id RecipeID) Equals(other RecipeID) bool {
	return id.value == other.value
}

// IsZero checks if the RecipeID is the zero value
func (id RecipeID) IsZero() bool {
	return id.value == ""
}

// MarshalText implements encoding.TextMarshaler
func (id RecipeID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *RecipeID) UnmarshalText(data []byte) error {
	parsed, err := NewRecipeIDFromString(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
