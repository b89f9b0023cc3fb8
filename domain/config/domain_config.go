package config

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Recipe constraints
	MinNameLength  int
	MaxNameLength  int
	MaxNotesLength int

	// Tag constraints
	MaxTagsPerRecipe int
	MaxTagLength     int

	// Source constraints
	MaxSourceTitleLength int
	MaxSourceURLLength   int

	// Listing limits
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinNameLength:  1,
		MaxNameLength:  200,
		MaxNotesLength: 20000,

		MaxTagsPerRecipe: 30,
		MaxTagLength:     50,

		MaxSourceTitleLength: 200,
		MaxSourceURLLength:   2048,

		DefaultPageSize: 50,
		MaxPageSize:     100,
	}
}

// ProductionDomainConfig returns production-specific configuration.
// Field limits match the published API schema in every environment.
func ProductionDomainConfig() *DomainConfig {
	return DefaultDomainConfig()
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}
