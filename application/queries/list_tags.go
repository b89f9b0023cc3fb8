package queries

// ListTagsQuery asks for every distinct tag in the catalog
type ListTagsQuery struct{}

// Validate validates the ListTagsQuery
func (q ListTagsQuery) Validate() error {
	return nil
}

// CacheKey is constant; there is one tag list
func (q ListTagsQuery) CacheKey() string {
	return "all"
}

// ListTagsResult holds the distinct tags in sorted order
type ListTagsResult struct {
	Tags []string `json:"tags" yaml:"tags"`
}
