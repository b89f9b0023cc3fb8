package queries

import (
	"fmt"

	"recipebook/domain/filter"
	"recipebook/pkg/common"
	"recipebook/pkg/utils"
)

// ListRecipesQuery represents a query for one page of filtered recipes
type ListRecipesQuery struct {
	Filter   filter.Filter `validate:"-"`
	Page     int           `json:"page" validate:"min=1"`
	PageSize int           `json:"pageSize" validate:"min=1,max=100"`
}

// Validate validates the ListRecipesQuery
func (q ListRecipesQuery) Validate() error {
	if err := q.Filter.Validate(); err != nil {
		return err
	}
	return utils.ValidateStruct(q)
}

// CacheKey is the filter's canonical query string plus the page, so equivalent
// filters share one entry
func (q ListRecipesQuery) CacheKey() string {
	return fmt.Sprintf("%s|%d|%d", filter.QueryString(q.Filter), q.Page, q.PageSize)
}

// ListRecipesResult represents one page of recipes
type ListRecipesResult struct {
	Items      []RecipeView          `json:"items" yaml:"items"`
	Pagination common.PaginationInfo `json:"pagination" yaml:"pagination"`
}
