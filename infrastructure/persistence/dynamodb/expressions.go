package dynamodb

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"

	"recipebook/domain/core/valueobjects"
	"recipebook/domain/filter"
)

var seasonAttributes = map[valueobjects.Season]string{
	valueobjects.SeasonSpring: "Spring",
	valueobjects.SeasonSummer: "Summer",
	valueobjects.SeasonFall:   "Fall",
	valueobjects.SeasonWinter: "Winter",
}

// filterCondition translates a normalized filter into a scan filter.
// Recipe items are always selected by entity type so the table can be shared.
func filterCondition(f filter.Filter) expression.ConditionBuilder {
	conds := []expression.ConditionBuilder{
		expression.Name("EntityType").Equal(expression.Value(recipeEntityType)),
	}

	if f.Name != "" {
		conds = append(conds, expression.Name("NameLower").Contains(strings.ToLower(f.Name)))
	}
	if f.MaxDiet != "" {
		conds = append(conds, expression.Name("DietRank").LessThanEqual(expression.Value(f.MaxDiet.Rank())))
	}
	if f.MaxPrepTime != "" {
		conds = append(conds, expression.Name("PrepRank").LessThanEqual(expression.Value(f.MaxPrepTime.Rank())))
	}
	for _, tag := range f.Tags {
		conds = append(conds, expression.Name("Tags").Contains(tag))
	}

	var seasons []expression.ConditionBuilder
	for _, season := range f.Seasons {
		if attr, ok := seasonAttributes[season]; ok {
			seasons = append(seasons, expression.Name(attr).Equal(expression.Value(true)))
		}
	}
	switch len(seasons) {
	case 0:
	case 1:
		conds = append(conds, seasons[0])
	default:
		conds = append(conds, expression.Or(seasons[0], seasons[1], seasons[2:]...))
	}

	if len(conds) == 1 {
		return conds[0]
	}
	return expression.And(conds[0], conds[1], conds[2:]...)
}

func buildScanExpression(f filter.Filter) (expression.Expression, error) {
	return expression.NewBuilder().WithFilter(filterCondition(f)).Build()
}
