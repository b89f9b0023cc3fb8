package gormstore

import (
	"strings"

	"gorm.io/gorm"

	"recipebook/domain/core/valueobjects"
	"recipebook/domain/filter"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes the LIKE wildcards so the name filter is a plain substring
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var seasonColumns = map[valueobjects.Season]string{
	valueobjects.SeasonSpring: "spring",
	valueobjects.SeasonSummer: "summer",
	valueobjects.SeasonFall:   "fall",
	valueobjects.SeasonWinter: "winter",
}

// applyFilter narrows a recipes query to the rows matching f.
// f must be normalized and valid.
func applyFilter(db *gorm.DB, f filter.Filter) *gorm.DB {
	if f.Name != "" {
		db = db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Name))+"%")
	}
	if f.MaxDiet != "" {
		db = db.Where("diet_rank <= ?", f.MaxDiet.Rank())
	}
	if f.MaxPrepTime != "" {
		db = db.Where("prep_rank <= ?", f.MaxPrepTime.Rank())
	}
	for _, tag := range f.Tags {
		db = db.Where("EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.recipe_id = recipes.id AND rt.tag = ?)", tag)
	}

	if len(f.Seasons) > 0 {
		var seasons *gorm.DB
		for _, season := range f.Seasons {
			column, ok := seasonColumns[season]
			if !ok {
				continue
			}
			cond := column + " = ?"
			if seasons == nil {
				seasons = db.Session(&gorm.Session{NewDB: true}).Where(cond, true)
			} else {
				seasons = seasons.Or(cond, true)
			}
		}
		if seasons != nil {
			db = db.Where(seasons)
		}
	}

	return db
}

var orderColumns = map[string]string{
	"name":     "LOWER(name)",
	"prepTime": "prep_rank",
	"diet":     "diet_rank",
	"created":  "created_at",
}

// applyOrder sorts by the filter's ordering and breaks ties by name then id,
// the same total order filter.Less defines
func applyOrder(db *gorm.DB, s filter.Sort) *gorm.DB {
	if !s.IsValid() {
		s = filter.DefaultSort
	}
	dir := "ASC"
	if s.Descending() {
		dir = "DESC"
	}

	if s.Field() == "name" {
		return db.Order("LOWER(name) " + dir).Order("name " + dir).Order("id ASC")
	}
	return db.Order(orderColumns[s.Field()] + " " + dir).
		Order("LOWER(name) ASC").
		Order("name ASC").
		Order("id ASC")
}
