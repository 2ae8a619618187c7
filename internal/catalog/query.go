package catalog

import (
	"github.com/amaumene/cinesync/internal/models"
	"gorm.io/gorm"
)

// MovieResult is one listed movie with its average user rating
type MovieResult struct {
	models.Movie
	AverageRating *float64 `gorm:"column:average_rating" json:"averageRating"`
}

// windowedQuery selects one page of movies with their aggregate.
// Ordering is popularity DESC with id ASC as tie-break so pages are stable.
func windowedQuery(db *gorm.DB, predicates []Predicate, spec FilterSpec) *gorm.DB {
	q := applyAll(db.Model(&models.Movie{}), predicates)
	return withAverageRating(q).
		Order("movies.popularity DESC").
		Order("movies.id ASC").
		Offset(spec.Offset()).
		Limit(spec.Limit)
}

// countQuery counts every row the windowed query could return across all pages.
// No join, grouping, ordering or pagination here.
func countQuery(db *gorm.DB, predicates []Predicate) *gorm.DB {
	return applyAll(db.Model(&models.Movie{}), predicates)
}
