package catalog

import (
	"context"
	"fmt"

	"github.com/amaumene/cinesync/internal/models"
	"gorm.io/gorm"
)

// averageRatingExpr is cast to a float so postgres returns double precision
// instead of numeric for an integer AVG.
const averageRatingExpr = "AVG(CAST(ratings.score AS FLOAT))"

// withAverageRating left-joins ratings and groups by movie so every matched
// movie yields exactly one row, with a NULL average when it has no ratings.
func withAverageRating(db *gorm.DB) *gorm.DB {
	return db.
		Select("movies.*, " + averageRatingExpr + " AS average_rating").
		Joins("LEFT JOIN ratings ON ratings.movie_id = movies.id").
		Group("movies.id")
}

// AverageRating returns the mean score of a movie, or nil when it has no ratings
func AverageRating(ctx context.Context, db *gorm.DB, movieID uint) (*float64, error) {
	var row struct {
		Average *float64
	}
	err := db.WithContext(ctx).
		Model(&models.Rating{}).
		Select(averageRatingExpr+" AS average").
		Where("ratings.movie_id = ?", movieID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute average rating: %w", err)
	}
	return row.Average, nil
}
