package controllers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/amaumene/cinesync/internal/catalog"
	"github.com/amaumene/cinesync/internal/errs"
	"github.com/amaumene/cinesync/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	MinScore = 1
	MaxScore = 10
)

// RatingController handles per-user movie scores
type RatingController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewRatingController creates a new rating controller
func NewRatingController(db *models.Database, logger *logrus.Logger) *RatingController {
	return &RatingController{
		db:     db,
		logger: logger,
	}
}

// RateMovie creates or replaces the user's score for a movie
func (c *RatingController) RateMovie(ctx context.Context, userID, movieID uint, score int) (*models.Rating, error) {
	if err := checkScore(score); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, c.db, userID); err != nil {
		return nil, err
	}
	if err := requireMovie(ctx, c.db, movieID); err != nil {
		return nil, err
	}

	rating, err := c.db.UpsertRating(ctx, userID, movieID, score)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"movie_id": movieID,
		"score":    score,
	}).Debug("Rated movie")

	return rating, nil
}

// UpdateRating changes the score of a rating owned by userID
func (c *RatingController) UpdateRating(ctx context.Context, userID, ratingID uint, score int) (*models.Rating, error) {
	if err := checkScore(score); err != nil {
		return nil, err
	}

	rating, err := c.ownedRating(ctx, userID, ratingID)
	if err != nil {
		return nil, err
	}

	if err := c.db.UpdateRatingScore(ctx, rating, score); err != nil {
		return nil, fmt.Errorf("failed to update rating: %w", err)
	}
	return rating, nil
}

// DeleteRating removes a rating owned by userID
func (c *RatingController) DeleteRating(ctx context.Context, userID, ratingID uint) error {
	rating, err := c.ownedRating(ctx, userID, ratingID)
	if err != nil {
		return err
	}

	if err := c.db.DeleteRating(ctx, rating.ID); err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	return nil
}

// GetUserRating returns the user's rating of a movie, nil when there is none
func (c *RatingController) GetUserRating(ctx context.Context, userID, movieID uint) (*models.Rating, error) {
	rating, err := c.db.GetRatingByUserAndMovie(ctx, userID, movieID)
	if models.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return rating, nil
}

// GetAverageRating returns the mean score of a movie, nil when unrated or unknown
func (c *RatingController) GetAverageRating(ctx context.Context, movieID uint) (*float64, error) {
	return catalog.AverageRating(ctx, c.db.Gorm(), movieID)
}

// ownedRating loads a rating and checks it belongs to userID
func (c *RatingController) ownedRating(ctx context.Context, userID, ratingID uint) (*models.Rating, error) {
	rating, err := c.db.GetRatingByID(ctx, ratingID)
	if models.IsNotFound(err) {
		return nil, &errs.NotFoundError{Resource: "rating", ID: formatID(ratingID)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	if rating.UserID != userID {
		c.logger.WithFields(logrus.Fields{
			"user_id":   userID,
			"rating_id": ratingID,
		}).Warn("Rejected rating change by non-owner")
		return nil, &errs.ForbiddenError{Message: "rating belongs to another user"}
	}
	return rating, nil
}

func requireUser(ctx context.Context, db *models.Database, userID uint) error {
	_, err := db.GetUserByID(ctx, userID)
	if models.IsNotFound(err) {
		return &errs.NotFoundError{Resource: "user", ID: formatID(userID)}
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	return nil
}

func checkScore(score int) error {
	if score < MinScore || score > MaxScore {
		return &errs.ValidationError{
			Field:   "score",
			Message: fmt.Sprintf("must be between %d and %d", MinScore, MaxScore),
		}
	}
	return nil
}

func requireMovie(ctx context.Context, db *models.Database, movieID uint) error {
	exists, err := db.MovieExists(ctx, movieID)
	if err != nil {
		return fmt.Errorf("failed to check movie: %w", err)
	}
	if !exists {
		return &errs.NotFoundError{Resource: "movie", ID: formatID(movieID)}
	}
	return nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
