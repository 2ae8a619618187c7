package controllers

import (
	"context"
	"fmt"

	"github.com/amaumene/cinesync/internal/errs"
	"github.com/amaumene/cinesync/internal/models"
	"github.com/sirupsen/logrus"
)

// FavoriteController handles per-user favorite movies
type FavoriteController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewFavoriteController creates a new favorite controller
func NewFavoriteController(db *models.Database, logger *logrus.Logger) *FavoriteController {
	return &FavoriteController{
		db:     db,
		logger: logger,
	}
}

// AddFavorite marks a movie as a favorite of userID.
// Adding a movie that is already a favorite returns the existing row.
func (c *FavoriteController) AddFavorite(ctx context.Context, userID, movieID uint) (*models.Favorite, error) {
	if err := requireUser(ctx, c.db, userID); err != nil {
		return nil, err
	}
	if err := requireMovie(ctx, c.db, movieID); err != nil {
		return nil, err
	}

	existing, err := c.db.GetFavorite(ctx, userID, movieID)
	if err == nil {
		return existing, nil
	}
	if !models.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get favorite: %w", err)
	}

	favorite := &models.Favorite{UserID: userID, MovieID: movieID}
	if err := c.db.CreateFavorite(ctx, favorite); err != nil {
		// A concurrent add won the race
		if models.IsUniqueViolation(err) {
			return c.db.GetFavorite(ctx, userID, movieID)
		}
		return nil, fmt.Errorf("failed to save favorite: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"movie_id": movieID,
	}).Debug("Added favorite")

	return favorite, nil
}

// RemoveFavorite deletes the favorite linking userID to movieID.
// The row is looked up by owner, so another user's favorite reads as not found.
func (c *FavoriteController) RemoveFavorite(ctx context.Context, userID, movieID uint) error {
	favorite, err := c.db.GetFavorite(ctx, userID, movieID)
	if models.IsNotFound(err) {
		return &errs.NotFoundError{Resource: "favorite", ID: formatID(movieID)}
	}
	if err != nil {
		return fmt.Errorf("failed to get favorite: %w", err)
	}

	if err := c.db.DeleteFavorite(ctx, favorite.ID); err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}

// ListFavorites returns the user's favorites with their movies, newest first
func (c *FavoriteController) ListFavorites(ctx context.Context, userID uint) ([]*models.Favorite, error) {
	favorites, err := c.db.ListFavoritesWithMovies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}
