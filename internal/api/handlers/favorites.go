package handlers

import (
	"github.com/amaumene/cinesync/internal/controllers"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// FavoritesHandler serves per-user favorites
type FavoritesHandler struct {
	favoriteCtrl *controllers.FavoriteController
	logger       *logrus.Logger
}

// NewFavoritesHandler creates a new favorites handler
func NewFavoritesHandler(favoriteCtrl *controllers.FavoriteController, logger *logrus.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		favoriteCtrl: favoriteCtrl,
		logger:       logger,
	}
}

// Add handles POST /api/v1/favorites/:movieId
func (h *FavoritesHandler) Add(c *fiber.Ctx) error {
	movieID, err := parseID(c, "movieId")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	favorite, err := h.favoriteCtrl.AddFavorite(c.UserContext(), userID(c), movieID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(favorite)
}

// Remove handles DELETE /api/v1/favorites/:movieId
func (h *FavoritesHandler) Remove(c *fiber.Ctx) error {
	movieID, err := parseID(c, "movieId")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	if err := h.favoriteCtrl.RemoveFavorite(c.UserContext(), userID(c), movieID); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List handles GET /api/v1/favorites
func (h *FavoritesHandler) List(c *fiber.Ctx) error {
	favorites, err := h.favoriteCtrl.ListFavorites(c.UserContext(), userID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(favorites)
}
