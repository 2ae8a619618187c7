package handlers

import (
	"github.com/amaumene/cinesync/internal/controllers"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RatingsHandler serves per-user movie ratings
type RatingsHandler struct {
	ratingCtrl *controllers.RatingController
	logger     *logrus.Logger
}

// NewRatingsHandler creates a new ratings handler
func NewRatingsHandler(ratingCtrl *controllers.RatingController, logger *logrus.Logger) *RatingsHandler {
	return &RatingsHandler{
		ratingCtrl: ratingCtrl,
		logger:     logger,
	}
}

// RateRequest is the body of POST /api/v1/ratings/rate
type RateRequest struct {
	MovieID uint `json:"movieId"`
	Score   int  `json:"score"`
}

// ScoreRequest is the body of PUT /api/v1/ratings/:id
type ScoreRequest struct {
	Score int `json:"score"`
}

// Rate handles POST /api/v1/ratings/rate
func (h *RatingsHandler) Rate(c *fiber.Ctx) error {
	var req RateRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	rating, err := h.ratingCtrl.RateMovie(c.UserContext(), userID(c), req.MovieID, req.Score)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rating)
}

// Update handles PUT /api/v1/ratings/:id
func (h *RatingsHandler) Update(c *fiber.Ctx) error {
	ratingID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	var req ScoreRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	rating, err := h.ratingCtrl.UpdateRating(c.UserContext(), userID(c), ratingID, req.Score)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(rating)
}

// Delete handles DELETE /api/v1/ratings/:id
func (h *RatingsHandler) Delete(c *fiber.Ctx) error {
	ratingID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	if err := h.ratingCtrl.DeleteRating(c.UserContext(), userID(c), ratingID); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UserRating handles GET /api/v1/ratings/movie/:movieId/user.
// Answers null when the user has not rated the movie.
func (h *RatingsHandler) UserRating(c *fiber.Ctx) error {
	movieID, err := parseID(c, "movieId")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	rating, err := h.ratingCtrl.GetUserRating(c.UserContext(), userID(c), movieID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(rating)
}

// Average handles GET /api/v1/ratings/movie/:movieId/average
func (h *RatingsHandler) Average(c *fiber.Ctx) error {
	movieID, err := parseID(c, "movieId")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	avg, err := h.ratingCtrl.GetAverageRating(c.UserContext(), movieID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"movieId":       movieID,
		"averageRating": avg,
	})
}
