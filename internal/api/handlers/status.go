package handlers

import (
	"github.com/amaumene/cinesync/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	Database  string `json:"database"`
	Movies    int64  `json:"movies"`
	Users     int64  `json:"users"`
	Ratings   int64  `json:"ratings"`
	Favorites int64  `json:"favorites"`
}

// Get handles the status endpoint
func (h *StatusHandler) Get(c *fiber.Ctx) error {
	counts, err := h.db.CountAll(c.UserContext())
	if err != nil {
		h.logger.WithError(err).Error("Failed to count catalog rows")
		return writeError(c, h.logger, err)
	}

	return c.JSON(StatusResponse{
		Database:  string(h.db.Driver()),
		Movies:    counts.Movies,
		Users:     counts.Users,
		Ratings:   counts.Ratings,
		Favorites: counts.Favorites,
	})
}
