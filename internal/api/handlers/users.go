package handlers

import (
	"github.com/amaumene/cinesync/internal/api/middleware"
	"github.com/amaumene/cinesync/internal/controllers"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UsersHandler serves registration, login and the current profile
type UsersHandler struct {
	userCtrl *controllers.UserController
	logger   *logrus.Logger
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(userCtrl *controllers.UserController, logger *logrus.Logger) *UsersHandler {
	return &UsersHandler{
		userCtrl: userCtrl,
		logger:   logger,
	}
}

// RegisterRequest is the body of POST /api/v1/auth/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the body of POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/v1/auth/register
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	user, err := h.userCtrl.Register(c.UserContext(), req.Email, req.Password, req.Name)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /api/v1/auth/login
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	session, err := h.userCtrl.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(session)
}

// Me handles GET /api/v1/users/me
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := h.userCtrl.Profile(c.UserContext(), userID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(user)
}

func userID(c *fiber.Ctx) uint {
	return middleware.UserID(c)
}
