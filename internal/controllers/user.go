package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/amaumene/cinesync/internal/errs"
	"github.com/amaumene/cinesync/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bytes, bcrypt rejects longer input
)

// ErrBadCredentials is returned by Login for an unknown email or wrong password
var ErrBadCredentials = errors.New("invalid email or password")

// TokenIssuer signs bearer tokens for authenticated users
type TokenIssuer interface {
	Issue(userID uint) (string, error)
}

// Session is the result of a successful login
type Session struct {
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

// UserController handles registration, login and profiles
type UserController struct {
	db     *models.Database
	tokens TokenIssuer
	logger *logrus.Logger
}

// NewUserController creates a new user controller
func NewUserController(db *models.Database, tokens TokenIssuer, logger *logrus.Logger) *UserController {
	return &UserController{
		db:     db,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a user with a bcrypt password hash
func (c *UserController) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, &errs.ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	if len(password) < minPasswordLength {
		return nil, &errs.ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if len(password) > maxPasswordLength {
		return nil, &errs.ValidationError{Field: "password", Message: fmt.Sprintf("must be at most %d bytes", maxPasswordLength)}
	}
	if name == "" {
		return nil, &errs.ValidationError{Field: "name", Message: "must not be empty"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: string(hash), Name: name}
	if err := c.db.CreateUser(ctx, user); err != nil {
		if models.IsUniqueViolation(err) {
			return nil, &errs.ConflictError{Message: "email is already registered"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	c.logger.WithField("user_id", user.ID).Info("Registered user")
	return user, nil
}

// Login checks the password and issues a bearer token
func (c *UserController) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := c.db.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if models.IsNotFound(err) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	token, err := c.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &Session{AccessToken: token, User: user}, nil
}

// Profile returns the user behind an authenticated request
func (c *UserController) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := c.db.GetUserByID(ctx, userID)
	if models.IsNotFound(err) {
		return nil, &errs.NotFoundError{Resource: "user", ID: formatID(userID)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
