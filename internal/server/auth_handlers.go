package server

import (
	"errors"
	"log/slog"

	"chirp/internal/auth"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// authResponse is returned by register and login.
type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/auth/register
// @Summary User registration
// @Description Register a new user account and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string,display_name=string} true "Registration request"
// @Success 201 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	token, _, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate by username or email and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{login=string,password=string} true "Login credentials"
// @Success 200 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Login    string `json:"login"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// Older clients send email or username instead of login.
	identifier := req.Login
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		identifier = req.Username
	}

	user, err := s.userService.VerifyCredential(c.UserContext(), identifier, req.Password)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	token, _, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(authResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the presented session token
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	if err := s.tokens.Revoke(c.UserContext(), claims); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token"))
		}
		middleware.Logger.WarnContext(c.UserContext(), "token revocation failed",
			slog.String("error", err.Error()))
		return models.RespondWithAppError(c, models.NewStorageError(err))
	}

	return c.SendStatus(fiber.StatusNoContent)
}
