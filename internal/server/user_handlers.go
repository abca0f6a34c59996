package server

import (
	"context"
	"time"

	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// publicProfile is the view of a user served to anyone. Email and login
// metadata stay private to the account holder.
type publicProfile struct {
	ID             uint                  `json:"id"`
	Username       string                `json:"username"`
	DisplayName    string                `json:"display_name"`
	Bio            string                `json:"bio"`
	Location       string                `json:"location"`
	Website        string                `json:"website"`
	AvatarURL      string                `json:"avatar_url"`
	Membership     models.MembershipTier `json:"membership"`
	FollowersCount int                   `json:"followers_count"`
	FollowingCount int                   `json:"following_count"`
	CreatedAt      time.Time             `json:"created_at"`
}

func toPublicProfile(u *models.User) publicProfile {
	return publicProfile{
		ID:             u.ID,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		Bio:            u.Bio,
		Location:       u.Location,
		Website:        u.Website,
		AvatarURL:      u.AvatarURL,
		Membership:     u.Membership,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		CreatedAt:      u.CreatedAt.UTC(),
	}
}

type profileRequest struct {
	DisplayName *string                `json:"display_name"`
	Bio         *string                `json:"bio"`
	Location    *string                `json:"location"`
	Website     *string                `json:"website"`
	AvatarURL   *string                `json:"avatar_url"`
	Membership  *models.MembershipTier `json:"membership"`
}

func (r profileRequest) input(userID uint) service.UpdateProfileInput {
	return service.UpdateProfileInput{
		UserID:      userID,
		DisplayName: r.DisplayName,
		Bio:         r.Bio,
		Location:    r.Location,
		Website:     r.Website,
		AvatarURL:   r.AvatarURL,
		Membership:  r.Membership,
	}
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} publicProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.FindByID(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(toPublicProfile(user))
}

// GetMyProfile handles GET /api/auth/me and GET /api/users/me
// @Summary Get current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	user, err := s.userService.FindByID(c.UserContext(), actor.ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update current user profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body profileRequest true "Profile fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	return s.updateProfile(c, actor, actor.ID)
}

// UpdateUser handles PUT /api/users/:id
// @Summary Update a user profile
// @Description Administrators may edit any profile, including the membership tier
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body profileRequest true "Profile fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	return s.updateProfile(c, actor, id)
}

func (s *Server) updateProfile(c *fiber.Ctx, actor models.Actor, userID uint) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), actor, req.input(userID))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(user)
}

// ChangePassword handles PUT /api/users/me/password
// @Summary Change password
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param request body object{current_password=string,new_password=string} true "Passwords"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me/password [put]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.ChangePassword(c.UserContext(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DeactivateMe handles DELETE /api/users/me
// @Summary Deactivate own account
// @Tags users
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [delete]
func (s *Server) DeactivateMe(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	return s.deactivate(c, actor, actor.ID)
}

// DeactivateUser handles DELETE /api/users/:id
// @Summary Deactivate an account
// @Description Administrators may deactivate any account
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeactivateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	return s.deactivate(c, actor, id)
}

func (s *Server) deactivate(c *fiber.Ctx, actor models.Actor, userID uint) error {
	if err := s.userService.Deactivate(c.UserContext(), actor, userID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// FollowUser handles POST /api/users/:id/follow
// @Summary Follow a user
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	if err := s.userService.Follow(c.UserContext(), actor, id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnfollowUser handles DELETE /api/users/:id/follow
// @Summary Unfollow a user
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	if err := s.userService.Unfollow(c.UserContext(), actor, id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollowers handles GET /api/users/:id/followers
// @Summary List followers
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {array} publicProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	return s.listFollowEdge(c, s.userService.Followers)
}

// GetFollowing handles GET /api/users/:id/following
// @Summary List followed accounts
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {array} publicProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	return s.listFollowEdge(c, s.userService.Following)
}

type followLister func(ctx context.Context, userID uint, page service.Page) ([]models.User, error)

func (s *Server) listFollowEdge(c *fiber.Ctx, list followLister) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := list(c.UserContext(), id, parsePage(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	profiles := make([]publicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, toPublicProfile(&users[i]))
	}
	return c.JSON(profiles)
}
