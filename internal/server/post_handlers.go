package server

import (
	"chirp/internal/feed"
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Content string `json:"content"`
}

type postListResponse struct {
	Posts interface{} `json:"posts"`
	pageResponse
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Reverse-chronological feed of all posts
// @Tags posts
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} postListResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePage(c)
	viewer := viewerID(c)

	posts, total, err := s.postService.List(c.UserContext(), service.ListPostsInput{
		Page:     page,
		ViewerID: viewer,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(postListResponse{
		Posts:        s.renderPosts(feed.ProjectPosts(posts, viewer), viewer),
		pageResponse: newPageResponse(page, total),
	})
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} feed.LegacyPost
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer := viewerID(c)

	post, err := s.postService.Get(c.UserContext(), id, viewer)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(s.renderPost(feed.ProjectPost(post, viewer), viewer))
}

// GetUserPosts handles GET /api/users/:id/posts
// @Summary List a user's posts
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} postListResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePage(c)
	viewer := viewerID(c)

	posts, total, err := s.postService.List(c.UserContext(), service.ListPostsInput{
		Page:     page,
		ViewerID: viewer,
		AuthorID: authorID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(postListResponse{
		Posts:        s.renderPosts(feed.ProjectPosts(posts, viewer), viewer),
		pageResponse: newPageResponse(page, total),
	})
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body postRequest true "Post content"
// @Success 201 {object} feed.LegacyPost
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		Actor:   actor,
		Content: req.Content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(s.renderPost(feed.ProjectPost(post, actor.ID), actor.ID))
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Edit post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body postRequest true "New content"
// @Success 200 {object} feed.LegacyPost
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Update(c.UserContext(), service.UpdatePostInput{
		Actor:   actor,
		PostID:  id,
		Content: req.Content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(s.renderPost(feed.ProjectPost(post, actor.ID), actor.ID))
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Description Deletes the post together with its comments and likes
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{deleted=bool,id=int}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.UserContext(), actor, id); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"deleted": true, "id": id})
}

// TogglePostLike handles POST /api/posts/:id/like
// @Summary Toggle like on a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.LikeResult
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleLike(c.UserContext(), actor, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(result)
}
