package server

import (
	"chirp/internal/feed"
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

type commentListResponse struct {
	Comments interface{} `json:"comments"`
	pageResponse
}

type commentThreadResponse struct {
	Comment interface{} `json:"comment"`
	Replies interface{} `json:"replies"`
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Description Adds a comment, optionally as a reply to another comment on the same post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body commentRequest true "Comment"
// @Success 201 {object} feed.LegacyComment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ParentID != nil && *req.ParentID == 0 {
		req.ParentID = nil
	}

	comment, err := s.commentService.Create(c.UserContext(), service.CreateCommentInput{
		Actor:    actor,
		PostID:   postID,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(s.renderComment(feed.ProjectComment(comment, actor.ID), actor.ID))
}

// GetComments handles GET /api/posts/:id/comments
// @Summary List comments on a post
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} commentListResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePage(c)
	viewer := viewerID(c)

	comments, total, err := s.commentService.ListByPost(c.UserContext(), postID, service.ListCommentsInput{
		Page:     page,
		ViewerID: viewer,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(commentListResponse{
		Comments:     s.renderComments(feed.ProjectComments(comments, viewer), viewer),
		pageResponse: newPageResponse(page, total),
	})
}

// GetUserComments handles GET /api/users/:id/comments
// @Summary List a user's comments
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} commentListResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/comments [get]
func (s *Server) GetUserComments(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePage(c)
	viewer := viewerID(c)

	comments, total, err := s.commentService.ListByAuthor(c.UserContext(), userID, service.ListCommentsInput{
		Page:     page,
		ViewerID: viewer,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(commentListResponse{
		Comments:     s.renderComments(feed.ProjectComments(comments, viewer), viewer),
		pageResponse: newPageResponse(page, total),
	})
}

// GetComment handles GET /api/comments/:id
// @Summary Get a comment with its direct replies
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} commentThreadResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer := viewerID(c)

	comment, replies, err := s.commentService.Get(c.UserContext(), id, viewer)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(commentThreadResponse{
		Comment: s.renderComment(feed.ProjectComment(comment, viewer), viewer),
		Replies: s.renderComments(feed.ProjectComments(replies, viewer), viewer),
	})
}

// GetReplies handles GET /api/comments/:id/replies
// @Summary List direct replies to a comment
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {array} feed.LegacyComment
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/replies [get]
func (s *Server) GetReplies(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer := viewerID(c)

	replies, err := s.commentService.ListReplies(c.UserContext(), id, viewer)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(s.renderComments(feed.ProjectComments(replies, viewer), viewer))
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit comment
// @Description Only the author may edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body commentRequest true "New content"
// @Success 200 {object} feed.LegacyComment
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.Update(c.UserContext(), service.UpdateCommentInput{
		Actor:     actor,
		CommentID: id,
		Content:   req.Content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(s.renderComment(feed.ProjectComment(comment, actor.ID), actor.ID))
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete comment
// @Description Deletes the comment and every reply beneath it
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{deleted=bool,id=int,removed=int}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	removed, err := s.commentService.Delete(c.UserContext(), actor, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"deleted": true, "id": id, "removed": removed})
}

// ToggleCommentLike handles POST /api/comments/:id/like
// @Summary Toggle like on a comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} models.LikeResult
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/like [post]
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	result, err := s.commentService.ToggleLike(c.UserContext(), actor, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(result)
}
