package server

import (
	"chirp/internal/featureflags"
	"chirp/internal/feed"

	"github.com/gofiber/fiber/v2"
)

// legacyAliases reports whether payloads for viewer carry the duplicated
// field names older clients read.
func (s *Server) legacyAliases(viewer uint) bool {
	return s.flags.EnabledOr(featureflags.LegacyAliases, viewer, true)
}

func (s *Server) renderPost(view feed.PostView, viewer uint) interface{} {
	if s.legacyAliases(viewer) {
		return view.Legacy()
	}
	return view
}

func (s *Server) renderPosts(views []feed.PostView, viewer uint) interface{} {
	if s.legacyAliases(viewer) {
		return feed.LegacyPosts(views)
	}
	return views
}

func (s *Server) renderComment(view feed.CommentView, viewer uint) interface{} {
	if s.legacyAliases(viewer) {
		return view.Legacy()
	}
	return view
}

func (s *Server) renderComments(views []feed.CommentView, viewer uint) interface{} {
	if s.legacyAliases(viewer) {
		return feed.LegacyComments(views)
	}
	return views
}

// GetFeatures handles GET /api/features
// @Summary Feature flags for the caller
// @Description Evaluated feature flags; partial rollouts apply only to signed-in users
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /features [get]
func (s *Server) GetFeatures(c *fiber.Ctx) error {
	return c.JSON(s.flags.Snapshot(viewerID(c)))
}
