package server

import (
	"errors"
	"strings"
	"unicode"

	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// pageResponse is the pagination envelope shared by list endpoints.
type pageResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func newPageResponse(page service.Page, total int64) pageResponse {
	page = page.Normalize()
	return pageResponse{
		Page:       page.Number,
		Limit:      page.Size,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}
}

// parsePage extracts the page and limit query parameters, clamped to the
// service bounds.
func parsePage(c *fiber.Ctx) service.Page {
	return service.Page{
		Number: c.QueryInt("page", 1),
		Size:   c.QueryInt("limit", service.DefaultPageSize),
	}.Normalize()
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "userId" -> "Invalid user ID", "commentId" -> "Invalid comment ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// actor resolves the acting identity of an authenticated request. A token
// whose account was removed or deactivated is rejected here.
// On failure it writes the error response and returns errResponseWritten.
func (s *Server) actor(c *fiber.Ctx) (models.Actor, error) {
	actor, err := s.userService.ResolveActor(c.UserContext(), middleware.UserID(c))
	if err != nil {
		_ = models.RespondWithAppError(c, err)
		return models.Actor{}, errResponseWritten
	}
	if !actor.Authenticated() {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
		return models.Actor{}, errResponseWritten
	}
	return actor, nil
}

// viewerID returns the optional viewer of a read request, 0 when anonymous.
func viewerID(c *fiber.Ctx) uint {
	return middleware.UserID(c)
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	// Split on camelCase boundary before the trailing "Id" suffix.
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}
