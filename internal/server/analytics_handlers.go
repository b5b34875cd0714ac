package server

import (
	"github.com/kanishk-8/EcoCircle/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetDailyAnalytics handles GET /api/analytics/daily.
func (s *Server) GetDailyAnalytics(c *fiber.Ctx) error {
	if s.session == nil {
		return models.RespondWithError(c, models.NewNotAuthenticatedError())
	}

	daily, err := s.analytics.Today(c.UserContext(), s.session.UserID)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	return c.JSON(daily)
}
