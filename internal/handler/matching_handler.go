package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorlink/mentorlink-api/internal/service"
	"github.com/mentorlink/mentorlink-api/internal/utils"
)

// MatchingHandler exposes the mentor-ranking endpoint.
type MatchingHandler struct {
	service service.MatchingService
	logger  zerolog.Logger
}

// NewMatchingHandler constructs the handler.
func NewMatchingHandler(service service.MatchingService, logger zerolog.Logger) *MatchingHandler {
	return &MatchingHandler{
		service: service,
		logger:  logger.With().Str("component", "matching_handler").Logger(),
	}
}

// Register attaches matching endpoints to the router group.
func (h *MatchingHandler) Register(router fiber.Router) {
	router.Get("/mentors/:menteeId", h.rankMentors)
}

func (h *MatchingHandler) rankMentors(c *fiber.Ctx) error {
	result, err := h.service.RankMentors(requestContext(c), c.Params("menteeId"))
	if err != nil {
		if errors.Is(err, service.ErrMenteeNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "mentee not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "mentor matches retrieved", result)
}
