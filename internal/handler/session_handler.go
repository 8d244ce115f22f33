package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/service"
	"github.com/mentorlink/mentorlink-api/internal/utils"
)

// SessionHandler wires session lifecycle routes.
type SessionHandler struct {
	service service.SessionService
	logger  zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register attaches session endpoints to the router group.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/user/:userId/stats", h.stats)
	router.Get("/user/:userId", h.listForUser)
	router.Get("/:sessionId", h.get)
	router.Patch("/:sessionId", h.update)
	router.Put("/:sessionId/complete", h.complete)
	router.Delete("/:sessionId", h.cancel)
}

func (h *SessionHandler) create(c *fiber.Ctx) error {
	var payload dto.SessionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session scheduled", session)
}

func (h *SessionHandler) listForUser(c *fiber.Ctx) error {
	sessions, err := h.service.ListForUser(requestContext(c), c.Params("userId"), c.Query("status"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "sessions retrieved", sessions)
}

func (h *SessionHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(requestContext(c), c.Params("userId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session stats retrieved", stats)
}

func (h *SessionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "sessionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := h.service.Get(requestContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session retrieved", session)
}

func (h *SessionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "sessionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SessionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Update(requestContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session updated", session)
}

func (h *SessionHandler) complete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "sessionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SessionCompleteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Complete(requestContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session completed", session)
}

func (h *SessionHandler) cancel(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "sessionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SessionCancelRequest
	if err := c.BodyParser(&payload); err != nil {
		payload = dto.SessionCancelRequest{}
	}

	session, err := h.service.Cancel(requestContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session cancelled", session)
}

func (h *SessionHandler) handleError(c *fiber.Ctx, err error) error {
	var parseErr *time.ParseError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrMentorNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "mentor not found")
	case errors.Is(err, service.ErrMenteeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "mentee not found")
	case errors.Is(err, service.ErrSessionResolved), errors.Is(err, service.ErrSessionCancelled):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmptySessionUpdate),
		errors.As(err, &parseErr),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *SessionHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
