package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/service"
	"github.com/mentorlink/mentorlink-api/internal/utils"
)

// RequestHandler wires mentoring-request routes.
type RequestHandler struct {
	service service.RequestService
	logger  zerolog.Logger
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service service.RequestService, logger zerolog.Logger) *RequestHandler {
	return &RequestHandler{
		service: service,
		logger:  logger.With().Str("component", "request_handler").Logger(),
	}
}

// Register attaches request endpoints to the router group.
func (h *RequestHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/user/:userId", h.listForUser)
	router.Put("/:requestId", h.transition)
	router.Delete("/:requestId", h.cancel)
}

func (h *RequestHandler) create(c *fiber.Ctx) error {
	var payload dto.RequestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "mentoring request created", request)
}

func (h *RequestHandler) listForUser(c *fiber.Ctx) error {
	requests, err := h.service.ListForUser(requestContext(c), c.Params("userId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "mentoring requests retrieved", requests)
}

func (h *RequestHandler) transition(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "requestId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RequestStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.service.Transition(requestContext(c), id, payload.Status)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "mentoring request updated", request)
}

func (h *RequestHandler) cancel(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "requestId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	request, err := h.service.Cancel(requestContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "mentoring request cancelled", request)
}

func (h *RequestHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "mentoring request not found")
	case errors.Is(err, service.ErrMentorNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "mentor not found")
	case errors.Is(err, service.ErrMenteeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "mentee not found")
	case errors.Is(err, service.ErrRequestPending):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRequestResolved):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidRequestStatus), isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *RequestHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
