package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/service"
	"github.com/mentorlink/mentorlink-api/internal/utils"
)

// AuthHandler wires registration and login routes.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth endpoints to the router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Register(requestContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, "email already registered")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", result)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Login(requestContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid email or password")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccess(c, "login successful", result)
}

func (h *AuthHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
