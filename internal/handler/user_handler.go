package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/service"
	"github.com/mentorlink/mentorlink-api/internal/utils"
)

// UserHandler wires profile, avatar and learning-skill routes.
type UserHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(service service.ProfileService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches user endpoints to the router group.
func (h *UserHandler) Register(router fiber.Router) {
	router.Post("/mentee/skills", h.addLearningSkill)
	router.Get("/mentee/:userId/skills", h.listLearningSkills)
	router.Delete("/mentee/skills/:skillId", h.removeLearningSkill)
	router.Get("/:userId", h.get)
	router.Put("/:userId/profile", h.updateProfile)
	router.Post("/:userId/avatar", h.uploadAvatar)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	user, err := h.service.GetUser(requestContext(c), c.Params("userId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) updateProfile(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.UpdateProfile(requestContext(c), c.Params("userId"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile updated", user)
}

func (h *UserHandler) uploadAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "avatar file is required")
	}

	user, err := h.service.UploadAvatar(requestContext(c), c.Params("userId"), file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "avatar uploaded", user)
}

func (h *UserHandler) addLearningSkill(c *fiber.Ctx) error {
	var payload dto.LearningSkillCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	skill, err := h.service.AddLearningSkill(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "learning skill added", skill)
}

func (h *UserHandler) listLearningSkills(c *fiber.Ctx) error {
	skills, err := h.service.ListLearningSkills(requestContext(c), c.Params("userId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "learning skills retrieved", skills)
}

func (h *UserHandler) removeLearningSkill(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "skillId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.RemoveLearningSkill(requestContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "learning skill removed", fiber.Map{"id": id})
}

func (h *UserHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrMenteeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "mentee not found")
	case errors.Is(err, service.ErrLearningSkillNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "learning skill not found")
	case errors.Is(err, service.ErrAvatarTooLarge),
		errors.Is(err, service.ErrAvatarTypeNotAllowed),
		errors.Is(err, service.ErrSkillHasComma),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *UserHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
