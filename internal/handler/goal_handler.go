package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/repository"
	"github.com/mentorlink/mentorlink-api/internal/service"
	"github.com/mentorlink/mentorlink-api/internal/utils"
)

// GoalHandler wires SMART goal and milestone routes.
type GoalHandler struct {
	service service.GoalService
	logger  zerolog.Logger
}

// NewGoalHandler constructs the handler.
func NewGoalHandler(service service.GoalService, logger zerolog.Logger) *GoalHandler {
	return &GoalHandler{
		service: service,
		logger:  logger.With().Str("component", "goal_handler").Logger(),
	}
}

// Register attaches goal endpoints to the router group.
func (h *GoalHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/user/:userId/stats", h.stats)
	router.Get("/user/:userId", h.listForUser)
	router.Get("/:goalId/activity", h.listActivity)
	router.Get("/:goalId", h.get)
	router.Put("/:goalId", h.update)
	router.Delete("/:goalId", h.delete)
	router.Post("/:goalId/milestones", h.addMilestone)
	router.Put("/milestones/:milestoneId", h.updateMilestone)
	router.Patch("/milestones/:milestoneId/toggle", h.toggleMilestone)
	router.Delete("/milestones/:milestoneId", h.deleteMilestone)
}

func (h *GoalHandler) create(c *fiber.Ctx) error {
	var payload dto.GoalCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	goal, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "goal created", goal)
}

func (h *GoalHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "goalId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	goal, err := h.service.Get(requestContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "goal retrieved", goal)
}

func (h *GoalHandler) listForUser(c *fiber.Ctx) error {
	filter := repository.GoalFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}

	goals, err := h.service.ListForUser(requestContext(c), c.Params("userId"), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "goals retrieved", goals)
}

func (h *GoalHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "goalId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GoalUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	goal, err := h.service.Update(requestContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "goal updated", goal)
}

func (h *GoalHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "goalId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(requestContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "goal deleted", fiber.Map{"id": id})
}

func (h *GoalHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(requestContext(c), c.Params("userId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "goal stats retrieved", stats)
}

func (h *GoalHandler) listActivity(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "goalId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	activity, err := h.service.ListActivity(requestContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "goal activity retrieved", activity)
}

func (h *GoalHandler) addMilestone(c *fiber.Ctx) error {
	goalID, err := parseUintParam(c, "goalId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.MilestoneCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	milestone, err := h.service.AddMilestone(requestContext(c), goalID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "milestone added", milestone)
}

func (h *GoalHandler) updateMilestone(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "milestoneId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.MilestoneUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	milestone, err := h.service.UpdateMilestone(requestContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "milestone updated", milestone)
}

func (h *GoalHandler) toggleMilestone(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "milestoneId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	milestone, err := h.service.ToggleMilestone(requestContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "milestone toggled", milestone)
}

func (h *GoalHandler) deleteMilestone(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "milestoneId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteMilestone(requestContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "milestone deleted", fiber.Map{"id": id})
}

func (h *GoalHandler) handleError(c *fiber.Ctx, err error) error {
	var parseErr *time.ParseError
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "goal not found")
	case errors.Is(err, service.ErrMilestoneNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "milestone not found")
	case errors.Is(err, service.ErrEmptyGoalUpdate),
		errors.As(err, &parseErr),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *GoalHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
