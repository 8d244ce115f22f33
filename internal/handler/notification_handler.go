package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/service"
	"github.com/mentorlink/mentorlink-api/internal/utils"
)

// NotificationHandler manages the SSE notification stream and mailbox
// operations.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
	timeout time.Duration
}

// NewNotificationHandler constructs a handler instance.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
		timeout: timeout,
	}
}

// Register binds the notification routes.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("/stream", h.stream)
	router.Get("/user/:userId", h.list)
	router.Get("/user/:userId/unread-count", h.unreadCount)
	router.Put("/user/:userId/read-all", h.markAllRead)
	router.Put("/:id/read", h.markRead)
	router.Delete("/:id", h.delete)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	unreadOnly := strings.EqualFold(c.Query("unread_only"), "true")

	notifications, err := h.service.List(requestContext(c), c.Params("userId"), unreadOnly)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notifications retrieved", notifications)
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	count, err := h.service.UnreadCount(requestContext(c), c.Params("userId"))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "unread count retrieved", dto.UnreadCountResponse{Count: count})
}

func (h *NotificationHandler) stream(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx, cancel := context.WithCancel(requestContext(c))

	stream, cleanup := h.service.Subscribe(userID)

	keepAliveInterval := h.timeout
	if keepAliveInterval <= 0 {
		keepAliveInterval = 30 * time.Second
	}

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cleanup()
			cancel()
		}()

		ticker := time.NewTicker(keepAliveInterval / 2)
		defer ticker.Stop()

		for {
			select {
			case notification, ok := <-stream:
				if !ok {
					return
				}
				if err := writeNotificationEvent(w, notification); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write notification event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write notification keepalive")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	notification, err := h.service.MarkRead(requestContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "notification not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notification marked as read", notification)
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	updated, err := h.service.MarkAllRead(requestContext(c), c.Params("userId"))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notifications marked as read", fiber.Map{"updated": updated})
}

func (h *NotificationHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(requestContext(c), id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "notification not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notification deleted", fiber.Map{"id": id})
}

func (h *NotificationHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

func writeNotificationEvent(w *bufio.Writer, notification interface{}) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: notification\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprintf(w, ": keep-alive %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return w.Flush()
}
