package handler_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/handler"
	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/service"
)

type mockNotificationService struct {
	listResult     []dto.NotificationResponse
	lastUnreadOnly bool
	markReadResult dto.NotificationResponse
	markReadErr    error
	markAllResult  int64
	deleteErr      error
	unreadCount    int64
	lastDeleted    uint
}

func (m *mockNotificationService) Publish(_ context.Context, _ dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	return dto.NotificationResponse{}, nil
}

func (m *mockNotificationService) Dispatch(_ context.Context, _ models.Notification) {}

func (m *mockNotificationService) List(_ context.Context, _ string, unreadOnly bool) ([]dto.NotificationResponse, error) {
	m.lastUnreadOnly = unreadOnly
	return m.listResult, nil
}

func (m *mockNotificationService) MarkRead(_ context.Context, _ uint) (dto.NotificationResponse, error) {
	if m.markReadErr != nil {
		return dto.NotificationResponse{}, m.markReadErr
	}
	return m.markReadResult, nil
}

func (m *mockNotificationService) MarkAllRead(_ context.Context, _ string) (int64, error) {
	return m.markAllResult, nil
}

func (m *mockNotificationService) Delete(_ context.Context, id uint) error {
	m.lastDeleted = id
	return m.deleteErr
}

func (m *mockNotificationService) UnreadCount(_ context.Context, _ string) (int64, error) {
	return m.unreadCount, nil
}

func (m *mockNotificationService) Subscribe(_ string) (<-chan dto.NotificationResponse, func()) {
	ch := make(chan dto.NotificationResponse)
	return ch, func() { close(ch) }
}

func (m *mockNotificationService) Start(_ context.Context) {}

func newNotificationTestApp(svc service.NotificationService) *fiber.App {
	app := fiber.New()
	handler.NewNotificationHandler(svc, zerolog.New(io.Discard), time.Second).Register(app.Group("/api/v1/notifications"))
	return app
}

func TestNotificationHandler_ListUnreadOnly(t *testing.T) {
	svc := &mockNotificationService{listResult: []dto.NotificationResponse{{ID: 1, Title: "New Mentoring Request"}}}
	app := newNotificationTestApp(svc)

	resp := performRequest(t, app, jsonRequest(t, http.MethodGet, "/api/v1/notifications/user/mentor-1?unread_only=true", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, svc.lastUnreadOnly)

	var body struct {
		Data []dto.NotificationResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 1)
}

func TestNotificationHandler_UnreadCount(t *testing.T) {
	svc := &mockNotificationService{unreadCount: 3}
	app := newNotificationTestApp(svc)

	resp := performRequest(t, app, jsonRequest(t, http.MethodGet, "/api/v1/notifications/user/mentor-1/unread-count", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.UnreadCountResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, int64(3), body.Data.Count)
}

func TestNotificationHandler_MarkReadNotFound(t *testing.T) {
	svc := &mockNotificationService{markReadErr: service.ErrNotificationNotFound}
	app := newNotificationTestApp(svc)

	resp := performRequest(t, app, jsonRequest(t, http.MethodPut, "/api/v1/notifications/9/read", nil))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestNotificationHandler_MarkAllRead(t *testing.T) {
	svc := &mockNotificationService{markAllResult: 4}
	app := newNotificationTestApp(svc)

	resp := performRequest(t, app, jsonRequest(t, http.MethodPut, "/api/v1/notifications/user/mentor-1/read-all", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data map[string]int64 `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, int64(4), body.Data["updated"])
}

func TestNotificationHandler_Delete(t *testing.T) {
	svc := &mockNotificationService{}
	app := newNotificationTestApp(svc)

	resp := performRequest(t, app, jsonRequest(t, http.MethodDelete, "/api/v1/notifications/5", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(5), svc.lastDeleted)
}

func TestNotificationHandler_StreamRequiresAuth(t *testing.T) {
	app := newNotificationTestApp(&mockNotificationService{})

	resp := performRequest(t, app, jsonRequest(t, http.MethodGet, "/api/v1/notifications/stream", nil))
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
