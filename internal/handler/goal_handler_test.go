package handler_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/handler"
	"github.com/mentorlink/mentorlink-api/internal/repository"
	"github.com/mentorlink/mentorlink-api/internal/service"
)

type mockGoalService struct {
	createResult dto.GoalResponse
	createErr    error
	getResult    dto.GoalResponse
	getErr       error
	listResult   []dto.GoalResponse
	lastFilter   repository.GoalFilter
	updateErr    error
	toggleResult dto.MilestoneResponse
	toggleErr    error
	statsResult  dto.GoalStatsResponse
	deleteErr    error
}

func (m *mockGoalService) Create(_ context.Context, _ dto.GoalCreateRequest) (dto.GoalResponse, error) {
	if m.createErr != nil {
		return dto.GoalResponse{}, m.createErr
	}
	return m.createResult, nil
}

func (m *mockGoalService) Get(_ context.Context, _ uint) (dto.GoalResponse, error) {
	if m.getErr != nil {
		return dto.GoalResponse{}, m.getErr
	}
	return m.getResult, nil
}

func (m *mockGoalService) ListForUser(_ context.Context, _ string, filter repository.GoalFilter) ([]dto.GoalResponse, error) {
	m.lastFilter = filter
	return m.listResult, nil
}

func (m *mockGoalService) Update(_ context.Context, _ uint, _ dto.GoalUpdateRequest) (dto.GoalResponse, error) {
	if m.updateErr != nil {
		return dto.GoalResponse{}, m.updateErr
	}
	return m.getResult, nil
}

func (m *mockGoalService) Delete(_ context.Context, _ uint) error {
	return m.deleteErr
}

func (m *mockGoalService) AddMilestone(_ context.Context, _ uint, _ dto.MilestoneCreateRequest) (dto.MilestoneResponse, error) {
	return m.toggleResult, nil
}

func (m *mockGoalService) UpdateMilestone(_ context.Context, _ uint, _ dto.MilestoneUpdateRequest) (dto.MilestoneResponse, error) {
	return m.toggleResult, nil
}

func (m *mockGoalService) ToggleMilestone(_ context.Context, _ uint) (dto.MilestoneResponse, error) {
	if m.toggleErr != nil {
		return dto.MilestoneResponse{}, m.toggleErr
	}
	return m.toggleResult, nil
}

func (m *mockGoalService) DeleteMilestone(_ context.Context, _ uint) error {
	return nil
}

func (m *mockGoalService) Stats(_ context.Context, _ string) (dto.GoalStatsResponse, error) {
	return m.statsResult, nil
}

func (m *mockGoalService) ListActivity(_ context.Context, _ uint) ([]dto.GoalActivityResponse, error) {
	return nil, nil
}

func newGoalTestApp(svc service.GoalService) *fiber.App {
	app := fiber.New()
	handler.NewGoalHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/goals"))
	return app
}

func TestGoalHandler_CreateCreated(t *testing.T) {
	svc := &mockGoalService{createResult: dto.GoalResponse{ID: 1, Title: "Learn Go", Status: "active"}}
	app := newGoalTestApp(svc)

	payload := dto.GoalCreateRequest{
		UserID:    "mentee-1",
		Title:     "Learn Go",
		Category:  "engineering",
		TimeBound: "2026-12-31T00:00:00Z",
	}
	resp := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/v1/goals", payload))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Data dto.GoalResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "Learn Go", body.Data.Title)
}

func TestGoalHandler_ListForwardsFilter(t *testing.T) {
	svc := &mockGoalService{listResult: []dto.GoalResponse{{ID: 1}}}
	app := newGoalTestApp(svc)

	resp := performRequest(t, app, jsonRequest(t, http.MethodGet, "/api/v1/goals/user/mentee-1?status=active&category=engineering", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "active", svc.lastFilter.Status)
	require.Equal(t, "engineering", svc.lastFilter.Category)
}

func TestGoalHandler_GetNotFound(t *testing.T) {
	svc := &mockGoalService{getErr: service.ErrGoalNotFound}
	app := newGoalTestApp(svc)

	resp := performRequest(t, app, jsonRequest(t, http.MethodGet, "/api/v1/goals/42", nil))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGoalHandler_UpdateEmptyPayload(t *testing.T) {
	svc := &mockGoalService{updateErr: service.ErrEmptyGoalUpdate}
	app := newGoalTestApp(svc)

	resp := performRequest(t, app, jsonRequest(t, http.MethodPut, "/api/v1/goals/1", map[string]string{}))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGoalHandler_ToggleMilestone(t *testing.T) {
	svc := &mockGoalService{toggleResult: dto.MilestoneResponse{ID: 3, Completed: true}}
	app := newGoalTestApp(svc)

	resp := performRequest(t, app, jsonRequest(t, http.MethodPatch, "/api/v1/goals/milestones/3/toggle", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.MilestoneResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Data.Completed)
}

func TestGoalHandler_ToggleMilestoneNotFound(t *testing.T) {
	svc := &mockGoalService{toggleErr: service.ErrMilestoneNotFound}
	app := newGoalTestApp(svc)

	resp := performRequest(t, app, jsonRequest(t, http.MethodPatch, "/api/v1/goals/milestones/3/toggle", nil))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGoalHandler_Stats(t *testing.T) {
	svc := &mockGoalService{statsResult: dto.GoalStatsResponse{TotalGoals: 5, OverdueGoals: 1}}
	app := newGoalTestApp(svc)

	resp := performRequest(t, app, jsonRequest(t, http.MethodGet, "/api/v1/goals/user/mentee-1/stats", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.GoalStatsResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, int64(5), body.Data.TotalGoals)
	require.Equal(t, int64(1), body.Data.OverdueGoals)
}
