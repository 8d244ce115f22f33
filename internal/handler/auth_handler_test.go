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
	"github.com/mentorlink/mentorlink-api/internal/service"
)

type mockAuthService struct {
	registerResult dto.AuthResponse
	registerErr    error
	loginResult    dto.AuthResponse
	loginErr       error
	lastRegister   dto.RegisterRequest
}

func (m *mockAuthService) Register(_ context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	m.lastRegister = payload
	if m.registerErr != nil {
		return dto.AuthResponse{}, m.registerErr
	}
	return m.registerResult, nil
}

func (m *mockAuthService) Login(_ context.Context, _ dto.LoginRequest) (dto.AuthResponse, error) {
	if m.loginErr != nil {
		return dto.AuthResponse{}, m.loginErr
	}
	return m.loginResult, nil
}

func newAuthTestApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	handler.NewAuthHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/auth"))
	return app
}

func TestAuthHandler_RegisterCreated(t *testing.T) {
	svc := &mockAuthService{registerResult: dto.AuthResponse{
		Token: "token-123",
		User:  dto.UserResponse{ID: "user-1", Email: "dina@example.edu", Role: "mentee"},
	}}
	app := newAuthTestApp(svc)

	payload := dto.RegisterRequest{
		Name:     "Dina",
		Email:    "dina@example.edu",
		Password: "secretpass",
		Role:     "mentee",
	}
	resp := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", payload))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool             `json:"success"`
		Data    dto.AuthResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)

	require.True(t, body.Success)
	require.Equal(t, "token-123", body.Data.Token)
	require.Equal(t, "dina@example.edu", svc.lastRegister.Email)
}

func TestAuthHandler_RegisterDuplicateEmail(t *testing.T) {
	svc := &mockAuthService{registerErr: service.ErrEmailTaken}
	app := newAuthTestApp(svc)

	payload := dto.RegisterRequest{Name: "Dina", Email: "dina@example.edu", Password: "secretpass", Role: "mentee"}
	resp := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", payload))
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAuthHandler_RegisterInvalidBody(t *testing.T) {
	app := newAuthTestApp(&mockAuthService{})

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", nil)
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(t, app, req)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	svc := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	app := newAuthTestApp(svc)

	payload := dto.LoginRequest{Email: "dina@example.edu", Password: "wrong"}
	resp := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", payload))
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_LoginSuccess(t *testing.T) {
	svc := &mockAuthService{loginResult: dto.AuthResponse{Token: "token-456"}}
	app := newAuthTestApp(svc)

	payload := dto.LoginRequest{Email: "dina@example.edu", Password: "secretpass"}
	resp := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", payload))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.AuthResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "token-456", body.Data.Token)
}
