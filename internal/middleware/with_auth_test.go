package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/mentorlink-api/internal/middleware"
)

func newAuthTestApp(opts middleware.AuthOptions, userID, role interface{}) *fiber.App {
	app := fiber.New()
	app.Get("/guarded", func(c *fiber.Ctx) error {
		if userID != nil {
			c.Locals("user_id", userID)
		}
		if role != nil {
			c.Locals("user_role", role)
		}
		return c.Next()
	}, middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendString("ok")
	}, opts))
	return app
}

func TestWithAuthRequiresUser(t *testing.T) {
	app := newAuthTestApp(middleware.AuthOptions{RequireUser: true}, nil, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWithAuthAllowsAnonymousWhenAny(t *testing.T) {
	app := newAuthTestApp(middleware.AuthOptions{Role: middleware.AuthRoleAny}, nil, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWithAuthRoleGates(t *testing.T) {
	cases := []struct {
		name   string
		role   string
		actual string
		status int
	}{
		{name: "mentor allowed", role: middleware.AuthRoleMentor, actual: "mentor", status: fiber.StatusOK},
		{name: "mentee blocked from mentor", role: middleware.AuthRoleMentor, actual: "mentee", status: fiber.StatusForbidden},
		{name: "admin passes mentor gate", role: middleware.AuthRoleMentor, actual: "admin", status: fiber.StatusOK},
		{name: "mentee allowed", role: middleware.AuthRoleMentee, actual: "mentee", status: fiber.StatusOK},
		{name: "mentor blocked from admin", role: middleware.AuthRoleAdmin, actual: "mentor", status: fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newAuthTestApp(middleware.AuthOptions{Role: tc.role}, "user-1", tc.actual)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
