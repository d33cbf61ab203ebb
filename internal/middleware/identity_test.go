package middleware

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityApp() *fiber.App {
	app := fiber.New()
	identity := NewIdentity()
	app.Get("/protected", identity.RequireUrn, func(c fiber.Ctx) error {
		return c.SendString(c.Locals(UrnLocalKey).(string))
	})
	app.Get("/open", identity.OptionalUrn, func(c fiber.Ctx) error {
		urn, _ := c.Locals(UrnLocalKey).(string)
		return c.SendString(urn)
	})
	return app
}

func TestRequireUrn(t *testing.T) {
	app := identityApp()

	t.Run("missing urn rejected", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/protected", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("header urn accepted", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("X-Urn", "abc123")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("cookie urn accepted", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "urn", Value: "abc123"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("X-Urn", "from-header")
		req.AddCookie(&http.Cookie{Name: "urn", Value: "from-cookie"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestOptionalUrn(t *testing.T) {
	app := identityApp()

	req, _ := http.NewRequest("GET", "/open", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
