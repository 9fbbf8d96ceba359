package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(token string) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(token))
	app.Get("/protected", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestValidToken(t *testing.T) {
	app := newTestApp("secret-token")
	resp := doRequest(t, app, "Bearer secret-token")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMissingHeader(t *testing.T) {
	app := newTestApp("secret-token")
	resp := doRequest(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWrongToken(t *testing.T) {
	app := newTestApp("secret-token")
	resp := doRequest(t, app, "Bearer wrong-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWrongScheme(t *testing.T) {
	app := newTestApp("secret-token")
	resp := doRequest(t, app, "Basic secret-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTokenWithWhitespace(t *testing.T) {
	app := newTestApp("secret-token")
	resp := doRequest(t, app, "Bearer secret-token ")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
