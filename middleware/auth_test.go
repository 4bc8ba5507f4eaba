// middleware/auth_test.go
package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func testApp(extraRoles ...string) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{AuthMiddleware()}
	if len(extraRoles) > 0 {
		handlers = append(handlers, RequireRoles(extraRoles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"role":    c.Locals("user_role"),
		})
	})
	app.Get("/secure", handlers...)
	return app
}

func TestAuthMiddleware(t *testing.T) {
	app := testApp()
	claims := jwt.MapClaims{
		"user_id": "u-1",
		"role":    "judge",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}

	req := httptest.NewRequest("GET", "/secure", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "missing header")

	req = httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Token not-a-bearer")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "non-bearer scheme")

	req = httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, claims, "wrong-secret"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "bad signature")

	expired := jwt.MapClaims{
		"user_id": "u-1",
		"role":    "judge",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	req = httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, expired, "blackcobra-dev-secret"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "expired token")

	req = httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, claims, "blackcobra-dev-secret"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoles(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": "u-1",
		"role":    "trainee",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token := signToken(t, jwt.SigningMethodHS256, claims, "blackcobra-dev-secret")

	app := testApp("admin")
	req := httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "trainee cannot reach admin routes")

	app = testApp("admin", "trainee")
	req = httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "any listed role passes")
}
