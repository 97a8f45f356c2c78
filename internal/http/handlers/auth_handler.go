package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "sodastock/internal/log"
	"sodastock/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

// GET /login
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if !h.Auth.Enabled() {
		return c.Redirect("/")
	}
	return render(c, "login", fiber.Map{"Err": ""})
}

// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	pass := c.FormValue("passphrase")
	if err := h.Auth.Login(sid, pass); err != nil {
		applog.Security(c, "auth.login.fail", nil)
		c.Status(fiber.StatusUnauthorized)
		return render(c, "login", fiber.Map{"Err": "Invalid passphrase"})
	}
	applog.Audit(c, "auth.login", nil)
	return c.Redirect("/")
}

// POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		_ = h.Auth.Logout(sid)
	}
	return c.Redirect("/")
}

// RequireOperator gates mutating routes when a passphrase is configured.
// API callers get a 401; browser requests bounce to the login form.
func RequireOperator(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if auth.IsOperator(c.Cookies("sid")) {
			return c.Next()
		}
		applog.Security(c, "auth.denied", map[string]any{"path": c.Path()})
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
		}
		return c.Redirect("/login")
	}
}
