package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"sodastock/internal/config"
	"sodastock/internal/http/handlers"
	"sodastock/internal/repos"
	"sodastock/internal/services"
)

// newTestApp wires the app the way main does, minus the noise middlewares.
func newTestApp(t *testing.T, passphrase string) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	sessionRepo := repos.NewSessionRepo(db)
	authSvc := services.NewAuthService(sessionRepo, passphrase)
	authH := &handlers.AuthHandler{Auth: authSvc}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("operator", authSvc.IsOperator(c.Cookies("sid")))
		return c.Next()
	})
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	deps := handlers.NewDeps(db, config.Config{DBDSN: ":memory:"}, authSvc)
	gate := handlers.RequireOperator(authSvc)

	app.Get("/", deps.ListHandler.Index)
	app.Post("/sodas/:id/sell", gate, deps.ListHandler.Sell)
	app.Post("/sodas/:id/got", gate, deps.ListHandler.Got)
	app.Post("/sodas/seed", gate, deps.ListHandler.Seed)
	app.Post("/sodas/delete-all", gate, deps.ListHandler.DeleteAll)

	app.Get("/sodas/new", deps.EditorHandler.New)
	app.Get("/sodas/:id/edit", deps.EditorHandler.Edit)
	app.Post("/sodas/save", gate, deps.EditorHandler.Save)
	app.Post("/sodas/:id/delete", gate, deps.EditorHandler.Delete)

	api := app.Group("/api/v1")
	api.Get("/sodas", deps.APIHandler.List)
	api.Get("/sodas/revision", deps.APIHandler.Revision)
	api.Get("/sodas/:id", deps.APIHandler.Get)
	api.Post("/sodas", gate, deps.APIHandler.Create)
	api.Put("/sodas/:id", gate, deps.APIHandler.Update)
	api.Delete("/sodas", gate, deps.APIHandler.DeleteAll)
	api.Delete("/sodas/:id", gate, deps.APIHandler.Delete)
	api.Post("/sodas/:id/sell", gate, deps.APIHandler.Sell)
	api.Post("/sodas/:id/got", gate, deps.APIHandler.Got)

	app.Get("/login", authH.LoginForm)
	app.Post("/login", authH.Login)
	app.Post("/logout", authH.Logout)

	return app, db
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func decodeJSON(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, into); err != nil {
		t.Fatalf("bad json %q: %v", b, err)
	}
}

func sodaCount(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	n, err := repos.NewSodaRepo(db).Count()
	if err != nil {
		t.Fatal(err)
	}
	return n
}
