package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"sodastock/internal/config"
	"sodastock/internal/http/handlers"
	applog "sodastock/internal/log"
	"sodastock/internal/repos"
	"sodastock/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.SeedDemo {
		if err := repos.SeedDemo(db); err != nil {
			log.Fatal(err)
		}
	}

	// Auth wiring
	sessionRepo := repos.NewSessionRepo(db)
	authSvc := services.NewAuthService(sessionRepo, cfg.OperatorPass)
	authH := &handlers.AuthHandler{Auth: authSvc}

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and show a friendly message
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Tell templates whether this session may mutate
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("operator", authSvc.IsOperator(c.Cookies("sid")))
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Next: func(c *fiber.Ctx) bool {
			// API callers authenticate per request; the token is a form concern
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	app.Static("/static", "./web/static")

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, authSvc)
	gate := handlers.RequireOperator(authSvc)

	// List surface
	app.Get("/", deps.ListHandler.Index)
	app.Post("/sodas/:id/sell", gate, deps.ListHandler.Sell)
	app.Post("/sodas/:id/got", gate, deps.ListHandler.Got)
	app.Post("/sodas/seed", gate, deps.ListHandler.Seed)
	app.Post("/sodas/delete-all", gate, deps.ListHandler.DeleteAll)

	// Editor surface
	app.Get("/sodas/new", deps.EditorHandler.New)
	app.Get("/sodas/:id/edit", deps.EditorHandler.Edit)
	app.Post("/sodas/save", gate, deps.EditorHandler.Save)
	app.Post("/sodas/:id/delete", gate, deps.EditorHandler.Delete)

	// API
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

	// Auth routes (login throttled)
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	app.Post("/logout", authH.Logout)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
