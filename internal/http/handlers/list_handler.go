package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"sodastock/internal/domain"
	applog "sodastock/internal/log"
	"sodastock/internal/repos"
	"sodastock/internal/services"
	"sodastock/internal/validate"
)

type ListHandler struct {
	Stock *services.StockService
	DB    *sqlx.DB
}

// listRow carries one soda plus its display status into the template.
type listRow struct {
	domain.Soda
	Status string
}

// listOrders whitelists the order query param; anything else falls back
// to insertion order so user input can never reach the repo's
// programmer-error path.
var listOrders = map[string]bool{
	"": true, "name": true, "quantity": true, "price": true, "sold": true, "got": true,
}

// GET /
func (h *ListHandler) Index(c *fiber.Ctx) error {
	order := c.Query("order")
	if !listOrders[order] {
		order = ""
	}
	sodas, err := h.Stock.List(c.Query("q"), order)
	if err != nil {
		applog.Error(c, "list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load sodas"})
	}

	rows := make([]listRow, 0, len(sodas))
	for _, s := range sodas {
		rows = append(rows, listRow{Soda: s, Status: services.Availability(s.Qty())})
	}
	return render(c, "list", fiber.Map{
		"Rows":     rows,
		"Order":    order,
		"Q":        c.Query("q"),
		"Revision": h.Stock.Revision(),
	})
}

// POST /sodas/:id/sell
func (h *ListHandler) Sell(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("invalid id")
	}
	sold, err := h.Stock.Sell(id)
	if err != nil {
		applog.Error(c, "soda.sell.fail", err, map[string]any{"id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Sale failed. Please try again."})
	}
	if !sold {
		applog.Info(c, "soda.sell.empty", map[string]any{"id": id})
	}
	return c.Redirect(backTo(c, id))
}

// POST /sodas/:id/got
func (h *ListHandler) Got(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("invalid id")
	}
	got, err := h.Stock.Receive(id)
	if err != nil {
		applog.Error(c, "soda.got.fail", err, map[string]any{"id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Restock failed. Please try again."})
	}
	if !got {
		applog.Info(c, "soda.got.missing", map[string]any{"id": id})
	}
	return c.Redirect(backTo(c, id))
}

// POST /sodas/seed is the "insert dummy data" menu action.
func (h *ListHandler) Seed(c *fiber.Ctx) error {
	if err := repos.SeedDemo(h.DB); err != nil {
		applog.Error(c, "seed.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not insert demo data"})
	}
	applog.Audit(c, "seed", nil)
	return c.Redirect("/")
}

// POST /sodas/delete-all is the "delete all entries" menu action.
func (h *ListHandler) DeleteAll(c *fiber.Ctx) error {
	n, err := h.Stock.DeleteAll()
	if err != nil {
		applog.Error(c, "soda.deleteall.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Delete failed. Please try again."})
	}
	applog.Audit(c, "soda.deleteall", map[string]any{"rows": n})
	return c.Redirect("/")
}

// backTo keeps the sell/got buttons usable from both surfaces: the list
// (default) and the editor.
func backTo(c *fiber.Ctx, id int64) string {
	if c.FormValue("back") == "editor" {
		return editURL(id)
	}
	return "/"
}
