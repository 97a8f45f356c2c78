package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sodastock/internal/domain"
	applog "sodastock/internal/log"
	"sodastock/internal/provider"
	"sodastock/internal/services"
	"sodastock/internal/validate"
)

type EditorHandler struct {
	Stock *services.StockService
}

func editURL(id int64) string { return fmt.Sprintf("/sodas/%d/edit", id) }

// GET /sodas/new
func (h *EditorHandler) New(c *fiber.Ctx) error {
	return render(c, "editor", fiber.Map{"Title": "Add a Soda"})
}

// GET /sodas/:id/edit
func (h *EditorHandler) Edit(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This soda is no longer in stock"})
	}
	s, found, err := h.Stock.Get(id)
	if err != nil {
		applog.Error(c, "editor.load.fail", err, map[string]any{"id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load soda"})
	}
	if !found {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This soda is no longer in stock"})
	}
	return render(c, "editor", fiber.Map{
		"Title":    "Edit Soda",
		"S":        s,
		"ID":       s.ID,
		"Name":     s.Name,
		"Quantity": s.Qty(),
		"Price":    s.Price,
	})
}

// POST /sodas/save handles both create (no id field) and update.
func (h *EditorHandler) Save(c *fiber.Ctx) error {
	idRaw := strings.TrimSpace(c.FormValue("id"))
	nameRaw := c.FormValue("name")
	qtyRaw := c.FormValue("quantity")
	priceRaw := c.FormValue("price")

	// A brand-new record with every field blank closes without an insert.
	if idRaw == "" && strings.TrimSpace(nameRaw) == "" &&
		strings.TrimSpace(qtyRaw) == "" && strings.TrimSpace(priceRaw) == "" {
		return c.Redirect("/")
	}

	// Validation failure keeps the surface in its dirty state: same form,
	// same input, plus the message.
	reRender := func(status int, msg string) error {
		c.Status(status)
		return render(c, "editor", fiber.Map{
			"Title":    titleFor(idRaw),
			"Err":      msg,
			"ID":       idRaw,
			"Name":     nameRaw,
			"Quantity": qtyRaw,
			"Price":    priceRaw,
		})
	}

	name, ok := validate.Name(nameRaw)
	if !ok {
		return reRender(400, "Soda needs a name")
	}
	qty, ok := validate.Quantity(qtyRaw)
	if !ok {
		return reRender(400, "Quantity must be a whole number, zero or more")
	}
	price, ok := validate.Price(priceRaw)
	if !ok {
		return reRender(400, "Price must be a whole number, zero or more")
	}

	patch := domain.SodaPatch{Name: &name, Quantity: &qty, Price: &price}

	if idRaw == "" {
		id, err := h.Stock.Create(patch)
		if err != nil {
			var ve *provider.ValidationError
			if errors.As(err, &ve) {
				return reRender(400, ve.Error())
			}
			applog.Error(c, "soda.insert.fail", err, nil)
			return reRender(500, "Saving failed. Please try again.")
		}
		applog.Audit(c, "soda.insert", map[string]any{"id": id, "name": name})
		return c.Redirect("/")
	}

	id, ok := validate.ID(idRaw)
	if !ok {
		return c.Status(400).SendString("invalid id")
	}
	n, err := h.Stock.Update(id, patch)
	if err != nil {
		var ve *provider.ValidationError
		if errors.As(err, &ve) {
			return reRender(400, ve.Error())
		}
		applog.Error(c, "soda.update.fail", err, map[string]any{"id": id})
		return reRender(500, "Saving failed. Please try again.")
	}
	if n == 0 {
		// Row vanished under the editor; nothing to keep editing.
		applog.Info(c, "soda.update.gone", map[string]any{"id": id})
	} else {
		applog.Audit(c, "soda.update", map[string]any{"id": id})
	}
	return c.Redirect("/")
}

// POST /sodas/:id/delete. Confirmation happens on the editor page; the
// delete proceeds to close regardless of whether the row still existed.
func (h *EditorHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("invalid id")
	}
	n, err := h.Stock.Delete(id)
	if err != nil {
		applog.Error(c, "soda.delete.fail", err, map[string]any{"id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Delete failed. Please try again."})
	}
	applog.Audit(c, "soda.delete", map[string]any{"id": id, "rows": n})
	return c.Redirect("/")
}

func titleFor(idRaw string) string {
	if idRaw == "" {
		return "Add a Soda"
	}
	return "Edit Soda"
}
