package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sodastock/internal/domain"
	applog "sodastock/internal/log"
	"sodastock/internal/provider"
	"sodastock/internal/services"
	"sodastock/internal/validate"
)

type APIHandler struct {
	Stock *services.StockService
}

// sodaBody mirrors the boundary field set; pointers keep absent and zero
// distinguishable so PUT stays a true partial update.
type sodaBody struct {
	Name      *string `json:"name"`
	Quantity  *int64  `json:"quantity"`
	Price     *int64  `json:"price"`
	SoldCount *int64  `json:"soldCount"`
	GotCount  *int64  `json:"gotCount"`
}

func (b sodaBody) patch() domain.SodaPatch {
	return domain.SodaPatch{
		Name:     b.Name,
		Quantity: b.Quantity,
		Price:    b.Price,
		Sold:     b.SoldCount,
		Got:      b.GotCount,
	}
}

var boundaryFields = map[string]bool{
	"id": true, "name": true, "quantity": true, "price": true,
	"soldCount": true, "gotCount": true,
}

// sodaJSON flattens a row to the boundary field names; a NULL quantity
// serializes as null, not 0.
func sodaJSON(s domain.Soda) fiber.Map {
	var qty any
	if s.Quantity.Valid {
		qty = s.Quantity.Int64
	}
	return fiber.Map{
		"id":        s.ID,
		"name":      s.Name,
		"quantity":  qty,
		"price":     s.Price,
		"soldCount": s.Sold,
		"gotCount":  s.Got,
	}
}

// project applies a caller-specified field list to the full row map.
func project(full fiber.Map, fields []string) fiber.Map {
	if len(fields) == 0 {
		return full
	}
	out := fiber.Map{}
	for _, f := range fields {
		out[f] = full[f]
	}
	return out
}

// fieldsParam parses ?fields=name,quantity; unknown names are a 400.
func fieldsParam(c *fiber.Ctx) ([]string, bool) {
	raw := strings.TrimSpace(c.Query("fields"))
	if raw == "" {
		return nil, true
	}
	fields := strings.Split(raw, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
		if !boundaryFields[fields[i]] {
			return nil, false
		}
	}
	return fields, true
}

// apiError maps the provider taxonomy onto status codes. Unknown locators
// stay a 500: they mean a routing bug, not bad input.
func apiError(c *fiber.Ctx, action string, err error) error {
	var ve *provider.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Error()})
	}
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "operation failed"})
}

// GET /api/v1/sodas
func (h *APIHandler) List(c *fiber.Ctx) error {
	fields, ok := fieldsParam(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "unknown field in projection"})
	}
	order := c.Query("order")
	if !listOrders[order] {
		return c.Status(400).JSON(fiber.Map{"error": "unknown order column"})
	}
	sodas, err := h.Stock.List(c.Query("name"), order)
	if err != nil {
		return apiError(c, "api.list.fail", err)
	}
	out := make([]fiber.Map, 0, len(sodas))
	for _, s := range sodas {
		out = append(out, project(sodaJSON(s), fields))
	}
	return c.JSON(out)
}

// GET /api/v1/sodas/:id
func (h *APIHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}
	fields, ok := fieldsParam(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "unknown field in projection"})
	}
	s, found, err := h.Stock.Get(id)
	if err != nil {
		return apiError(c, "api.get.fail", err)
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{})
	}
	return c.JSON(project(sodaJSON(s), fields))
}

// POST /api/v1/sodas
func (h *APIHandler) Create(c *fiber.Ctx) error {
	var body sodaBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "malformed body"})
	}
	id, err := h.Stock.Create(body.patch())
	if err != nil {
		return apiError(c, "api.insert.fail", err)
	}
	applog.Audit(c, "api.insert", map[string]any{"id": id})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// PUT /api/v1/sodas/:id
func (h *APIHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}
	var body sodaBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "malformed body"})
	}
	n, err := h.Stock.Update(id, body.patch())
	if err != nil {
		return apiError(c, "api.update.fail", err)
	}
	if n > 0 {
		applog.Audit(c, "api.update", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"affected": n})
}

// DELETE /api/v1/sodas/:id
func (h *APIHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}
	n, err := h.Stock.Delete(id)
	if err != nil {
		return apiError(c, "api.delete.fail", err)
	}
	if n > 0 {
		applog.Audit(c, "api.delete", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"affected": n})
}

// DELETE /api/v1/sodas
func (h *APIHandler) DeleteAll(c *fiber.Ctx) error {
	n, err := h.Stock.DeleteAll()
	if err != nil {
		return apiError(c, "api.deleteall.fail", err)
	}
	applog.Audit(c, "api.deleteall", map[string]any{"rows": n})
	return c.JSON(fiber.Map{"affected": n})
}

// POST /api/v1/sodas/:id/sell
func (h *APIHandler) Sell(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}
	sold, err := h.Stock.Sell(id)
	if err != nil {
		return apiError(c, "api.sell.fail", err)
	}
	return c.JSON(fiber.Map{"sold": sold})
}

// POST /api/v1/sodas/:id/got
func (h *APIHandler) Got(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}
	got, err := h.Stock.Receive(id)
	if err != nil {
		return apiError(c, "api.got.fail", err)
	}
	return c.JSON(fiber.Map{"got": got})
}

// GET /api/v1/sodas/revision is the pull-based staleness check for the list.
func (h *APIHandler) Revision(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"revision": h.Stock.Revision()})
}
