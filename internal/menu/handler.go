package menu

import (
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
	// extra listings served next to the catalog options, e.g. payment methods
	extraOptions fiber.Map
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, extraOptions: fiber.Map{}}
}

// WithOption adds a named option list to GET /api/menu/options.
func (h *Handler) WithOption(name string, value any) *Handler {
	h.extraOptions[name] = value
	return h
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/menu", h.browse)
	app.Get("/api/menu/options", h.options)
	app.Get("/api/menu/:id", h.getItem)
}

type browseResponse struct {
	Items []FoodItem `json:"items"`
	Count int        `json:"count"`
	Total int        `json:"total"`
}

func (h *Handler) browse(c *fiber.Ctx) error {
	category, err := ParseCategoryFilter(c.Query("category"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	key, err := ParseSortKey(c.Query("sort"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	items := h.service.Browse(c.Query("q"), category, key)
	return c.JSON(browseResponse{
		Items: items,
		Count: len(items),
		Total: len(h.service.List()),
	})
}

func (h *Handler) getItem(c *fiber.Ctx) error {
	item, err := h.service.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Food item not found"})
	}
	return c.JSON(item)
}

func (h *Handler) options(c *fiber.Ctx) error {
	resp := fiber.Map{
		"categories": CategoryFilters,
		"sorts":      SortOptions,
	}
	for k, v := range h.extraOptions {
		resp[k] = v
	}
	return c.JSON(resp)
}
