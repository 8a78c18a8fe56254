package http

import (
	"engage_server/core/port/out"
	"engage_server/core/service/template"

	"github.com/gofiber/fiber/v2"
)

// TemplateHandler handles HTTP requests for success templates and tenant
// bindings.
type TemplateHandler struct {
	service *template.Service
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(service *template.Service) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// Register registers template and binding routes.
func (h *TemplateHandler) Register(router fiber.Router) {
	templates := router.Group("/templates")
	templates.Get("/", h.List)
	templates.Post("/", h.Create)
	templates.Put("/:id", h.Update)

	bindings := router.Group("/bindings")
	bindings.Get("/", h.ListBindings)
	bindings.Post("/", h.Bind)
	bindings.Put("/:id", h.UpdateBinding)
}

// Create creates a new success template.
// @Summary Create a success template
// @Tags Templates
// @Accept json
// @Produce json
// @Param request body template.CreateTemplateRequest true "Template data"
// @Success 201 {object} domain.SuccessTemplate
// @Router /api/v1/templates [post]
func (h *TemplateHandler) Create(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}

	var req template.CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	t, err := h.service.Create(c.Context(), user, &req)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(t)
}

// Update updates a template.
// @Summary Update a success template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param request body template.UpdateTemplateRequest true "Template data"
// @Success 200 {object} domain.SuccessTemplate
// @Router /api/v1/templates/{id} [put]
func (h *TemplateHandler) Update(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}
	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	var req template.UpdateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	t, err := h.service.Update(c.Context(), user, id, &req)
	if err != nil {
		return err
	}
	return c.JSON(t)
}

// List lists templates visible to the tenant.
// @Summary List visible templates
// @Tags Templates
// @Produce json
// @Param category query string false "Filter by category"
// @Param language query string false "Filter by language"
// @Param active query bool false "Filter by active status"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/templates [get]
func (h *TemplateHandler) List(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}

	filter := &out.TemplateFilter{
		Category: QueryStringPtr(c, "category"),
		Language: QueryStringPtr(c, "language"),
		Active:   QueryBoolPtr(c, "active"),
		Limit:    c.QueryInt("limit", 50),
		Offset:   c.QueryInt("offset", 0),
	}

	templates, err := h.service.ListVisible(c.Context(), user, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"templates": templates, "count": len(templates)})
}

// Bind enables a template for the tenant.
// @Summary Bind a template to the tenant
// @Tags Bindings
// @Accept json
// @Produce json
// @Param request body template.BindRequest true "Binding data"
// @Success 201 {object} domain.TemplateBinding
// @Router /api/v1/bindings [post]
func (h *TemplateHandler) Bind(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}

	var req template.BindRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	b, err := h.service.Bind(c.Context(), user, &req)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(b)
}

// UpdateBinding updates a tenant binding.
// @Summary Update a template binding
// @Tags Bindings
// @Accept json
// @Produce json
// @Param id path int true "Binding ID"
// @Param request body template.UpdateBindingRequest true "Binding data"
// @Success 200 {object} domain.TemplateBinding
// @Router /api/v1/bindings/{id} [put]
func (h *TemplateHandler) UpdateBinding(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}
	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	var req template.UpdateBindingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	b, err := h.service.UpdateBinding(c.Context(), user, id, &req)
	if err != nil {
		return err
	}
	return c.JSON(b)
}

// ListBindings lists the tenant's bindings.
// @Summary List template bindings
// @Tags Bindings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/bindings [get]
func (h *TemplateHandler) ListBindings(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}

	bindings, err := h.service.ListBindings(c.Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"bindings": bindings, "count": len(bindings)})
}
