package http

import (
	"engage_server/core/service/modelconfig"

	"github.com/gofiber/fiber/v2"
)

// ModelConfigHandler handles HTTP requests for generation configs.
type ModelConfigHandler struct {
	service *modelconfig.Service
}

// NewModelConfigHandler creates a new ModelConfigHandler.
func NewModelConfigHandler(service *modelconfig.Service) *ModelConfigHandler {
	return &ModelConfigHandler{service: service}
}

// Register registers model config routes.
func (h *ModelConfigHandler) Register(router fiber.Router) {
	configs := router.Group("/model-configs")
	configs.Get("/", h.List)
	configs.Get("/active", h.GetActive)
	configs.Post("/", h.Create)
	configs.Post("/:id/activate", h.Activate)
}

// Create stores a new config version (inactive until activated).
// @Summary Create a model config version
// @Tags ModelConfigs
// @Accept json
// @Produce json
// @Param request body modelconfig.CreateRequest true "Config data"
// @Success 201 {object} domain.ModelConfig
// @Router /api/v1/model-configs [post]
func (h *ModelConfigHandler) Create(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}

	var req modelconfig.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	cfg, err := h.service.Create(c.Context(), user, &req)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(cfg)
}

// Activate makes a config version the tenant's active one.
// @Summary Activate a model config version
// @Tags ModelConfigs
// @Produce json
// @Param id path int true "Config ID"
// @Success 200 {object} domain.ModelConfig
// @Router /api/v1/model-configs/{id}/activate [post]
func (h *ModelConfigHandler) Activate(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}
	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	cfg, err := h.service.Activate(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(cfg)
}

// GetActive returns the tenant's active config.
// @Summary Get the active model config
// @Tags ModelConfigs
// @Produce json
// @Success 200 {object} domain.ModelConfig
// @Router /api/v1/model-configs/active [get]
func (h *ModelConfigHandler) GetActive(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}

	cfg, err := h.service.GetActive(c.Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(cfg)
}

// List lists the tenant's config versions.
// @Summary List model config versions
// @Tags ModelConfigs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/model-configs [get]
func (h *ModelConfigHandler) List(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}

	configs, err := h.service.List(c.Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"configs": configs, "count": len(configs)})
}
