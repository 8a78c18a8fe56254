package http

import (
	"engage_server/core/service/contact"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler handles HTTP requests for contacts.
type ContactHandler struct {
	service *contact.Service
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service *contact.Service) *ContactHandler {
	return &ContactHandler{service: service}
}

// Register registers contact routes.
func (h *ContactHandler) Register(router fiber.Router) {
	contacts := router.Group("/contacts")
	contacts.Get("/", h.List)
	contacts.Post("/", h.Create)
	contacts.Get("/:id", h.Get)
}

// Create creates a new contact.
// @Summary Create a contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Param request body contact.CreateRequest true "Contact data"
// @Success 201 {object} domain.Contact
// @Router /api/v1/contacts [post]
func (h *ContactHandler) Create(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}

	var req contact.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	created, err := h.service.Create(c.Context(), user, &req)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(created)
}

// Get returns one contact with its engagement state.
// @Summary Get a contact
// @Tags Contacts
// @Produce json
// @Param id path int true "Contact ID"
// @Success 200 {object} domain.Contact
// @Router /api/v1/contacts/{id} [get]
func (h *ContactHandler) Get(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}
	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	found, err := h.service.Get(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(found)
}

// List lists the tenant's contacts.
// @Summary List contacts
// @Tags Contacts
// @Produce json
// @Param limit query int false "Limit (default 50)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/contacts [get]
func (h *ContactHandler) List(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}

	contacts, err := h.service.List(c.Context(), user, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"contacts": contacts, "count": len(contacts)})
}
