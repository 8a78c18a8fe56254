package http

import (
	"engage_server/core/port/in"
	"engage_server/core/service/conversation"

	"github.com/gofiber/fiber/v2"
)

// ConversationHandler handles the messaging surface: conversations,
// inbound and outbound messages, suggestions and outcome updates.
type ConversationHandler struct {
	conversations *conversation.Service
	suggestions   in.SuggestionService
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(conversations *conversation.Service, suggestions in.SuggestionService) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		suggestions:   suggestions,
	}
}

// Register registers conversation routes.
func (h *ConversationHandler) Register(router fiber.Router) {
	conversations := router.Group("/conversations")
	conversations.Post("/", h.Open)
	conversations.Get("/:id", h.Get)
	conversations.Get("/:id/messages", h.Messages)
	conversations.Post("/:id/messages", h.RecordInbound)
	conversations.Post("/:id/suggest", h.Suggest)
	conversations.Post("/:id/send", h.Send)
	conversations.Post("/:id/complete", h.Complete)

	router.Get("/contacts/:id/conversations", h.ListByContact)
}

// OpenConversationRequest starts a conversation with a contact.
type OpenConversationRequest struct {
	ContactID int64 `json:"contact_id"`
}

// InboundMessageRequest records a customer message.
type InboundMessageRequest struct {
	Text string `json:"text"`
}

// SendMessageRequest is an agent send, optionally tied to a suggestion.
type SendMessageRequest struct {
	Text         string `json:"text"`
	SuggestionID *int64 `json:"suggestion_id,omitempty"`
	AgentRating  *int   `json:"agent_rating,omitempty"`
}

// CompleteRequest closes a conversation with its outcome.
type CompleteRequest struct {
	Successful   bool     `json:"successful"`
	SaleAmount   *float64 `json:"sale_amount,omitempty"`
	ProductsSold []string `json:"products_sold,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// Open starts a new conversation.
// @Summary Open a conversation with a contact
// @Tags Conversations
// @Accept json
// @Produce json
// @Param request body OpenConversationRequest true "Contact"
// @Success 201 {object} domain.Conversation
// @Router /api/v1/conversations [post]
func (h *ConversationHandler) Open(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}

	var req OpenConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	conv, err := h.conversations.Open(c.Context(), user, req.ContactID)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(conv)
}

// Get returns one conversation.
// @Summary Get a conversation
// @Tags Conversations
// @Produce json
// @Param id path int true "Conversation ID"
// @Success 200 {object} domain.Conversation
// @Router /api/v1/conversations/{id} [get]
func (h *ConversationHandler) Get(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}
	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	conv, err := h.conversations.Get(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(conv)
}

// Messages returns the newest messages of a conversation, oldest first.
// @Summary List conversation messages
// @Tags Conversations
// @Produce json
// @Param id path int true "Conversation ID"
// @Param limit query int false "Limit (default 50)"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/conversations/{id}/messages [get]
func (h *ConversationHandler) Messages(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}
	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	messages, err := h.conversations.Messages(c.Context(), user, id, c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"messages": messages, "count": len(messages)})
}

// RecordInbound stores a customer message.
// @Summary Record an inbound customer message
// @Tags Conversations
// @Accept json
// @Produce json
// @Param id path int true "Conversation ID"
// @Param request body InboundMessageRequest true "Message"
// @Success 201 {object} domain.Message
// @Router /api/v1/conversations/{id}/messages [post]
func (h *ConversationHandler) RecordInbound(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}
	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	var req InboundMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	msg, err := h.conversations.RecordInbound(c.Context(), user, id, req.Text)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(msg)
}

// Suggest produces a reply suggestion for the latest customer message.
// @Summary Suggest a reply
// @Tags Conversations
// @Produce json
// @Param id path int true "Conversation ID"
// @Success 200 {object} domain.Suggestion
// @Router /api/v1/conversations/{id}/suggest [post]
func (h *ConversationHandler) Suggest(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}
	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	sugg, err := h.suggestions.Suggest(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(sugg)
}

// Send delivers an agent message, capturing suggestion feedback when the
// send originated from one.
// @Summary Send an agent message
// @Tags Conversations
// @Accept json
// @Produce json
// @Param id path int true "Conversation ID"
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} domain.Message
// @Router /api/v1/conversations/{id}/send [post]
func (h *ConversationHandler) Send(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}
	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	msg, err := h.conversations.Send(c.Context(), user, &in.SendRequest{
		ConversationID: id,
		Text:           req.Text,
		SuggestionID:   req.SuggestionID,
		AgentRating:    req.AgentRating,
	})
	if err != nil {
		return err
	}
	return c.Status(201).JSON(msg)
}

// Complete closes a conversation with its outcome.
// @Summary Complete a conversation
// @Tags Conversations
// @Accept json
// @Param id path int true "Conversation ID"
// @Param request body CompleteRequest true "Outcome"
// @Success 204
// @Router /api/v1/conversations/{id}/complete [post]
func (h *ConversationHandler) Complete(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}
	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	var req CompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.conversations.Complete(c.Context(), user, id, req.Successful, req.SaleAmount, req.ProductsSold, req.Notes); err != nil {
		return err
	}
	return c.SendStatus(204)
}

// ListByContact lists a contact's conversations.
// @Summary List a contact's conversations
// @Tags Conversations
// @Produce json
// @Param id path int true "Contact ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/contacts/{id}/conversations [get]
func (h *ConversationHandler) ListByContact(c *fiber.Ctx) error {
	user, err := GetAuthUser(c)
	if err != nil {
		return err
	}
	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	conversations, err := h.conversations.ListByContact(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"conversations": conversations, "count": len(conversations)})
}
