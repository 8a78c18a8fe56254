// Package conversation covers the messaging surface: inbound customer
// messages, agent sends and outcome updates.
package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/in"
	"engage_server/core/port/out"
	"engage_server/core/service/behavior"
	"engage_server/core/service/feedback"
	"engage_server/pkg/apperr"
	"engage_server/pkg/logger"
)

const (
	// behaviorRefreshEvery: the contact's behavior score is recomputed on
	// every Nth inbound message, not on every one.
	behaviorRefreshEvery = 3

	behaviorWindow = 20
)

var errDeliveryUnavailable = errors.New("delivery channel not configured")

// Service implements in.ConversationService.
type Service struct {
	conversations out.ConversationRepository
	contacts      out.ContactRepository
	suggestions   out.SuggestionRepository
	collector     *feedback.Collector
	delivery      out.Delivery
}

// NewService creates a conversation Service.
func NewService(
	conversations out.ConversationRepository,
	contacts out.ContactRepository,
	suggestions out.SuggestionRepository,
	collector *feedback.Collector,
	delivery out.Delivery,
) *Service {
	return &Service{
		conversations: conversations,
		contacts:      contacts,
		suggestions:   suggestions,
		collector:     collector,
		delivery:      delivery,
	}
}

var _ in.ConversationService = (*Service)(nil)

// Open starts a new conversation with a contact.
func (s *Service) Open(ctx context.Context, user domain.AuthUser, contactID int64) (*domain.Conversation, error) {
	contact, err := s.contacts.GetByID(ctx, user.TenantID, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, apperr.NotFound("contact")
	}

	conv := &domain.Conversation{
		TenantID:  user.TenantID,
		ContactID: contactID,
		Status:    domain.ConversationNew,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Get returns one conversation of the caller's tenant.
func (s *Service) Get(ctx context.Context, user domain.AuthUser, id int64) (*domain.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, user.TenantID, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperr.NotFound("conversation")
	}
	return conv, nil
}

// ListByContact returns the contact's conversations, newest first.
func (s *Service) ListByContact(ctx context.Context, user domain.AuthUser, contactID int64) ([]*domain.Conversation, error) {
	return s.conversations.ListByContact(ctx, user.TenantID, contactID)
}

// Messages returns the newest limit messages of a conversation,
// oldest first.
func (s *Service) Messages(ctx context.Context, user domain.AuthUser, conversationID int64, limit int) ([]*domain.Message, error) {
	conv, err := s.conversations.GetByID(ctx, user.TenantID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperr.NotFound("conversation")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.conversations.RecentMessages(ctx, conversationID, limit)
}

// RecordInbound stores a customer message and refreshes the contact's
// behavior score every third inbound message.
func (s *Service) RecordInbound(ctx context.Context, user domain.AuthUser, conversationID int64, text string) (*domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.MissingField("text")
	}

	conv, err := s.conversations.GetByID(ctx, user.TenantID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperr.NotFound("conversation")
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		ConversationID: conversationID,
		Sender:         domain.SenderContact,
		Content:        text,
		CreatedAt:      now,
	}
	if err := s.conversations.AddMessage(ctx, msg); err != nil {
		return nil, err
	}

	conv.MessageCount++
	conv.LastMessageAt = &now
	if conv.Status == domain.ConversationNew {
		conv.Status = domain.ConversationInProgress
	}
	if err := s.conversations.Update(ctx, conv); err != nil {
		return nil, err
	}

	if conv.MessageCount%behaviorRefreshEvery == 0 {
		if err := s.refreshBehavior(ctx, conv, now); err != nil {
			logger.Warn("behavior refresh failed: conversation=%d err=%v", conversationID, err)
		}
	}

	return msg, nil
}

func (s *Service) refreshBehavior(ctx context.Context, conv *domain.Conversation, at time.Time) error {
	messages, err := s.conversations.RecentMessages(ctx, conv.ID, behaviorWindow)
	if err != nil {
		return err
	}
	turns := make([]domain.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, domain.TurnOf(m))
	}
	score, tier := behavior.Score(turns)
	return s.contacts.UpdateEngagement(ctx, conv.TenantID, conv.ContactID, score, tier, conv.MessageCount, at)
}

// Send delivers an agent message. When the send originated from a
// suggestion, the feedback capture flow runs before delivery so the
// sample exists even if the channel bounces.
func (s *Service) Send(ctx context.Context, user domain.AuthUser, req *in.SendRequest) (*domain.Message, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperr.MissingField("text")
	}

	conv, err := s.conversations.GetByID(ctx, user.TenantID, req.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperr.NotFound("conversation")
	}

	fromSuggestion := false
	usedVerbatim := false
	if req.SuggestionID != nil {
		sugg, err := s.suggestions.GetByID(ctx, user.TenantID, *req.SuggestionID)
		if err != nil {
			return nil, err
		}
		if sugg == nil {
			return nil, apperr.NotFound("suggestion")
		}
		if sugg.ConversationID != req.ConversationID {
			return nil, apperr.BadRequest("suggestion belongs to another conversation")
		}
		fromSuggestion = true
		usedVerbatim = sugg.Text == req.Text

		if _, err := s.collector.Collect(ctx, user, sugg, req.Text, req.AgentRating); err != nil {
			logger.Warn("feedback capture failed: suggestion=%d err=%v", sugg.ID, err)
		}
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		ConversationID: req.ConversationID,
		Sender:         domain.SenderAgent,
		Content:        req.Text,
		FromSuggestion: fromSuggestion,
		UsedVerbatim:   usedVerbatim,
		CreatedAt:      now,
	}
	if err := s.conversations.AddMessage(ctx, msg); err != nil {
		return nil, err
	}

	conv.MessageCount++
	conv.LastMessageAt = &now
	conv.Status = domain.ConversationWaiting
	if conv.AgentID == nil {
		agentID := user.ID
		conv.AgentID = &agentID
	}
	if err := s.conversations.Update(ctx, conv); err != nil {
		return nil, err
	}

	job := &out.DeliveryJob{
		TenantID:       user.TenantID.String(),
		ConversationID: req.ConversationID,
		Text:           req.Text,
	}
	if s.delivery == nil {
		return nil, apperr.DeliveryError(errDeliveryUnavailable)
	}
	if err := s.delivery.Deliver(ctx, job); err != nil {
		return nil, apperr.DeliveryError(err)
	}

	return msg, nil
}

// Complete closes a conversation with its outcome. Successful closes feed
// the pattern extractor on its next scheduled pass.
func (s *Service) Complete(ctx context.Context, user domain.AuthUser, conversationID int64, successful bool, saleAmount *float64, products []string, notes string) error {
	conv, err := s.conversations.GetByID(ctx, user.TenantID, conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return apperr.NotFound("conversation")
	}
	if conv.Status == domain.ConversationCompleted || conv.Status == domain.ConversationLost {
		return apperr.Conflict("conversation already closed")
	}

	if successful {
		conv.Status = domain.ConversationCompleted
	} else {
		conv.Status = domain.ConversationLost
	}
	conv.IsSuccessful = successful
	conv.SaleAmount = saleAmount
	conv.ProductsSold = products
	conv.Notes = notes

	return s.conversations.Update(ctx, conv)
}
