package worker

import (
	"context"

	"engage_server/pkg/logger"

	"github.com/goccy/go-json"
)

// Handler routes stream messages to their processors.
type Handler struct {
	engagementProcessor *EngagementProcessor
	learningProcessor   *LearningProcessor
}

// NewHandler creates a Handler.
func NewHandler(engagementProcessor *EngagementProcessor, learningProcessor *LearningProcessor) *Handler {
	return &Handler{
		engagementProcessor: engagementProcessor,
		learningProcessor:   learningProcessor,
	}
}

func (h *Handler) Process(ctx context.Context, msg *Message) error {
	logger.Debug("Processing message: %s", msg.Type)

	switch msg.Type {
	case JobEngagementCheck:
		return h.engagementProcessor.ProcessCheck(ctx, msg)
	case JobLearningCycle:
		return h.learningProcessor.ProcessCycle(ctx, msg)
	case JobPatternExtract:
		return h.learningProcessor.ProcessExtract(ctx, msg)
	default:
		logger.Warn("Unknown job type: %s", msg.Type)
		return nil
	}
}

// ParsePayload decodes a message payload into a typed struct.
func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
