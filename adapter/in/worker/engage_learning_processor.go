package worker

import (
	"context"
	"fmt"

	"engage_server/core/service/learning"
	"engage_server/core/service/pattern"
	"engage_server/pkg/logger"

	"github.com/google/uuid"
)

// LearningProcessor runs the batch learning cycle and pattern extraction
// jobs pulled off the stream.
type LearningProcessor struct {
	job       *learning.Job
	extractor *pattern.Extractor
}

// NewLearningProcessor creates a LearningProcessor.
func NewLearningProcessor(job *learning.Job, extractor *pattern.Extractor) *LearningProcessor {
	return &LearningProcessor{job: job, extractor: extractor}
}

// ProcessCycle handles one tenant's learning cycle.
func (p *LearningProcessor) ProcessCycle(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[LearningCyclePayload](msg)
	if err != nil {
		return fmt.Errorf("invalid learning cycle payload: %w", err)
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return fmt.Errorf("invalid tenant id %q: %w", payload.TenantID, err)
	}

	if err := p.job.RunTenant(ctx, tenantID, payload.BatchID); err != nil {
		return err
	}

	logger.Info("learning cycle done: tenant=%s batch=%s", payload.TenantID, payload.BatchID)
	return nil
}

// ProcessExtract handles one tenant's pattern extraction pass.
func (p *LearningProcessor) ProcessExtract(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[PatternExtractPayload](msg)
	if err != nil {
		return fmt.Errorf("invalid pattern extract payload: %w", err)
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return fmt.Errorf("invalid tenant id %q: %w", payload.TenantID, err)
	}

	if err := p.extractor.RunTenant(ctx, tenantID); err != nil {
		return err
	}

	logger.Info("pattern extraction done: tenant=%s", payload.TenantID)
	return nil
}
