package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"engage_server/core/port/out"
	"engage_server/pkg/logger"
)

const (
	// LearningCycleInterval is how often the batch learning job runs.
	LearningCycleInterval = 7 * 24 * time.Hour
)

// LearningScheduler periodically kicks off the batch learning cycle and
// pattern extraction for every eligible tenant. Each cycle run gets a
// fresh batch id so consumed samples can be traced back to the run that
// claimed them.
type LearningScheduler struct {
	configs       out.ModelConfigRepository
	conversations out.ConversationRepository
	producer      out.MessageProducer
	interval      time.Duration
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewLearningScheduler creates a new learning scheduler.
func NewLearningScheduler(
	configs out.ModelConfigRepository,
	conversations out.ConversationRepository,
	producer out.MessageProducer,
) *LearningScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &LearningScheduler{
		configs:       configs,
		conversations: conversations,
		producer:      producer,
		interval:      LearningCycleInterval,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start starts the learning scheduler.
func (s *LearningScheduler) Start() {
	logger.Info("[LearningScheduler] Starting...")
	go s.run()
}

// Stop stops the learning scheduler.
func (s *LearningScheduler) Stop() {
	logger.Info("[LearningScheduler] Stopping...")
	s.cancel()
}

// run is the main loop.
func (s *LearningScheduler) run() {
	// let the server settle before the first cycle
	time.Sleep(30 * time.Second)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			logger.Info("[LearningScheduler] Stopped")
			return
		case <-ticker.C:
			s.dispatchCycle()
		}
	}
}

// dispatchCycle publishes one learning job per feedback-enabled tenant
// and one pattern extraction job per tenant with conversations.
func (s *LearningScheduler) dispatchCycle() {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	batchID := uuid.New().String()

	tenants, err := s.configs.ListFeedbackTenants(ctx)
	if err != nil {
		logger.Error("[LearningScheduler] Failed to list feedback tenants: %v", err)
	} else {
		logger.Info("[LearningScheduler] Dispatching batch %s for %d tenants", batchID, len(tenants))
		for _, tenantID := range tenants {
			job := &out.LearningCycleJob{
				TenantID: tenantID.String(),
				BatchID:  batchID,
			}
			if err := s.producer.PublishLearningCycle(ctx, job); err != nil {
				logger.Error("[LearningScheduler] Failed to publish learning job for tenant %s: %v",
					tenantID, err)
			}
		}
	}

	convTenants, err := s.conversations.ListTenants(ctx)
	if err != nil {
		logger.Error("[LearningScheduler] Failed to list conversation tenants: %v", err)
		return
	}
	for _, tenantID := range convTenants {
		job := &out.PatternExtractJob{TenantID: tenantID.String()}
		if err := s.producer.PublishPatternExtract(ctx, job); err != nil {
			logger.Error("[LearningScheduler] Failed to publish pattern job for tenant %s: %v",
				tenantID, err)
		}
	}
}

// SetInterval sets the cycle interval (for testing).
func (s *LearningScheduler) SetInterval(interval time.Duration) {
	s.interval = interval
}
