// Package learning implements the scheduled batch job that folds
// accumulated feedback samples into updated generation instructions and
// aggregate quality metrics, consuming each sample exactly once.
package learning

import (
	"context"
	"sort"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/out"
	"engage_server/core/service/textscore"
	"engage_server/pkg/logger"

	"github.com/google/uuid"
)

const (
	// window is the trailing period of feedback considered per cycle.
	window = 7 * 24 * time.Hour

	// preferredEditBound: modified samples edited less than this still
	// count as preferred signal.
	preferredEditBound = 20

	topAgents = 5

	// smoothing constant for the agent conversion proxy n/(n+k).
	agentSmoothing = 10.0
)

// Job aggregates feedback per tenant into learned instructions.
type Job struct {
	configs       out.ModelConfigRepository
	feedback      out.FeedbackRepository
	conversations out.ConversationRepository
}

// NewJob creates the batch learning job.
func NewJob(configs out.ModelConfigRepository, feedback out.FeedbackRepository, conversations out.ConversationRepository) *Job {
	return &Job{configs: configs, feedback: feedback, conversations: conversations}
}

// RunAll iterates every feedback-enabled tenant. Per-tenant failures are
// logged and never abort the remaining tenants.
func (j *Job) RunAll(ctx context.Context, batchID string) {
	tenants, err := j.configs.ListFeedbackTenants(ctx)
	if err != nil {
		logger.Error("learning cycle: tenant listing failed: %v", err)
		return
	}

	for _, tenant := range tenants {
		if err := j.RunTenant(ctx, tenant, batchID); err != nil {
			logger.Error("learning cycle failed: tenant=%s err=%v", tenant, err)
		}
	}
}

// RunTenant runs one tenant's learning cycle. Re-running with the same or
// a new batch id after a crash is safe: only unconsumed samples are
// selected, and each is claimed with a compare-and-swap before counting.
func (j *Job) RunTenant(ctx context.Context, tenantID uuid.UUID, batchID string) error {
	cfg, err := j.configs.GetActive(ctx, tenantID)
	if err != nil {
		return err
	}
	if cfg == nil || !cfg.FeedbackEnabled {
		return nil
	}

	since := time.Now().UTC().Add(-window)
	samples, err := j.feedback.ListUnconsumed(ctx, tenantID, cfg.ID, since)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return nil
	}

	// Claim first: a sample consumed by a prior crashed run drops out here
	// and is never double-counted.
	claimed := samples[:0]
	for _, s := range samples {
		ok, err := j.feedback.Claim(ctx, s.ID, batchID)
		if err != nil {
			return err
		}
		if ok {
			claimed = append(claimed, s)
		}
	}
	if len(claimed) == 0 {
		return nil
	}

	agg := aggregate(claimed)

	topIDs, err := j.topAgentIDs(ctx, tenantID)
	if err != nil {
		logger.Warn("learning cycle: top-agent lookup failed: tenant=%s err=%v", tenantID, err)
	}
	topAgentPhrases := ExtractBigrams(textsByAgents(claimed, topIDs), 10)

	instructions := StripLearnedBlock(cfg.SystemInstructions)
	block := BuildLearnedBlock(agg.preferredPhrases, textscore.RoboticPhrases, agg.targetLength)
	instructions = instructions + "\n\n" + block

	metrics := j.blendMetrics(cfg, agg, topAgentPhrases, batchID)

	return j.configs.UpdateLearnings(ctx, tenantID, cfg.ID, instructions, metrics)
}

type aggregates struct {
	preferredPhrases []string
	rejectedPhrases  []string
	avgHuman         float64
	avgNatural       float64
	usedAsIsRate     float64
	targetLength     int
	positives        int
	count            int
}

func aggregate(samples []*domain.FeedbackSample) aggregates {
	var preferredTexts, rejectedTexts []string
	var humanSum, naturalSum float64
	usedAsIs := 0
	positives := 0
	lengthSum := 0
	lengthN := 0

	for _, s := range samples {
		humanSum += s.HumanLikeness
		naturalSum += s.NaturalLanguage
		if s.Engagement == domain.EngagementPositive {
			positives++
		}

		switch {
		case s.FeedbackType == domain.FeedbackUsedAsIs,
			s.FeedbackType == domain.FeedbackModified && s.EditDetails.EditDistance < preferredEditBound:
			preferredTexts = append(preferredTexts, s.FinalText)
			lengthSum += len(s.FinalText)
			lengthN++
		default:
			rejectedTexts = append(rejectedTexts, s.FinalText)
		}
		if s.FeedbackType == domain.FeedbackUsedAsIs {
			usedAsIs++
		}
	}

	n := float64(len(samples))
	agg := aggregates{
		preferredPhrases: ExtractBigrams(preferredTexts, 10),
		rejectedPhrases:  ExtractBigrams(rejectedTexts, 10),
		avgHuman:         humanSum / n,
		avgNatural:       naturalSum / n,
		usedAsIsRate:     float64(usedAsIs) / n,
		positives:        positives,
		count:            len(samples),
	}
	if lengthN > 0 {
		agg.targetLength = lengthSum / lengthN
	}
	return agg
}

// topAgentIDs ranks agents by the smoothed conversion proxy n/(n+10) and
// returns the best five.
func (j *Job) topAgentIDs(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]bool, error) {
	counts, err := j.conversations.AgentSuccessCounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	sort.Slice(counts, func(a, b int) bool {
		sa := float64(counts[a].SuccessCount) / (float64(counts[a].SuccessCount) + agentSmoothing)
		sb := float64(counts[b].SuccessCount) / (float64(counts[b].SuccessCount) + agentSmoothing)
		return sa > sb
	})

	top := make(map[uuid.UUID]bool, topAgents)
	for i, c := range counts {
		if i >= topAgents {
			break
		}
		top[c.AgentID] = true
	}
	return top, nil
}

func textsByAgents(samples []*domain.FeedbackSample, agents map[uuid.UUID]bool) []string {
	var texts []string
	for _, s := range samples {
		if agents[s.AgentID] {
			texts = append(texts, s.FinalText)
		}
	}
	return texts
}

// blendMetrics folds the batch aggregates into the config's metrics blob,
// smoothed by the config's learning rate (1 = replace, 0 = freeze).
func (j *Job) blendMetrics(cfg *domain.ModelConfig, agg aggregates, topAgentPhrases []string, batchID string) domain.ModelMetrics {
	rate := cfg.LearningRate
	if rate <= 0 || rate > 1 {
		rate = 1
	}

	prev := cfg.Metrics
	blend := func(old, batch float64) float64 {
		if prev.SampleCount == 0 {
			return batch
		}
		return old + rate*(batch-old)
	}

	return domain.ModelMetrics{
		SampleCount:         prev.SampleCount + agg.count,
		AvgHumanLikeness:    blend(prev.AvgHumanLikeness, agg.avgHuman),
		AvgNaturalLanguage:  blend(prev.AvgNaturalLanguage, agg.avgNatural),
		UsedAsIsRate:        blend(prev.UsedAsIsRate, agg.usedAsIsRate),
		AvgResponseLength:   agg.targetLength,
		LastBatchID:         batchID,
		LastBatchAt:         time.Now().UTC(),
		PreferredPhrases:    agg.preferredPhrases,
		DiscouragedPhrases:  agg.rejectedPhrases,
		TopAgentPhrases:     topAgentPhrases,
		EngagementPositives: prev.EngagementPositives + agg.positives,
	}
}
