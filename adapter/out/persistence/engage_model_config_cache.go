package persistence

import (
	"context"
	"fmt"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/out"
	"engage_server/pkg/cache"
	"engage_server/pkg/logger"

	"github.com/google/uuid"
)

// activeConfigTTL bounds staleness of the cached active config. The
// suggest path reads the active config on every request, so a short
// TTL keeps the database quiet without delaying activations much.
const activeConfigTTL = 30 * time.Second

// CachedModelConfigRepository wraps a ModelConfigRepository with a
// Redis read-through cache on GetActive. Writes that can change which
// config is active invalidate the tenant's cache entry.
type CachedModelConfigRepository struct {
	inner out.ModelConfigRepository
	cache *cache.RedisCache
}

var _ out.ModelConfigRepository = (*CachedModelConfigRepository)(nil)

func NewCachedModelConfigRepository(inner out.ModelConfigRepository, c *cache.RedisCache) *CachedModelConfigRepository {
	return &CachedModelConfigRepository{inner: inner, cache: c}
}

func activeConfigKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("engage:modelcfg:active:%s", tenantID)
}

func (r *CachedModelConfigRepository) Create(ctx context.Context, cfg *domain.ModelConfig) error {
	return r.inner.Create(ctx, cfg)
}

func (r *CachedModelConfigRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.ModelConfig, error) {
	return r.inner.GetByID(ctx, tenantID, id)
}

func (r *CachedModelConfigRepository) GetActive(ctx context.Context, tenantID uuid.UUID) (*domain.ModelConfig, error) {
	key := activeConfigKey(tenantID)

	var cached domain.ModelConfig
	found, err := r.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		// Cache trouble never fails the request, fall through to the DB.
		logger.WithError(err).Warn("[ModelConfigCache] cache read failed for tenant %s", tenantID)
	} else if found {
		return &cached, nil
	}

	cfg, err := r.inner.GetActive(ctx, tenantID)
	if err != nil || cfg == nil {
		return cfg, err
	}

	if err := r.cache.SetJSON(ctx, key, cfg, activeConfigTTL); err != nil {
		logger.WithError(err).Warn("[ModelConfigCache] cache write failed for tenant %s", tenantID)
	}
	return cfg, nil
}

func (r *CachedModelConfigRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.ModelConfig, error) {
	return r.inner.List(ctx, tenantID)
}

func (r *CachedModelConfigRepository) Activate(ctx context.Context, tenantID uuid.UUID, id int64) error {
	if err := r.inner.Activate(ctx, tenantID, id); err != nil {
		return err
	}
	r.invalidate(ctx, tenantID)
	return nil
}

func (r *CachedModelConfigRepository) UpdateLearnings(ctx context.Context, tenantID uuid.UUID, id int64, instructions string, metrics domain.ModelMetrics) error {
	if err := r.inner.UpdateLearnings(ctx, tenantID, id, instructions, metrics); err != nil {
		return err
	}
	r.invalidate(ctx, tenantID)
	return nil
}

func (r *CachedModelConfigRepository) ListFeedbackTenants(ctx context.Context) ([]uuid.UUID, error) {
	return r.inner.ListFeedbackTenants(ctx)
}

func (r *CachedModelConfigRepository) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if err := r.cache.Delete(ctx, activeConfigKey(tenantID)); err != nil {
		logger.WithError(err).Warn("[ModelConfigCache] cache invalidation failed for tenant %s", tenantID)
	}
}
