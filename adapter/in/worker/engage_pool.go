package worker

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/pool"
	"github.com/rs/zerolog"
)

// PoolConfig holds worker pool configuration.
type PoolConfig struct {
	MaxWorkers       int
	QueueSize        int
	JobTimeout       time.Duration
	JobTimeoutByType map[JobType]time.Duration
	BatchSize        int
	WorkerChanSize   int
	MaxRetries       int
}

// DefaultPoolConfig returns default pool configuration. Learning cycles
// aggregate a week of samples, so they get the longest timeout.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxWorkers:     8,
		QueueSize:      500,
		JobTimeout:     30 * time.Second,
		BatchSize:      10,
		WorkerChanSize: 50,
		MaxRetries:     3,
		JobTimeoutByType: map[JobType]time.Duration{
			JobEngagementCheck: 30 * time.Second,
			JobLearningCycle:   5 * time.Minute,
			JobPatternExtract:  3 * time.Minute,
		},
	}
}

// Pool runs stream jobs on a bounded worker group with retry and a dead
// letter queue for jobs that exhaust their retries.
type Pool struct {
	handler *Handler
	config  *PoolConfig

	pool *pool.WorkerGroup[*Message]

	ctx    context.Context
	cancel context.CancelFunc

	metrics *PoolMetrics
	log     zerolog.Logger

	dlq   chan *Message
	dlqWg sync.WaitGroup

	started bool
	mu      sync.Mutex
}

// PoolMetrics holds pool counters.
type PoolMetrics struct {
	JobsProcessed int64
	JobsFailed    int64
	JobsRetried   int64
	QueueSize     int32
}

type messageWorker struct {
	pool *Pool
}

// Do implements pool.Worker.
func (w *messageWorker) Do(ctx context.Context, msg *Message) error {
	return w.pool.processJob(ctx, msg)
}

// NewPool creates a worker pool.
func NewPool(handler *Handler, config *PoolConfig, log zerolog.Logger) *Pool {
	if config == nil {
		config = DefaultPoolConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		handler: handler,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		metrics: &PoolMetrics{},
		log:     log.With().Str("component", "worker_pool").Logger(),
		dlq:     make(chan *Message, 100),
	}
}

// Start starts the worker pool.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}

	worker := &messageWorker{pool: p}
	p.pool = pool.New[*Message](p.config.MaxWorkers, worker).
		WithBatchSize(p.config.BatchSize).
		WithWorkerChanSize(p.config.WorkerChanSize).
		WithContinueOnError()

	if err := p.pool.Go(p.ctx); err != nil {
		p.log.Error().Err(err).Msg("failed to start pool")
		return
	}

	p.started = true

	p.dlqWg.Add(1)
	go p.dlqProcessor()

	p.log.Info().
		Int("max_workers", p.config.MaxWorkers).
		Int("batch_size", p.config.BatchSize).
		Msg("worker pool started")
}

// Stop gracefully stops the worker pool.
func (p *Pool) Stop() {
	p.log.Info().Msg("stopping worker pool...")

	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer closeCancel()

	if p.pool != nil {
		if err := p.pool.Close(closeCtx); err != nil {
			p.log.Warn().Err(err).Msg("error closing pool")
		}
	}

	p.cancel()

	close(p.dlq)
	p.dlqWg.Wait()

	p.log.Info().
		Int64("processed", atomic.LoadInt64(&p.metrics.JobsProcessed)).
		Int64("failed", atomic.LoadInt64(&p.metrics.JobsFailed)).
		Msg("worker pool stopped")
}

// Submit submits a job to the pool.
func (p *Pool) Submit(msg *Message) bool {
	p.mu.Lock()
	if !p.started || p.pool == nil {
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()

	p.pool.Submit(msg)
	atomic.AddInt32(&p.metrics.QueueSize, 1)
	return true
}

func (p *Pool) getJobTimeout(jobType JobType) time.Duration {
	if timeout, ok := p.config.JobTimeoutByType[jobType]; ok {
		return timeout
	}
	return p.config.JobTimeout
}

// processJob processes a single job with a per-type timeout. Failures
// retry with exponential backoff plus jitter; exhausted jobs land in the
// dead letter queue.
func (p *Pool) processJob(ctx context.Context, msg *Message) error {
	defer atomic.AddInt32(&p.metrics.QueueSize, -1)

	jobCtx, cancel := context.WithTimeout(ctx, p.getJobTimeout(msg.Type))
	defer cancel()

	err := p.handler.Process(jobCtx, msg)
	if err == nil {
		atomic.AddInt64(&p.metrics.JobsProcessed, 1)
		return nil
	}

	p.log.Error().
		Err(err).
		Str("job_id", msg.ID).
		Str("job_type", msg.Type).
		Int("retries", msg.Retries).
		Msg("job processing failed")

	if msg.Retries < p.config.MaxRetries {
		msg.Retries++
		atomic.AddInt64(&p.metrics.JobsRetried, 1)

		backoff := time.Duration(1<<msg.Retries)*time.Second +
			time.Duration(rand.Intn(500))*time.Millisecond
		time.AfterFunc(backoff, func() {
			p.Submit(msg)
		})
		return err
	}

	atomic.AddInt64(&p.metrics.JobsFailed, 1)
	select {
	case p.dlq <- msg:
	default:
		p.log.Error().Str("job_id", msg.ID).Msg("DLQ full, job lost")
	}
	return err
}

// dlqProcessor logs permanently failed jobs so operators can replay them.
func (p *Pool) dlqProcessor() {
	defer p.dlqWg.Done()

	for msg := range p.dlq {
		p.log.Error().
			Str("job_id", msg.ID).
			Str("job_type", msg.Type).
			Int("retries", msg.Retries).
			Interface("payload", msg.Payload).
			Msg("DLQ: job permanently failed")
	}
}

// GetMetrics returns current pool counters.
func (p *Pool) GetMetrics() PoolMetrics {
	return PoolMetrics{
		JobsProcessed: atomic.LoadInt64(&p.metrics.JobsProcessed),
		JobsFailed:    atomic.LoadInt64(&p.metrics.JobsFailed),
		JobsRetried:   atomic.LoadInt64(&p.metrics.JobsRetried),
		QueueSize:     atomic.LoadInt32(&p.metrics.QueueSize),
	}
}
