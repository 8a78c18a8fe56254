package bootstrap

import (
	"context"
	"os"
	"sync"

	"engage_server/adapter/in/worker"
	"engage_server/config"
	"engage_server/internal/stream"
	"engage_server/pkg/logger"

	"github.com/rs/zerolog"
)

// Worker runs the background side of the engine: the deferred engagement
// checks, the batch learning cycle and pattern extraction.
type Worker struct {
	pool      *worker.Pool
	consumer  *stream.Consumer
	poller    *stream.DelayedPoller
	scheduler *worker.LearningScheduler
	deps      *Dependencies
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	zlog      zerolog.Logger
}

func NewWorker(cfg *config.Config) (*Worker, func(), error) {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		return nil, nil, err
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("component", "worker").Logger()

	engagementProcessor := worker.NewEngagementProcessor(deps.ConversationRepo, deps.FeedbackRepo)
	learningProcessor := worker.NewLearningProcessor(deps.LearningJob, deps.PatternExtractor)
	handler := worker.NewHandler(engagementProcessor, learningProcessor)

	poolConfig := worker.DefaultPoolConfig()
	if cfg.WorkerMax > 0 {
		poolConfig.MaxWorkers = cfg.WorkerMax
	}
	if cfg.WorkerQueueSize > 0 {
		poolConfig.QueueSize = cfg.WorkerQueueSize
	}
	pool := worker.NewPool(handler, poolConfig, zlog)

	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		pool:   pool,
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
		zlog:   zlog,
	}

	if deps.Redis != nil {
		redisStream := stream.NewRedisStream(deps.Redis, cfg.ConsumerGroup)
		w.consumer = stream.NewConsumer(redisStream, pool, cfg.WorkerID)
		w.poller = stream.NewDelayedPoller(deps.Redis)
	} else {
		logger.Warn("Redis not available, worker will only process direct submissions")
	}

	// The scheduler publishes jobs through Redis, nothing to schedule
	// without a producer.
	if cfg.SchedulerEnabled && deps.MessageProducer != nil {
		w.scheduler = worker.NewLearningScheduler(
			deps.ModelConfigRepo,
			deps.ConversationRepo,
			deps.MessageProducer,
		)
	}

	return w, cleanup, nil
}

func (w *Worker) Start() {
	w.pool.Start()

	if w.consumer != nil {
		w.consumer.Start(w.ctx)
		w.zlog.Info().Msg("stream consumer started")
	}
	if w.poller != nil {
		w.poller.Start(w.ctx)
		w.zlog.Info().Msg("delayed job poller started")
	}
	if w.scheduler != nil {
		w.scheduler.Start()
	}

	<-w.ctx.Done()
}

func (w *Worker) Stop() {
	w.cancel()

	if w.scheduler != nil {
		w.scheduler.Stop()
	}

	w.pool.Stop()
	w.wg.Wait()
}

func (w *Worker) Submit(msg *worker.Message) bool {
	return w.pool.Submit(msg)
}

func (w *Worker) GetMetrics() worker.PoolMetrics {
	return w.pool.GetMetrics()
}

func (w *Worker) Dependencies() *Dependencies {
	return w.deps
}
