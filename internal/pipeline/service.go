package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phonedir/contact-reports/internal/queue"
	"github.com/phonedir/contact-reports/pkg/logger"
	"github.com/phonedir/contact-reports/pkg/redis"
	"github.com/phonedir/contact-reports/pkg/worker"
)

const ProcessingTimeout = time.Second * 10
const HealthInterval = time.Second * 30
const ShutdownTimeout = time.Minute

// Processor handles messages of one stream.
type Processor interface {
	Process(ctx context.Context, message *queue.Message) error
	GetType() string
}

// Service runs the report pipeline: one consumer per stream feeding a
// worker pool, plus the outbox dispatcher and the sweeper. A stream gets
// exactly one consumer so its messages are handled in receive order.
type Service struct {
	adapter    redis.RedisAdapter
	queues     []*queue.Queue
	processors map[string]Processor
	metrics    *ServiceMetrics
	dispatcher *OutboxDispatcher
	sweeper    *Sweeper
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	worker     *worker.WorkerManager
}

func NewService(redis redis.RedisAdapter, dispatcher *OutboxDispatcher, sweeper *Sweeper) (*Service, error) {
	ctx, cancel := context.WithCancel(context.Background())
	service := &Service{
		adapter:    redis,
		queues:     make([]*queue.Queue, 0),
		processors: make(map[string]Processor),
		metrics:    NewServiceMetrics(),
		dispatcher: dispatcher,
		sweeper:    sweeper,
		ctx:        ctx,
		cancel:     cancel,
		worker:     worker.NewWorkerManager(10_000, 4, nil),
	}
	return service, nil
}

// RegisterConsumer binds a processor to a stream. Must be called before
// Start.
func (s *Service) RegisterConsumer(config queue.QueueConfig, processor Processor) error {
	q, err := queue.NewQueue(s.adapter, config)
	if err != nil {
		return fmt.Errorf("failed to create queue %s: %w", config.Name, err)
	}

	s.queues = append(s.queues, q)
	s.processors[config.Name] = processor
	logger.Info("Registered consumer", "stream", config.Name, "type", processor.GetType())
	return nil
}

func (s *Service) Start() error {
	logger.Info("Starting pipeline service...")

	s.worker.SetWorker(s.workerHandler)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Start(); err != nil {
			logger.Error("Worker manager stopped", "error", err)
		}
	}()

	for _, q := range s.queues {
		if err := q.Consume(s.messageHandler); err != nil {
			return fmt.Errorf("failed to start consumer for %s: %w", q.Name(), err)
		}
		logger.Info("Started consumer", "stream", q.Name())
	}

	if s.dispatcher != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.dispatcher.Run(s.ctx)
		}()
	}

	if s.sweeper != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.sweeper.Run(s.ctx)
		}()
	}

	s.wg.Add(2)
	go s.metricsReporter()
	go s.healthChecker()

	logger.Info("Pipeline service started", "consumers", len(s.queues))
	return nil
}

func (s *Service) metricsReporter() {
	defer s.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportMetrics()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) reportMetrics() {
	stats := s.metrics.GetStats()
	logger.Info("Pipeline metrics", "total_processed", stats["total_processed"], "total_failed", stats["total_failed"], "rate_per_second", stats["rate_per_second"], "avg_duration_ms", stats["avg_duration_ms"], "uptime_seconds", stats["uptime_seconds"])

	for _, q := range s.queues {
		if qStats, err := q.GetStats(); err == nil {
			logger.Info("Stream stats", "stream", q.Name(), "total", qStats.TotalMessages, "pending", qStats.PendingMessages)
		}
	}
}

func (s *Service) healthChecker() {
	defer s.wg.Done()

	ticker := time.NewTicker(HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.performHealthCheck()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) performHealthCheck() {
	if err := s.adapter.Client().Ping(context.Background()).Err(); err != nil {
		logger.Error("HEALTH CHECK FAILED: Redis connection error", "error", err)
		return
	}

	for _, q := range s.queues {
		stats, err := q.GetStats()
		if err != nil {
			logger.Warn("HEALTH CHECK WARNING: Stream stats unavailable", "stream", q.Name(), "error", err)
			continue
		}

		if stats.PendingMessages > 10000 {
			logger.Warn("HEALTH CHECK WARNING: Stream has high lag", "stream", q.Name(), "pending_messages", stats.PendingMessages)
		}
	}

	logger.Info("HEALTH CHECK: OK - Service healthy")
}

// Stop gracefully stops the service.
func (s *Service) Stop() {
	logger.Info("Shutting down pipeline service...")

	s.cancel()

	timeout := ShutdownTimeout
	stopChan := make(chan bool, len(s.queues))

	for _, q := range s.queues {
		go func(queue *queue.Queue) {
			if err := queue.Stop(timeout); err != nil {
				logger.Error("Error stopping consumer", "stream", queue.Name(), "error", err)
			}
			stopChan <- true
		}(q)
	}

	for range s.queues {
		select {
		case <-stopChan:
		case <-time.After(timeout + 5*time.Second):
			logger.Warn("Timeout waiting for consumers to stop")
		}
	}

	s.worker.Exit()
	s.wg.Wait()
	s.reportMetrics()

	logger.Info("Pipeline service stopped")
}

type jobResult struct {
	msg        *queue.Message
	resultChan chan error
	ctx        context.Context
}

// messageHandler blocks the consumer loop until the worker pool finished
// the message, which keeps per-stream ordering intact.
func (s *Service) messageHandler(ctx context.Context, msg *queue.Message) error {
	resultChan := make(chan error, 1)

	msgCtx, cancel := context.WithTimeout(ctx, ProcessingTimeout+time.Second)
	defer cancel()

	job := &jobResult{
		msg:        msg,
		resultChan: resultChan,
		ctx:        msgCtx,
	}

	s.worker.Enqueue(job)

	select {
	case err := <-resultChan:
		return err
	case <-msgCtx.Done():
		return fmt.Errorf("timeout waiting for worker to process message: %w", msgCtx.Err())
	}
}

func (s *Service) workerHandler(workerIndex int, job interface{}) {
	jobRes, ok := job.(*jobResult)
	if !ok {
		logger.Error("Invalid job type in worker", "worker", workerIndex)
		return
	}

	msg := jobRes.msg
	start := time.Now()
	var resultErr error

	select {
	case <-jobRes.ctx.Done():
		logger.Warn("Job context cancelled before processing started", "worker", workerIndex)
		return
	default:
	}

	processor, ok := s.processors[msg.Stream]
	if !ok {
		logger.Error("No processor for stream", "worker", workerIndex, "stream", msg.Stream)
		s.metrics.RecordFailure()
		resultErr = nil // ack, an unroutable message will not succeed on retry
	} else if err := processor.Process(jobRes.ctx, msg); err != nil {
		s.metrics.RecordFailure()
		logger.Error("Failed to process message", "worker", workerIndex, "stream", msg.Stream, "error", err)
		resultErr = err
	} else {
		s.metrics.RecordSuccess(time.Since(start))
		resultErr = nil
	}

	select {
	case jobRes.resultChan <- resultErr:
	case <-jobRes.ctx.Done():
		logger.Warn("Context cancelled while sending result, message handler timed out", "worker", workerIndex)
	}
}
