package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/phonedir/contact-reports/internal/config"
	gateway "github.com/phonedir/contact-reports/internal/gateways"
	"github.com/phonedir/contact-reports/internal/pipeline"
	"github.com/phonedir/contact-reports/internal/queue"
	"github.com/phonedir/contact-reports/internal/repository"
	"github.com/phonedir/contact-reports/pkg/logger"
	"github.com/phonedir/contact-reports/pkg/pg"
	"github.com/phonedir/contact-reports/pkg/prom"
	"github.com/phonedir/contact-reports/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill, os.Interrupt, syscall.SIGTERM)

	cfg := &gateway.Config{
		BaseURL:         config.Get().ContactApiUrl,
		Timeout:         config.Get().ContactApiTimeout,
		MaxRetries:      config.Get().ContactApiMaxRetries,
		RetryDelay:      time.Millisecond * 100,
		MaxConns:        1000,
		ReadBufferSize:  1024 * 4,
		WriteBufferSize: 1024 * 4,
	}
	client, err := gateway.NewContactClient(cfg)
	if err != nil {
		logger.Error("failed to create contact gateway", "error", err)
		return
	}

	reportRepo := repository.NewReportRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	resultQueue, err := queue.NewQueue(redisAdap, queue.QueueConfig{
		Name:              config.Get().ResultStream,
		ConsumerGroup:     config.Get().ResultConsumerGroup,
		ConsumerName:      config.Get().QueueConsumerName,
		MaxRetries:        config.Get().QueueMaxRetries,
		VisibilityTimeout: config.Get().QueueVisibilityTimeout,
		PollInterval:      config.Get().QueuePollInterval,
		BatchSize:         config.Get().QueueBatchSize,
		MaxLen:            config.Get().QueueMaxLen,
		EnableDLQ:         config.Get().QueueEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating result queue", "error", err)
		return
	}

	dispatcher := pipeline.NewOutboxDispatcher(
		outboxRepo,
		config.Get().OutboxDispatchPeriod,
		config.Get().OutboxBatchSize,
		resultQueue,
	)
	sweeper := pipeline.NewSweeper(reportRepo, config.Get().SweepInterval)

	service, err := pipeline.NewService(redisAdap, dispatcher, sweeper)
	if err != nil {
		logger.Error("failed to create pipeline service", "error", err)
		return
	}

	err = service.RegisterConsumer(queue.QueueConfig{
		Name:              config.Get().RequestStream,
		ConsumerGroup:     config.Get().RequestConsumerGroup,
		ConsumerName:      config.Get().QueueConsumerName,
		MaxRetries:        config.Get().QueueMaxRetries,
		VisibilityTimeout: config.Get().QueueVisibilityTimeout,
		PollInterval:      config.Get().QueuePollInterval,
		BatchSize:         config.Get().QueueBatchSize,
		MaxLen:            config.Get().QueueMaxLen,
		EnableDLQ:         config.Get().QueueEnableDLQ,
	}, pipeline.NewRequestProcessor(reportRepo, outboxRepo, client, config.Get().ResultStream, config.Get().ReportPreparingTTL))
	if err != nil {
		logger.Error("failed to register request consumer", "error", err)
		return
	}

	err = service.RegisterConsumer(queue.QueueConfig{
		Name:              config.Get().ResultStream,
		ConsumerGroup:     config.Get().ResultConsumerGroup,
		ConsumerName:      config.Get().QueueConsumerName,
		MaxRetries:        config.Get().QueueMaxRetries,
		VisibilityTimeout: config.Get().QueueVisibilityTimeout,
		PollInterval:      config.Get().QueuePollInterval,
		BatchSize:         config.Get().QueueBatchSize,
		MaxLen:            config.Get().QueueMaxLen,
		EnableDLQ:         config.Get().QueueEnableDLQ,
	}, pipeline.NewResultProcessor(reportRepo))
	if err != nil {
		logger.Error("failed to register result consumer", "error", err)
		return
	}

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(":9100", "/metrics")
	}()

	go func() {
		err := service.Start()
		if err != nil {
			logger.Error("failed to start pipeline", "error", err)
		}
	}()

	select {
	case <-c:
		service.Stop()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
