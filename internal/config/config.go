package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/phonedir/contact-reports/pkg/logger"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every env-sourced value used by the report and contact
// services. Only this struct must be used to hold configuration values, no
// direct access to env, ini or any other config source should be made.
type Config struct {
	AppEnv   string `env:"APP_ENV" default:"dev"`
	AppName  string `env:"APP_NAME" default:"contact_reports"`
	AppDebug bool   `env:"APP_DEBUG" default:"1"`

	HttpListenAddr        string `env:"HTTP_LISTEN_ADDR"`
	ContactHttpListenAddr string `env:"CONTACT_HTTP_LISTEN_ADDR"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE"`

	RequestStream          string        `env:"REPORT_REQUEST_STREAM" default:"report-requests"`
	ResultStream           string        `env:"REPORT_RESULT_STREAM" default:"report-results"`
	RequestConsumerGroup   string        `env:"REPORT_REQUEST_CONSUMER_GROUP" default:"report-request-workers"`
	ResultConsumerGroup    string        `env:"REPORT_RESULT_CONSUMER_GROUP" default:"report-result-workers"`
	QueueConsumerName      string        `env:"QUEUE_CONSUMER_NAME"`
	QueueMaxRetries        int           `env:"QUEUE_MAX_RETRIES"`
	QueueVisibilityTimeout time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT"`
	QueuePollInterval      time.Duration `env:"QUEUE_POLL_INTERVAL"`
	QueueBatchSize         int64         `env:"QUEUE_BATCH_SIZE"`
	QueueMaxLen            int64         `env:"QUEUE_MAX_LEN"`
	QueueEnableDLQ         bool          `env:"QUEUE_ENABLE_DLQ"`

	ContactApiUrl        string        `env:"CONTACT_API_URL"`
	ContactApiTimeout    time.Duration `env:"CONTACT_API_TIMEOUT" default:"5s"`
	ContactApiMaxRetries int           `env:"CONTACT_API_MAX_RETRIES" default:"3"`

	ReportPreparingTTL   time.Duration `env:"REPORT_PREPARING_TTL" default:"10m"`
	SweepInterval        time.Duration `env:"REPORT_SWEEP_INTERVAL" default:"1m"`
	OutboxDispatchPeriod time.Duration `env:"OUTBOX_DISPATCH_PERIOD" default:"1s"`
	OutboxBatchSize      int           `env:"OUTBOX_BATCH_SIZE" default:"100"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to load env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)

	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
