package config

import (
	"log"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// Service
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"emaquest"`

	// PostgreSQL
	PostgreSQLHost        string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort        string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser        string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword    string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase    string `env:"POSTGRESQL_DATABASE" envDefault:"emaquest"`
	PostgreSQLSchema      string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode     string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle     int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen     int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`
	PostgreSQLReplicaHost string `env:"POSTGRESQL_REPLICA_HOST"` // optional read replica for researcher scans

	// Redis
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"emaq"`

	// RabbitMQ
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT
	JWTSecret        string `env:"JWT_SECRET"` // required, signs participant tokens
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"43200"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"30"`

	// Researcher access
	AdminAllowList   string `env:"ADMIN_ALLOWLIST"`   // comma-separated researcher identities
	AutomationSecret string `env:"AUTOMATION_SECRET"` // shared secret for server-side broadcast triggers

	// Push provider (opaque HTTP endpoint; delivery transport is not ours)
	PushProvider  string `env:"PUSH_PROVIDER" envDefault:"webhook"` // webhook, mock
	PushEndpoint  string `env:"PUSH_ENDPOINT"`
	PushAuthToken string `env:"PUSH_AUTH_TOKEN"`

	// Study protocol
	StudyCode           string `env:"STUDY_CODE" envDefault:"EMA-7X7"`
	StudyDays           int    `env:"STUDY_DAYS" envDefault:"7"`
	SlotsPerDay         int    `env:"SLOTS_PER_DAY" envDefault:"7"`
	SlotTimes           string `env:"SLOT_TIMES" envDefault:"09:00:00,11:00:00,13:00:00,15:00:00,17:00:00,19:00:00,21:30:00"`
	AnswerWindowSeconds int    `env:"ANSWER_WINDOW_SECONDS" envDefault:"300"` // 5 minutes from flow open to auto-miss
	StudyTimezone       string `env:"STUDY_TIMEZONE" envDefault:"America/Sao_Paulo"`

	// Snowflake ID generator
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// Logging
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// OpenTelemetry
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint string  `env:"TRACING_ENDPOINT" envDefault:"localhost:4317"`
	TracingSampler  float64 `env:"TRACING_SAMPLER" envDefault:"0.1"`

	// Rate limiting (configured inside middleware)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"100"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.JWTSecret == "" {
		if Cfg.IsProduction() {
			log.Fatal("JWT_SECRET is required in production")
		}
		log.Printf("WARN: JWT_SECRET is not set, using an insecure development secret")
		Cfg.JWTSecret = "insecure-dev-secret"
	}

	if len(Cfg.SlotTimeList()) != Cfg.SlotsPerDay {
		log.Fatalf("SLOT_TIMES must list exactly %d times, got %d", Cfg.SlotsPerDay, len(Cfg.SlotTimeList()))
	}

	if Cfg.IsProduction() && Cfg.AutomationSecret == "" {
		log.Fatal("AUTOMATION_SECRET is required in production")
	}

	if Cfg.AdminAllowList == "" {
		log.Printf("WARN: ADMIN_ALLOWLIST is not set, researcher endpoints will reject everyone")
	}

	if Cfg.PushProvider == "webhook" && Cfg.PushEndpoint == "" {
		log.Printf("WARN: PUSH_ENDPOINT is not set, push delivery will not work")
	}
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

// GetReplicaDSN returns the DSN of the read replica, or "" when none is configured.
func (c *Config) GetReplicaDSN() string {
	if c.PostgreSQLReplicaHost == "" {
		return ""
	}
	return "host=" + c.PostgreSQLReplicaHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

// SlotTimeList returns the configured ping slot times ("15:04:05"), one per slot index.
func (c *Config) SlotTimeList() []string {
	parts := strings.Split(c.SlotTimes, ",")
	times := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			times = append(times, t)
		}
	}
	return times
}

// AdminIdentities returns the parsed researcher allow-list.
func (c *Config) AdminIdentities() []string {
	if c.AdminAllowList == "" {
		return nil
	}
	parts := strings.Split(c.AdminAllowList, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if id := strings.TrimSpace(p); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
