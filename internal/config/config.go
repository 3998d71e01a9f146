// Package config provides configuration structures and validation for both
// binaries. Values come from an env file, environment variables and defaults.
package config

import (
	"errors"
	"strings"
	"time"
)

// Messaging backends
const (
	BackendKafka = "kafka"
	BackendAMQP  = "amqp"
)

// Config holds the complete application configuration. Each field is one
// subsystem and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Messaging   MessagingConfig
	Kafka       KafkaConfig
	AMQP        AMQPConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Reports     ReportsConfig
	Users       UsersConfig
	Maintenance MaintenanceConfig
	Backup      BackupConfig
	Categories  CategoriesConfig
	Bootstrap   BootstrapConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// MessagingConfig selects the broker carrying activity events
type MessagingConfig struct {
	Backend string // kafka or amqp
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	ActivityTopic     string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string
}

// AMQPConfig contains RabbitMQ configuration
type AMQPConfig struct {
	URL        string
	Exchange   string
	Queue      string
	RoutingKey string
	Prefetch   int
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
	RunMigrations   bool
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// OutboxConfig contains outbox polling configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int
}

// ReportsConfig tunes how reports read the transaction store
type ReportsConfig struct {
	CursorBatchSize int32         // documents fetched per cursor round trip
	Timeout         time.Duration // upper bound on one report computation
}

// UsersConfig contains user account policy
type UsersConfig struct {
	TrialPeriod time.Duration
}

// MaintenanceConfig schedules housekeeping jobs
type MaintenanceConfig struct {
	CleanupSchedule string // cron spec; empty disables the job
	Timezone        string
}

// BackupConfig controls where database snapshots are copied
type BackupConfig struct {
	GCSBucket    string // empty keeps backups in the HTTP response only
	ObjectPrefix string
}

// CategoriesConfig points at an optional category catalogue
type CategoriesConfig struct {
	File string
}

// BootstrapConfig names the administrator seeded on an empty deployment
type BootstrapConfig struct {
	AdminUsername string // empty disables seeding
	AdminEmail    string
	AdminFullName string
}

// validate collects every violation so one startup run reports them all
func (c *Config) validate() error {
	var validationErrors []string

	// Server
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Messaging
	switch c.Messaging.Backend {
	case BackendKafka:
		if c.Kafka.Brokers == "" {
			validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
		}
		if c.Kafka.ActivityTopic == "" {
			validationErrors = append(validationErrors, "KAFKA_ACTIVITY_TOPIC is required")
		}
		if c.Kafka.ConsumerGroup == "" {
			validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
		}
		if c.Kafka.MinBytes <= 0 {
			validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
		}
		if c.Kafka.MaxBytes <= 0 {
			validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
		}
		if c.Kafka.MaxWait <= 0 {
			validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
		}
		if c.Kafka.DLQTopic == "" {
			validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
		}
	case BackendAMQP:
		if c.AMQP.URL == "" {
			validationErrors = append(validationErrors, "AMQP_URL is required")
		}
		if c.AMQP.Exchange == "" {
			validationErrors = append(validationErrors, "AMQP_EXCHANGE is required")
		}
		if c.AMQP.Queue == "" {
			validationErrors = append(validationErrors, "AMQP_QUEUE is required")
		}
		if c.AMQP.Prefetch <= 0 {
			validationErrors = append(validationErrors, "AMQP_PREFETCH must be greater than 0")
		}
	default:
		validationErrors = append(validationErrors, "MESSAGING_BACKEND must be kafka or amqp")
	}

	// PostgreSQL
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	if c.Postgres.RunMigrations && c.Postgres.MigrationsPath == "" {
		validationErrors = append(validationErrors, "POSTGRES_MIGRATIONS_PATH is required when POSTGRES_RUN_MIGRATIONS is set")
	}

	// MongoDB
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Outbox and workers
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Reports and users
	if c.Reports.CursorBatchSize <= 0 {
		validationErrors = append(validationErrors, "REPORTS_CURSOR_BATCH_SIZE must be greater than 0")
	}
	if c.Reports.Timeout <= 0 {
		validationErrors = append(validationErrors, "REPORTS_TIMEOUT must be greater than 0")
	}
	if c.Users.TrialPeriod <= 0 {
		validationErrors = append(validationErrors, "USERS_TRIAL_PERIOD must be greater than 0")
	}
	if c.Maintenance.CleanupSchedule != "" {
		if _, err := time.LoadLocation(c.Maintenance.Timezone); err != nil {
			validationErrors = append(validationErrors, "MAINTENANCE_TIMEZONE is not a valid IANA zone")
		}
	}

	if c.Bootstrap.AdminUsername != "" {
		if !strings.Contains(c.Bootstrap.AdminEmail, "@") {
			validationErrors = append(validationErrors, "BOOTSTRAP_ADMIN_EMAIL must be an email address")
		}
		if strings.TrimSpace(c.Bootstrap.AdminFullName) == "" {
			validationErrors = append(validationErrors, "BOOTSTRAP_ADMIN_FULL_NAME is required")
		}
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
