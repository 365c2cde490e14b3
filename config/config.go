package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
)

const (
	ModeSynthetic = "synthetic"
	ModeLive      = "live"

	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Source     SourceConfig
	Synthetic  SyntheticConfig
	ClickHouse ClickHouseConfig
	Scoring    ScoringConfig
	Report     ReportConfig
	Actions    ActionsConfig
	Postgres   PostgresConfig
	Kafka      KafkaConfig
}

type ServerConfig struct {
	AppEnv   string
	GRPCPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type SourceConfig struct {
	Mode string // synthetic | live
}

type SyntheticConfig struct {
	Seed            int64
	Customers       int
	DeclineBias     float64
	NewCustomerRate float64
}

type ClickHouseConfig struct {
	URL          string
	User         string
	Password     string
	Database     string
	Table        string
	DialTimeout  int // seconds
	QueryTimeout int // seconds
}

type ScoringConfig struct {
	WeightAbsolute   float64
	WeightPercentage float64
	WeightStrategic  float64
}

type ReportConfig struct {
	Limit           int
	RefreshInterval int // seconds
}

type ActionsConfig struct {
	Store       string // memory | postgres
	ReviewWeeks int
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type KafkaConfig struct {
	Brokers      []string
	ActionsTopic string // empty disables action events
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			GRPCPort: getEnv("GRPC_PORT", ":8086"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Source: SourceConfig{
			Mode: strings.ToLower(getEnv("DATA_MODE", ModeSynthetic)),
		},
		Synthetic: SyntheticConfig{
			Seed:            getEnvInt64("SYNTHETIC_SEED", 42),
			Customers:       getEnvInt("SYNTHETIC_CUSTOMERS", 500),
			DeclineBias:     getEnvFloat("SYNTHETIC_DECLINE_BIAS", 0.03),
			NewCustomerRate: getEnvFloat("SYNTHETIC_NEW_CUSTOMER_RATE", 0.02),
		},
		ClickHouse: ClickHouseConfig{
			URL:          getEnv("CH_URL", ""),
			User:         getEnv("CH_USER", ""),
			Password:     getEnv("CH_PASS", ""),
			Database:     getEnv("CH_DATABASE", "default"),
			Table:        getEnv("CH_TABLE", "customer_weekly_sales"),
			DialTimeout:  getEnvInt("CH_DIAL_TIMEOUT", 5),
			QueryTimeout: getEnvInt("CH_QUERY_TIMEOUT", 30),
		},
		Scoring: ScoringConfig{
			WeightAbsolute:   getEnvFloat("SCORE_WEIGHT_ABS", 0.5),
			WeightPercentage: getEnvFloat("SCORE_WEIGHT_PCT", 0.3),
			WeightStrategic:  getEnvFloat("SCORE_WEIGHT_STRATEGIC", 0.2),
		},
		Report: ReportConfig{
			Limit:           getEnvInt("REPORT_LIMIT", 50),
			RefreshInterval: getEnvInt("REFRESH_INTERVAL", 30),
		},
		Actions: ActionsConfig{
			Store:       strings.ToLower(getEnv("ACTIONS_STORE", StoreMemory)),
			ReviewWeeks: getEnvInt("ACTION_REVIEW_WEEKS", 6),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5433"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_salesinsight"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Kafka: KafkaConfig{
			Brokers:      getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			ActionsTopic: getEnv("KAFKA_TOPIC_ACTIONS", ""),
		},
	}
}

// Validate reports every problem at once so a misconfigured deployment fails at
// startup rather than on its first query.
func (c *Config) Validate() error {
	var problems []string

	switch c.Source.Mode {
	case ModeSynthetic:
		if c.Synthetic.Customers <= 0 {
			problems = append(problems, "SYNTHETIC_CUSTOMERS must be positive")
		}
		if c.Synthetic.NewCustomerRate < 0 || c.Synthetic.NewCustomerRate >= 1 {
			problems = append(problems, "SYNTHETIC_NEW_CUSTOMER_RATE must be in [0, 1)")
		}
	case ModeLive:
		if c.ClickHouse.URL == "" {
			problems = append(problems, "CH_URL is required in live mode")
		}
		if c.ClickHouse.User == "" {
			problems = append(problems, "CH_USER is required in live mode")
		}
		if c.ClickHouse.Database == "" {
			problems = append(problems, "CH_DATABASE is required in live mode")
		}
		if c.ClickHouse.QueryTimeout <= 0 {
			problems = append(problems, "CH_QUERY_TIMEOUT must be positive")
		}
	default:
		problems = append(problems, fmt.Sprintf("DATA_MODE %q is not one of synthetic, live", c.Source.Mode))
	}

	w := c.Scoring
	if w.WeightAbsolute < 0 || w.WeightPercentage < 0 || w.WeightStrategic < 0 {
		problems = append(problems, "score weights must be non-negative")
	}
	if sum := w.WeightAbsolute + w.WeightPercentage + w.WeightStrategic; math.Abs(sum-1) > 1e-9 {
		problems = append(problems, fmt.Sprintf("score weights must sum to 1, got %.4f", sum))
	}

	if c.Report.Limit < 0 {
		problems = append(problems, "REPORT_LIMIT must not be negative")
	}

	switch c.Actions.Store {
	case StoreMemory:
	case StorePostgres:
		if c.Postgres.Host == "" || c.Postgres.DBName == "" {
			problems = append(problems, "POSTGRES_HOST and POSTGRES_DB are required for the postgres action store")
		}
	default:
		problems = append(problems, fmt.Sprintf("ACTIONS_STORE %q is not one of memory, postgres", c.Actions.Store))
	}
	if c.Actions.ReviewWeeks <= 0 {
		problems = append(problems, "ACTION_REVIEW_WEEKS must be positive")
	}

	if len(problems) > 0 {
		return &apperror.ConfigError{Problems: problems}
	}
	return nil
}

func (c ClickHouseConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(c.QueryTimeout) * time.Second
}

func (c ClickHouseConfig) DialTimeoutDuration() time.Duration {
	return time.Duration(c.DialTimeout) * time.Second
}

func (c ReportConfig) RefreshIntervalDuration() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
