package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	AWS      AWSConfig
	DynamoDB DynamoDBConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Contest  ContestConfig
	Scraper  ScraperConfig
}

type ServerConfig struct {
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
}

type StoreConfig struct {
	// Backend selects the snapshot persistence implementation: "file" or
	// "dynamo".
	Backend      string
	DataDir      string
	SnapshotFile string
	ArchiveDir   string
}

type AWSConfig struct {
	Region   string
	Endpoint string
}

type DynamoDBConfig struct {
	TableName        string
	MaxRetries       int
	UseLocalEndpoint bool
}

type RedisConfig struct {
	Enabled    bool
	Address    string
	Password   string
	TTLSeconds int
}

type NATSConfig struct {
	Enabled              bool
	URL                  string
	MaxReconnect         int
	ReconnectWaitSeconds int
	TimeoutSeconds       int
}

type ContestConfig struct {
	// StartDate is the calendar anchor ("2006-01-02") the daily contest
	// offset is computed from.
	StartDate string
	Timezone  string
	// RunAt is the local wall-clock time ("15:04") the daily aggregation
	// fires at.
	RunAt      string
	Problems   []string
	ContestIDs []int
	// Rows whose participant id does not carry this prefix and length are
	// not ours and get dropped during scraping.
	UserIDPrefix string
	UserIDLength int
}

type ScraperConfig struct {
	BaseURL        string
	TimeoutSeconds int
	UserAgent      string
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	if configPath != "" {
		viper.AddConfigPath(configPath)
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("OJRANK")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.logLevel", "info")
	viper.SetDefault("server.logFormat", "json")

	viper.SetDefault("store.backend", "file")
	viper.SetDefault("store.dataDir", "data")
	viper.SetDefault("store.snapshotFile", "leaderboard.json")
	viper.SetDefault("store.archiveDir", "archive")

	viper.SetDefault("redis.ttlSeconds", 300)

	viper.SetDefault("nats.maxReconnect", 5)
	viper.SetDefault("nats.reconnectWaitSeconds", 2)
	viper.SetDefault("nats.timeoutSeconds", 5)

	viper.SetDefault("contest.timezone", "Asia/Shanghai")
	viper.SetDefault("contest.runAt", "22:30")
	viper.SetDefault("contest.problems", []string{"A", "B", "C"})
	viper.SetDefault("contest.userIdPrefix", "2510")
	viper.SetDefault("contest.userIdLength", 10)

	viper.SetDefault("scraper.timeoutSeconds", 10)
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "file", "dynamo":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Store.Backend == "dynamo" && c.DynamoDB.TableName == "" {
		return fmt.Errorf("dynamodb.tableName is required for the dynamo backend")
	}

	if c.Contest.StartDate == "" {
		return fmt.Errorf("contest.startDate is required")
	}
	if len(c.Contest.ContestIDs) == 0 {
		return fmt.Errorf("contest.contestIds must not be empty")
	}
	if len(c.Contest.Problems) == 0 {
		return fmt.Errorf("contest.problems must not be empty")
	}
	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper.baseUrl is required")
	}

	return nil
}
