package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Session   SessionConfig   `mapstructure:"session"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
}

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Host        string `mapstructure:"host"`
	AllowOrigin string `mapstructure:"alloworigin"`
}

// StoreConfig selects the document store backend. "postgres" uses
// Postgres + Redis (+ Mongo, Kafka when enabled); "memory" is the local
// fallback that keeps every document in process.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type PostgresConfig struct {
	Port     string `mapstructure:"port"`
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MongoConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type KafkaConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Brokers     []string `mapstructure:"brokers"`
	Topic       string   `mapstructure:"topic"`
	RetryTopic  string   `mapstructure:"retrytopic"`
	DLQTopic    string   `mapstructure:"dlqtopic"`
	UserTopic   string   `mapstructure:"usertopic"`
	MaxRetries  int      `mapstructure:"maxretries"`
	ServiceName string   `mapstructure:"servicename"`
}

type SessionConfig struct {
	SweepInterval      time.Duration `mapstructure:"sweepinterval"`
	AutoStopTolerance  time.Duration `mapstructure:"autostoptolerance"`
	TimerStateTTL      time.Duration `mapstructure:"timerstatettl"`
	DefaultFocusMinute int           `mapstructure:"defaultfocusminute"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requestsperminute"`
	Burst             int `mapstructure:"burst"`
}

func Read() Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/")

	setDefaults()

	// ENV overrides with prefix CIRCLE_ and dot-to-underscore replacement
	viper.SetEnvPrefix("CIRCLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		zap.L().Warn("Failed to read configuration file", zap.Error(err))
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		zap.L().Error("Configuration could not be parsed", zap.Error(err))
	}

	return config
}

func setDefaults() {
	viper.SetDefault("app.name", "circle-service")
	viper.SetDefault("app.version", "0.1.0")
	viper.SetDefault("app.env", "production")

	viper.SetDefault("server.port", "8083")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.alloworigin", "http://localhost:5173")

	viper.SetDefault("store.driver", "postgres")

	viper.SetDefault("postgres.port", "5432")
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.user", "myuser")
	viper.SetDefault("postgres.password", "mypassword")
	viper.SetDefault("postgres.db", "circledb")
	viper.SetDefault("postgres.sslmode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("mongo.enabled", false)
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "circle")

	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topic", "circle-events")
	viper.SetDefault("kafka.retrytopic", "circle-events-retry")
	viper.SetDefault("kafka.dlqtopic", "circle-events-dlq")
	viper.SetDefault("kafka.usertopic", "main-events")
	viper.SetDefault("kafka.maxretries", 3)
	viper.SetDefault("kafka.servicename", "circle-service")

	viper.SetDefault("session.sweepinterval", 15*time.Second)
	viper.SetDefault("session.autostoptolerance", 5*time.Second)
	viper.SetDefault("session.timerstatettl", 7*24*time.Hour)
	viper.SetDefault("session.defaultfocusminute", 25)

	viper.SetDefault("ratelimit.requestsperminute", 600)
	viper.SetDefault("ratelimit.burst", 60)
}
