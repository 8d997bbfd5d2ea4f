package config

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	TopicOrders  = "orders"
	TopicRatings = "ratings"
)

type Config struct {
	Env            string
	Port           string
	DatabaseURL    string
	DBHost         string
	DBPort         string
	DBName         string
	DBUser         string
	DBPassword     string
	RedisAddr      string
	KafkaBroker    string
	MaxRequestSize int64
	UploadDir      string
	PublicBaseURL  string
	LogLevel       string
	TrustProxy     bool
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "3000")
	v.SetDefault("NODE_ENV", EnvDevelopment)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "restaurant")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("MAX_REQUEST_SIZE", "50mb")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TRUST_PROXY", false)

	env := v.GetString("APP_ENV")
	if env == "" {
		env = v.GetString("NODE_ENV")
	}

	maxSize, err := ParseSize(v.GetString("MAX_REQUEST_SIZE"))
	if err != nil {
		return Config{}, fmt.Errorf("MAX_REQUEST_SIZE: %w", err)
	}

	return Config{
		Env:            env,
		Port:           v.GetString("PORT"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBName:         v.GetString("DB_NAME"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		RedisAddr:      v.GetString("REDIS_HOST") + ":" + v.GetString("REDIS_PORT"),
		KafkaBroker:    v.GetString("KAFKA_BROKER"),
		MaxRequestSize: maxSize,
		UploadDir:      v.GetString("UPLOAD_DIR"),
		PublicBaseURL:  strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		TrustProxy:     v.GetBool("TRUST_PROXY"),
	}, nil
}

// ParseSize understands plain byte counts and kb/mb/gb suffixes ("50mb").
func ParseSize(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	multiplier := int64(1)
	for _, unit := range []struct {
		suffix string
		mult   int64
	}{
		{"gb", 1 << 30},
		{"mb", 1 << 20},
		{"kb", 1 << 10},
		{"b", 1},
	} {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.mult
			s = strings.TrimSpace(strings.TrimSuffix(s, unit.suffix))
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("size must be positive, got %d", n)
	}
	return n * multiplier, nil
}

func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"
}

func MustInitPostgres(cfg Config) *sql.DB {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis(cfg Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func NewKafkaReader(cfg Config, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		Topic:   topic,
		GroupID: groupID,
	})
}

// NewKafkaWriter returns nil when no broker is configured; publishing is then disabled.
func NewKafkaWriter(cfg Config, topic string) *kafka.Writer {
	if cfg.KafkaBroker == "" {
		return nil
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBroker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}
