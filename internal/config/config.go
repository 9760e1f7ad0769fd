package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Service   ServiceConfig
	Postgres  PostgresConfig
	Gateway   GatewayConfig
	Responder ResponderConfig
	Engine    EngineConfig
}

type ServiceConfig struct {
	Name string `env:"SERVICE_NAME" env-default:"roomsync"`
	Port string `env:"SERVICE_PORT" env-default:"8080"`
	Env  string `env:"SERVICE_ENV" env-default:"development"`
}

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `env:"POSTGRES_PORT" env-default:"5432"`
	User     string `env:"POSTGRES_USER" env-default:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	Database string `env:"POSTGRES_DB" env-default:"roomsync"`
}

// GatewayConfig points at the push gateway fanning out room channels.
type GatewayConfig struct {
	URL       string        `env:"GATEWAY_URL" env-default:"ws://localhost:8080/channels"`
	JWTSecret string        `env:"GATEWAY_JWT_SECRET" env-default:""`
	Timeout   time.Duration `env:"GATEWAY_TIMEOUT" env-default:"10s"`
}

type ResponderConfig struct {
	WebhookURL string        `env:"RESPONDER_WEBHOOK_URL" env-default:"http://localhost:8080/responder"`
	Timeout    time.Duration `env:"RESPONDER_TIMEOUT" env-default:"30s"`
}

// EngineConfig tunes the per-room sync machinery.
type EngineConfig struct {
	DedupTTL      time.Duration `env:"ENGINE_DEDUP_TTL" env-default:"10s"`
	BackoffBase   time.Duration `env:"ENGINE_BACKOFF_BASE" env-default:"400ms"`
	BackoffCap    time.Duration `env:"ENGINE_BACKOFF_CAP" env-default:"5s"`
	MaxAttempts   int           `env:"ENGINE_MAX_ATTEMPTS" env-default:"6"`
	FallbackDelay time.Duration `env:"ENGINE_FALLBACK_DELAY" env-default:"30s"`
	WriteAttempts int           `env:"ENGINE_WRITE_ATTEMPTS" env-default:"3"`
	WriteBackoff  time.Duration `env:"ENGINE_WRITE_BACKOFF" env-default:"500ms"`
}

func MustLoad() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}
	return cfg
}
