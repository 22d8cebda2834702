package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config captures the full runtime configuration for the API.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Auth     AuthConfig
	Download DownloadConfig
	Tools    ToolsConfig
	Tunnel   TunnelConfig
	Storage  StorageConfig
	Kafka    KafkaConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Name     string `env:"API_NAME" envDefault:"YT-API"`
	Creator  string `env:"CREATOR_NAME" envDefault:"Vaibhav"`
	LogLevel string `env:"APP_LOG_LEVEL" envDefault:"info"`
}

type HTTPConfig struct {
	Port        string        `env:"PORT" envDefault:"8080"`
	BaseURL     string        `env:"BASE_URL"`
	ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	// Downloads run as long as the upstream tools take; no write timeout.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

type AuthConfig struct {
	APIKey      string `env:"API_KEY"`
	APIKeyAlias string `env:"APIKEY"`
}

// Key returns the configured API key, honoring the legacy alias.
func (a AuthConfig) Key() string {
	if a.APIKey != "" {
		return a.APIKey
	}
	return a.APIKeyAlias
}

type DownloadConfig struct {
	Dir           string        `env:"DOWNLOAD_DIR" envDefault:"downloads"`
	TTL           time.Duration `env:"FILE_TTL" envDefault:"30s"`
	SettleDelay   time.Duration `env:"FILE_SETTLE_DELAY" envDefault:"1s"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"2m"`
	Serverless    bool          `env:"SERVERLESS" envDefault:"false"`
}

type ToolsConfig struct {
	YtDlpPath  string `env:"YTDLP_PATH" envDefault:"yt-dlp"`
	FFmpegPath string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	CookieFile string `env:"COOKIES_FILE" envDefault:"cookies.txt"`
}

type TunnelConfig struct {
	CobaltURL string `env:"COBALT_URL"`
}

// StorageConfig enables the optional object-store offload when Endpoint is
// set; downloads then carry presigned URLs instead of local routes.
type StorageConfig struct {
	Endpoint  string `env:"STORAGE_ENDPOINT"`
	Region    string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	Bucket    string `env:"STORAGE_BUCKET" envDefault:"ytapi-artifacts"`
	AccessKey string `env:"STORAGE_ACCESS_KEY"`
	SecretKey string `env:"STORAGE_SECRET_KEY"`
	UseSSL    bool   `env:"STORAGE_USE_SSL" envDefault:"false"`
}

func (s StorageConfig) Enabled() bool { return s.Endpoint != "" }

// KafkaConfig enables download-event emission when Brokers is set.
type KafkaConfig struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string        `env:"KAFKA_TOPIC" envDefault:"ytapi.downloads"`
	Retries      int           `env:"KAFKA_RETRIES" envDefault:"3"`
	BatchSize    int           `env:"KAFKA_BATCH_SIZE" envDefault:"100"`
	BatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"1s"`
	Compression  string        `env:"KAFKA_COMPRESSION_CODEC" envDefault:"snappy"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type TracingConfig struct {
	Endpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure     bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1.0"`
	ResourceAttr string  `env:"OTEL_RESOURCE_ATTRIBUTES" envDefault:"service.namespace=ytapi"`
}

// Load parses environment variables into Config. A local .env file is
// applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
