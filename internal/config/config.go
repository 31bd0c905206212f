package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMS  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMS int    `yaml:"write_timeout_ms"`
	IdleTimeoutMS  int    `yaml:"idle_timeout_ms"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes"`
}

type Observability struct {
	LogLevel       string `yaml:"log_level"`       // "debug","info","warn","error"
	PrometheusPath string `yaml:"prometheus_path"` // e.g. "/metrics"
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Security struct {
	CSP string `yaml:"csp"` // empty means the built-in policy
}

type Limit struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

type Redis struct {
	Addr      string `yaml:"addr"` // empty: in-memory fallback
	DB        int    `yaml:"db"`
	TimeoutMS int    `yaml:"timeout_ms"`
	Password  string `yaml:"-"` // env only
}

type Root struct {
	Server        Server           `yaml:"server"`
	Observability Observability    `yaml:"observability"`
	CORS          CORS             `yaml:"cors"`
	Security      Security         `yaml:"security"`
	Limits        map[string]Limit `yaml:"limits"` // keyed by endpoint class
	Redis         Redis            `yaml:"redis"`

	// Secrets and deploy-specific values, environment only.
	Development         bool   `yaml:"-"`
	JWTSecret           string `yaml:"-"`
	StripeSecretKey     string `yaml:"-"`
	StripeWebhookSecret string `yaml:"-"`
	StripePremiumPrice  string `yaml:"-"`
	StripeProPrice      string `yaml:"-"`
	XTTSURL             string `yaml:"-"`
	XTTSAPIKey          string `yaml:"-"`
}

func (s Server) ReadTimeout() time.Duration {
	if s.ReadTimeoutMS == 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ReadTimeoutMS) * time.Millisecond
}

func (s Server) WriteTimeout() time.Duration {
	if s.WriteTimeoutMS == 0 {
		return 10 * time.Second
	}
	return time.Duration(s.WriteTimeoutMS) * time.Millisecond
}

func (s Server) IdleTimeout() time.Duration {
	if s.IdleTimeoutMS == 0 {
		return 60 * time.Second
	}
	return time.Duration(s.IdleTimeoutMS) * time.Millisecond
}

func (s Server) MaxBody() int64 {
	if s.MaxBodyBytes == 0 {
		return 1 << 20
	}
	return s.MaxBodyBytes
} // default 1MB

func (r Redis) Timeout() time.Duration {
	if r.TimeoutMS == 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// Load reads the yaml file (a missing file just means defaults) and
// overlays environment values, optionally from a .env file.
func Load(path string) (*Root, error) {
	_ = godotenv.Load()

	var cfg Root
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	if cfg.Observability.PrometheusPath == "" {
		cfg.Observability.PrometheusPath = "/metrics"
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}

	cfg.Development = os.Getenv("APP_ENV") == "development"
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.StripeWebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	cfg.StripePremiumPrice = os.Getenv("STRIPE_PREMIUM_PRICE_ID")
	cfg.StripeProPrice = os.Getenv("STRIPE_PRO_PRICE_ID")
	cfg.XTTSURL = os.Getenv("XTTS_API_URL")
	if cfg.XTTSURL == "" {
		cfg.XTTSURL = "http://localhost:8000"
	}
	cfg.XTTSAPIKey = os.Getenv("XTTS_API_KEY")

	return &cfg, nil
}
