package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Backends soportados para el store de env requests.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
)

// Config agrupa toda la configuración del servicio.
// Se carga desde env vars; los defaults sirven para correr en local sin nada seteado.
type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	AppName   string `envconfig:"APP_NAME" default:"env-access-broker"`

	// URL pública de este servicio; se usa para armar el access_url que recibe el caller.
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`

	// Notebook (downstream). La dirección real nunca se devuelve antes del redirect.
	NotebookBaseURL       string        `envconfig:"NOTEBOOK_BASE_URL" default:"http://localhost:8888"`
	NotebookRelPath       string        `envconfig:"NOTEBOOK_REL_PATH" default:"notebooks/starter.ipynb"`
	NotebookHealthPath    string        `envconfig:"NOTEBOOK_HEALTH_PATH" default:"/lab"`
	NotebookHealthTimeout time.Duration `envconfig:"NOTEBOOK_HEALTH_TIMEOUT" default:"5s"`

	AccessMode        string `envconfig:"ACCESS_MODE" default:"jupyter"`
	DefaultTTLMinutes int    `envconfig:"DEFAULT_TTL_MINUTES" default:"60"`
	MaxTTLMinutes     int    `envconfig:"MAX_TTL_MINUTES" default:"1440"`

	// Vacío => sin sweeper en background (solo expiración lazy).
	SweepSchedule string `envconfig:"SWEEP_SCHEDULE" default:"@every 1m"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"memory"`
	DBDSN        string `envconfig:"DB_DSN"`

	DynamoDBTable       string `envconfig:"DYNAMODB_TABLE" default:"env_requests"`
	AWSRegion           string `envconfig:"AWS_REGION" default:"us-east-1"`
	DynamoDBEndpointURL string `envconfig:"DYNAMODB_ENDPOINT_URL"`
	AWSAccessKeyID      string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey  string `envconfig:"AWS_SECRET_ACCESS_KEY"`
}

// Load lee la config desde el entorno y la valida.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) normalize() {
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")
	c.NotebookBaseURL = strings.TrimRight(strings.TrimSpace(c.NotebookBaseURL), "/")
	c.NotebookRelPath = strings.Trim(strings.TrimSpace(c.NotebookRelPath), "/")
	c.AccessMode = strings.TrimSpace(c.AccessMode)
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.SweepSchedule = strings.TrimSpace(c.SweepSchedule)
}

// Validate revisa que la config sea consistente.
func (c Config) Validate() error {
	if err := validateBaseURL("PUBLIC_BASE_URL", c.PublicBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("NOTEBOOK_BASE_URL", c.NotebookBaseURL); err != nil {
		return err
	}
	if c.AccessMode == "" {
		return errors.New("ACCESS_MODE is required")
	}
	if c.NotebookHealthTimeout <= 0 {
		return errors.New("NOTEBOOK_HEALTH_TIMEOUT must be > 0")
	}
	if c.DefaultTTLMinutes <= 0 || c.MaxTTLMinutes <= 0 {
		return errors.New("DEFAULT_TTL_MINUTES and MAX_TTL_MINUTES must be > 0")
	}
	if c.DefaultTTLMinutes > c.MaxTTLMinutes {
		return fmt.Errorf("DEFAULT_TTL_MINUTES (%d) exceeds MAX_TTL_MINUTES (%d)", c.DefaultTTLMinutes, c.MaxTTLMinutes)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be > 0")
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return errors.New("DB_DSN is required when STORE_BACKEND=postgres")
		}
	case BackendDynamoDB:
		if strings.TrimSpace(c.DynamoDBTable) == "" {
			return errors.New("DYNAMODB_TABLE is required when STORE_BACKEND=dynamodb")
		}
		// Sin endpoint local hacen falta credenciales reales.
		if c.DynamoDBEndpointURL == "" && (c.AWSAccessKeyID == "" || c.AWSSecretAccessKey == "") {
			return errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required when STORE_BACKEND=dynamodb")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

// Addr devuelve la dirección de escucha del server HTTP.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func validateBaseURL(name, raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: scheme must be http or https", name)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: host required", name)
	}
	return nil
}
