package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultRetention   = 0.75
	defaultRefundCap   = 50.0
	defaultTemperature = 0.3
)

// Config es la configuración completa de betagent.
type Config struct {
	Calculator CalculatorConfig `yaml:"calculator"`
	Advisory   AdvisoryConfig   `yaml:"advisory"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// CalculatorConfig controla los valores por defecto del modo batch.
// El motor de cálculo en sí no lee configuración.
type CalculatorConfig struct {
	DefaultRetention float64 `yaml:"default_retention"`  // fracción del bonus convertible a cash (sin definir = 0.75)
	DefaultRefundCap float64 `yaml:"default_refund_cap"` // tope de reembolso (sin definir = 50)
	Workers          int     `yaml:"workers"`            // 0 = runtime.NumCPU()
}

// AdvisoryConfig configura el generador de texto opcional.
// Sin base_url o sin model el advisor queda deshabilitado.
type AdvisoryConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	APIKey         string  `yaml:"-"` // solo desde ADVISORY_API_KEY
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
}

// ExchangeConfig configura la lectura de saldo en Polymarket (solo diagnóstico).
// Los secretos nunca se leen del YAML.
type ExchangeConfig struct {
	CLOBBase       string `yaml:"clob_base"`
	Address        string `yaml:"address"`        // funder address si no hay private key
	SignatureType  int    `yaml:"signature_type"` // 0 EOA, 1 email/magic, 2 browser proxy
	TimeoutSeconds int    `yaml:"timeout_seconds"`

	PrivateKey string `yaml:"-"` // CLOB_PRIVATE_KEY
	APIKey     string `yaml:"-"` // CLOB_API_KEY
	Secret     string `yaml:"-"` // CLOB_SECRET
	Passphrase string `yaml:"-"` // CLOB_PASSPHRASE
}

// ServerConfig controla el servidor HTTP.
type ServerConfig struct {
	Addr                  string   `yaml:"addr"`
	AllowedOrigins        []string `yaml:"allowed_origins"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
}

// StorageConfig controla dónde se registran las pruebas de saldo.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Un YAML inexistente no es error: la calculadora funciona solo con defaults.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	cfg := newConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// newConfig devuelve los defaults para los que 0 es un valor válido.
// Se aplican antes de leer el YAML para que un 0 explícito no se sobreescriba.
func newConfig() Config {
	var cfg Config
	cfg.Calculator.DefaultRetention = defaultRetention
	cfg.Calculator.DefaultRefundCap = defaultRefundCap
	cfg.Advisory.Temperature = defaultTemperature
	return cfg
}

// AdvisoryEnabled indica si hay suficiente configuración para el advisor.
func (c *Config) AdvisoryEnabled() bool {
	return c.Advisory.BaseURL != "" && c.Advisory.Model != ""
}

// AdvisoryTimeout devuelve el timeout del advisor como time.Duration.
func (c *Config) AdvisoryTimeout() time.Duration {
	return time.Duration(c.Advisory.TimeoutSeconds) * time.Second
}

// ExchangeEnabled indica si hay credenciales para leer el saldo:
// private key, o address + las tres credenciales L2.
func (c *Config) ExchangeEnabled() bool {
	e := c.Exchange
	if e.PrivateKey != "" {
		return true
	}
	return e.Address != "" && e.APIKey != "" && e.Secret != "" && e.Passphrase != ""
}

// ExchangeTimeout devuelve el timeout de la prueba de saldo.
func (c *Config) ExchangeTimeout() time.Duration {
	return time.Duration(c.Exchange.TimeoutSeconds) * time.Second
}

// RequestTimeout devuelve el timeout por petición HTTP.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BETAGENT_DB"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("BETAGENT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ADVISORY_BASE_URL"); v != "" {
		cfg.Advisory.BaseURL = v
	}
	if v := os.Getenv("ADVISORY_MODEL"); v != "" {
		cfg.Advisory.Model = v
	}
	if v := os.Getenv("ADVISORY_API_KEY"); v != "" {
		cfg.Advisory.APIKey = v
	}
	if v := os.Getenv("CLOB_ADDRESS"); v != "" {
		cfg.Exchange.Address = v
	}
	if v := os.Getenv("CLOB_SIGNATURE_TYPE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Exchange.SignatureType = n
		}
	}
	if v := os.Getenv("CLOB_PRIVATE_KEY"); v != "" {
		cfg.Exchange.PrivateKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("CLOB_API_KEY"); v != "" {
		cfg.Exchange.APIKey = v
	}
	if v := os.Getenv("CLOB_SECRET"); v != "" {
		cfg.Exchange.Secret = v
	}
	if v := os.Getenv("CLOB_PASSPHRASE"); v != "" {
		cfg.Exchange.Passphrase = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	// Negativos no tienen sentido; 0 sí (ver newConfig)
	if cfg.Calculator.DefaultRetention < 0 {
		cfg.Calculator.DefaultRetention = defaultRetention
	}
	if cfg.Calculator.DefaultRefundCap < 0 {
		cfg.Calculator.DefaultRefundCap = defaultRefundCap
	}
	if cfg.Advisory.TimeoutSeconds <= 0 {
		cfg.Advisory.TimeoutSeconds = 15
	}
	if cfg.Advisory.MaxTokens <= 0 {
		cfg.Advisory.MaxTokens = 200
	}
	if cfg.Advisory.Temperature < 0 {
		cfg.Advisory.Temperature = defaultTemperature
	}
	if cfg.Exchange.CLOBBase == "" {
		cfg.Exchange.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.Exchange.TimeoutSeconds <= 0 {
		cfg.Exchange.TimeoutSeconds = 10
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8084"
	}
	if cfg.Server.RequestTimeoutSeconds <= 0 {
		cfg.Server.RequestTimeoutSeconds = 30
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "betagent.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
