package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Supported language model providers.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config aggregates runtime configuration used across the service.
// It is loaded once at startup and never mutated afterwards.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Summary SummaryConfig `yaml:"summary"`
	LLM     LLMConfig     `yaml:"llm"`
	SMTP    SMTPConfig    `yaml:"smtp"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
	StaticDir      string        `yaml:"staticDir"`
	MaxBodyBytes   int64         `yaml:"maxBodyBytes"`
}

// SummaryConfig tunes the external summarization call.
type SummaryConfig struct {
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
}

// LLMConfig contains language model provider settings. An empty APIKey
// switches the summarizer to its local heuristic.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"apiKey"`
	BaseURL  string        `yaml:"baseUrl"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Enabled reports whether an API credential is present.
func (c LLMConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// SMTPConfig contains mail transport settings. Host, User and Password are
// required for the email endpoint; their absence is reported per request.
type SMTPConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Secure   bool          `yaml:"secure"`
	StartTLS bool          `yaml:"startTls"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	Timeout  time.Duration `yaml:"timeout"`
}

// envOverrides lists every variable that may override file based settings.
// Pointer fields stay nil when the variable is unset.
type envOverrides struct {
	Port           *string        `envconfig:"PORT"`
	HTTPAddress    *string        `envconfig:"HTTP_ADDRESS"`
	AllowedOrigins []string       `envconfig:"ALLOWED_ORIGINS"`
	StaticDir      *string        `envconfig:"STATIC_DIR"`
	MaxBodyBytes   *int64         `envconfig:"MAX_BODY_BYTES"`
	LLMProvider    *string        `envconfig:"LLM_PROVIDER"`
	LLMAPIKey      *string        `envconfig:"LLM_API_KEY"`
	GroqAPIKey     *string        `envconfig:"GROQ_API_KEY"`
	OpenAIAPIKey   *string        `envconfig:"OPENAI_API_KEY"`
	GeminiAPIKey   *string        `envconfig:"GEMINI_API_KEY"`
	LLMModel       *string        `envconfig:"LLM_MODEL"`
	GroqModel      *string        `envconfig:"GROQ_MODEL"`
	LLMBaseURL     *string        `envconfig:"LLM_BASE_URL"`
	LLMTimeout     *time.Duration `envconfig:"LLM_TIMEOUT"`
	LLMTemperature *float32       `envconfig:"LLM_TEMPERATURE"`
	LLMMaxTokens   *int           `envconfig:"LLM_MAX_TOKENS"`
	SMTPHost       *string        `envconfig:"SMTP_HOST"`
	SMTPPort       *string        `envconfig:"SMTP_PORT"`
	SMTPSecure     *string        `envconfig:"SMTP_SECURE"`
	SMTPStartTLS   *string        `envconfig:"SMTP_STARTTLS"`
	SMTPUser       *string        `envconfig:"SMTP_USER"`
	SMTPPass       *string        `envconfig:"SMTP_PASS"`
	EmailFrom      *string        `envconfig:"EMAIL_FROM"`
	SMTPTimeout    *time.Duration `envconfig:"SMTP_TIMEOUT"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.resolveDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if env.Port != nil && *env.Port != "" {
		cfg.HTTP.Address = ":" + strings.TrimPrefix(*env.Port, ":")
	}
	setString(&cfg.HTTP.Address, env.HTTPAddress)
	if len(env.AllowedOrigins) > 0 {
		cfg.HTTP.AllowedOrigins = env.AllowedOrigins
	}
	setString(&cfg.HTTP.StaticDir, env.StaticDir)
	if env.MaxBodyBytes != nil {
		cfg.HTTP.MaxBodyBytes = *env.MaxBodyBytes
	}

	setString(&cfg.LLM.Provider, env.LLMProvider)
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	switch cfg.LLM.Provider {
	case ProviderGroq:
		setString(&cfg.LLM.APIKey, env.GroqAPIKey)
		setString(&cfg.LLM.Model, env.GroqModel)
	case ProviderOpenAI:
		setString(&cfg.LLM.APIKey, env.OpenAIAPIKey)
	case ProviderGemini:
		setString(&cfg.LLM.APIKey, env.GeminiAPIKey)
	}
	setString(&cfg.LLM.APIKey, env.LLMAPIKey)
	setString(&cfg.LLM.Model, env.LLMModel)
	setString(&cfg.LLM.BaseURL, env.LLMBaseURL)
	if env.LLMTimeout != nil {
		cfg.LLM.Timeout = *env.LLMTimeout
	}
	if env.LLMTemperature != nil {
		cfg.Summary.Temperature = *env.LLMTemperature
	}
	if env.LLMMaxTokens != nil {
		cfg.Summary.MaxTokens = *env.LLMMaxTokens
	}

	setString(&cfg.SMTP.Host, env.SMTPHost)
	if env.SMTPPort != nil {
		if port, err := strconv.Atoi(strings.TrimSpace(*env.SMTPPort)); err == nil {
			cfg.SMTP.Port = port
		}
	}
	if env.SMTPSecure != nil {
		cfg.SMTP.Secure = strings.EqualFold(strings.TrimSpace(*env.SMTPSecure), "true")
	}
	if env.SMTPStartTLS != nil {
		cfg.SMTP.StartTLS = !strings.EqualFold(strings.TrimSpace(*env.SMTPStartTLS), "false")
	}
	setString(&cfg.SMTP.User, env.SMTPUser)
	setString(&cfg.SMTP.Password, env.SMTPPass)
	setString(&cfg.SMTP.From, env.EmailFrom)
	if env.SMTPTimeout != nil {
		cfg.SMTP.Timeout = *env.SMTPTimeout
	}
	return nil
}

// setString overrides dst when the variable is set; blank values count as unset.
func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func (c *Config) resolveDefaults() {
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel(c.LLM.Provider)
	}
	if c.SMTP.From == "" {
		c.SMTP.From = c.SMTP.User
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "llama-3.1-70b-versatile"
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":3000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 45 * time.Second,
			MaxBodyBytes: 2 << 20,
		},
		Summary: SummaryConfig{
			Temperature: 0.2,
			MaxTokens:   1200,
		},
		LLM: LLMConfig{
			Provider: ProviderGroq,
			Timeout:  30 * time.Second,
		},
		SMTP: SMTPConfig{
			Port:     587,
			StartTLS: true,
			Timeout:  30 * time.Second,
		},
	}
}

// Validate ensures the configuration is safe to use. Missing credentials are
// not errors: they disable the corresponding integration.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return errors.New("http.maxBodyBytes must be positive")
	}
	switch c.LLM.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be positive")
	}
	if c.Summary.MaxTokens <= 0 {
		return errors.New("summary.maxTokens must be positive")
	}
	if c.Summary.Temperature < 0 || c.Summary.Temperature > 2 {
		return errors.New("summary.temperature must be between 0 and 2")
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return errors.New("smtp.port must be between 1 and 65535")
	}
	if c.SMTP.Timeout <= 0 {
		return errors.New("smtp.timeout must be positive")
	}
	return nil
}

// LogSummary reports which integrations are active without leaking secrets.
func (c *Config) LogSummary(logger *slog.Logger) {
	if c.LLM.Enabled() {
		logger.Info("language model configured", "provider", c.LLM.Provider, "model", c.LLM.Model)
	} else {
		logger.Info("language model not configured, using heuristic fallback")
	}
	if missing := c.SMTP.MissingSettings(); len(missing) > 0 {
		logger.Warn("smtp not configured, email endpoint disabled", "missing", missing)
	} else {
		logger.Info("smtp configured", "host", c.SMTP.Host, "port", c.SMTP.Port, "secure", c.SMTP.Secure)
	}
}

// MissingSettings names the environment variables that must be set before
// email can be sent. EMAIL_FROM is listed when the sender, which falls back to
// SMTP_USER, is not a valid mailbox.
func (c SMTPConfig) MissingSettings() []string {
	var missing []string
	if strings.TrimSpace(c.Host) == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if strings.TrimSpace(c.User) == "" {
		missing = append(missing, "SMTP_USER")
	}
	if c.Password == "" {
		missing = append(missing, "SMTP_PASS")
	}
	if from := strings.TrimSpace(c.From); from != "" {
		if _, err := mail.ParseAddress(from); err != nil {
			missing = append(missing, "EMAIL_FROM")
		}
	}
	return missing
}
