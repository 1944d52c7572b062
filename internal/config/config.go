package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	LLM struct {
		Provider       string        `yaml:"provider"`
		Model          string        `yaml:"model"`
		GeminiKey      string        `yaml:"gemini_key"`
		OpenAIKey      string        `yaml:"openai_key"`
		BaseURL        string        `yaml:"base_url"`
		Timeout        time.Duration `yaml:"timeout"`
		MaxAttempts    int           `yaml:"max_attempts"`
		InitialBackoff time.Duration `yaml:"initial_backoff"`
		MaxBackoff     time.Duration `yaml:"max_backoff"`
		Multiplier     float64       `yaml:"multiplier"`
	} `yaml:"llm"`
	Complaint struct {
		MaxChars int `yaml:"max_chars"`
	} `yaml:"complaint"`
	Taxonomy struct {
		Path string `yaml:"path"`
	} `yaml:"taxonomy"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Cache struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Security struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"security"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8090"
	cfg.LLM.Provider = "noop"
	cfg.LLM.Timeout = 30 * time.Second
	cfg.LLM.MaxAttempts = 3
	cfg.LLM.InitialBackoff = 500 * time.Millisecond
	cfg.LLM.MaxBackoff = 8 * time.Second
	cfg.LLM.Multiplier = 2.0
	cfg.Complaint.MaxChars = 2000
	cfg.Cache.TTL = time.Hour
	cfg.Log.Level = "info"
	return cfg
}

// Load reads an optional yaml file over the defaults and then applies
// CL_* environment overrides. Configuration is loaded once at startup;
// nothing reads the environment after this.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.HTTP.Addr, "CL_HTTP_ADDR")
	setString(&cfg.LLM.Provider, "CL_LLM_PROVIDER")
	setString(&cfg.LLM.Model, "CL_LLM_MODEL")
	setString(&cfg.LLM.GeminiKey, "CL_GEMINI_API_KEY")
	setString(&cfg.LLM.OpenAIKey, "CL_OPENAI_API_KEY")
	setString(&cfg.LLM.BaseURL, "CL_LLM_BASE_URL")
	setDuration(&cfg.LLM.Timeout, "CL_LLM_TIMEOUT")
	setInt(&cfg.LLM.MaxAttempts, "CL_LLM_MAX_ATTEMPTS")
	setDuration(&cfg.LLM.InitialBackoff, "CL_LLM_INITIAL_BACKOFF")
	setDuration(&cfg.LLM.MaxBackoff, "CL_LLM_MAX_BACKOFF")
	setFloat(&cfg.LLM.Multiplier, "CL_LLM_MULTIPLIER")
	setInt(&cfg.Complaint.MaxChars, "CL_MAX_COMPLAINT_CHARS")
	setString(&cfg.Taxonomy.Path, "CL_TAXONOMY_PATH")
	setString(&cfg.Redis.URL, "CL_REDIS_URL")
	setDuration(&cfg.Cache.TTL, "CL_CACHE_TTL")
	setString(&cfg.Security.APIKey, "CL_API_KEY")
	setString(&cfg.Log.Level, "CL_LOG_LEVEL")
}

func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "gemini", "openai", "noop":
	case "":
		return errors.New("llm provider is required")
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Provider == "gemini" && c.LLM.GeminiKey == "" {
		return errors.New("gemini provider requires an api key")
	}
	if c.LLM.Provider == "openai" && c.LLM.OpenAIKey == "" {
		return errors.New("openai provider requires an api key")
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm timeout must be positive")
	}
	if c.LLM.MaxAttempts <= 0 {
		return errors.New("llm max attempts must be positive")
	}
	if c.LLM.InitialBackoff <= 0 || c.LLM.MaxBackoff < c.LLM.InitialBackoff {
		return errors.New("llm backoff intervals are inconsistent")
	}
	if c.LLM.Multiplier < 1.0 {
		return errors.New("llm backoff multiplier must be >= 1.0")
	}
	if c.Complaint.MaxChars <= 0 {
		return errors.New("complaint max chars must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			*dst = d
		}
	}
}
