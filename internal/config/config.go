// Package config loads and persists application configuration. Settings live
// in a YAML file under the user config directory; environment variables (and
// an optional .env file) override file values. Secrets are never stored
// here; the keychain package owns those.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"tubemd/internal/logger"
)

// Default provider endpoints and models.
const (
	DefaultLocalEndpoint     = "http://localhost:11434"
	DefaultLocalModel        = "llama3.2:3b"
	DefaultOpenAIEndpoint    = "https://api.openai.com/v1"
	DefaultOpenAIModel       = "gpt-4o"
	DefaultAnthropicEndpoint = "https://api.anthropic.com/v1"
	DefaultAnthropicModel    = "claude-3-5-sonnet-20241022"
)

// ProviderConfig holds the endpoint/model pair for one LLM provider.
type ProviderConfig struct {
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`
	Model    string `yaml:"model" mapstructure:"model"`
}

// OutputConfig holds transcript output preferences.
type OutputConfig struct {
	// Dir is where markdown transcripts are written. Empty means the
	// current directory.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// Timestamps includes segment timestamps in the output.
	Timestamps bool `yaml:"timestamps" mapstructure:"timestamps"`
	// ParagraphLength is the number of sentences grouped per paragraph by
	// the standard formatter.
	ParagraphLength int `yaml:"paragraph_length" mapstructure:"paragraph_length" validate:"gte=1,lte=20"`
}

// TranscriptionConfig holds transcript acquisition preferences.
type TranscriptionConfig struct {
	// PreferCaptions tries the caption track before speech recognition.
	PreferCaptions bool `yaml:"prefer_captions" mapstructure:"prefer_captions"`
	// DefaultLanguage is the caption/recognition language code.
	DefaultLanguage string `yaml:"default_language" mapstructure:"default_language" validate:"required,min=2,max=8"`
	// WhisperModel is the recognition model size (tiny, base, small, medium, large).
	WhisperModel string `yaml:"whisper_model" mapstructure:"whisper_model" validate:"oneof=tiny base small medium large"`
	// WhisperThreads is the recognition thread count. 0 lets whisper decide.
	WhisperThreads int `yaml:"whisper_threads" mapstructure:"whisper_threads" validate:"gte=0,lte=64"`
	// CacheDir is where downloaded audio is cached. Empty means the user
	// cache directory.
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`
	// ModelDir is where whisper ggml model files live.
	ModelDir string `yaml:"model_dir" mapstructure:"model_dir"`
}

// LLMConfig holds the LLM formatting settings.
type LLMConfig struct {
	// Enabled turns LLM formatting on.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ActiveProvider names the provider used when no override is given.
	// Empty means local.
	ActiveProvider string `yaml:"active_provider" mapstructure:"active_provider"`
	// Providers maps provider names to endpoint/model pairs. Built-in names
	// (local, openai, anthropic) get sensible defaults when omitted; any
	// other name is a custom OpenAI-compatible provider.
	Providers map[string]ProviderConfig `yaml:"providers" mapstructure:"providers" validate:"dive"`
}

// Config is the application configuration.
type Config struct {
	Output        OutputConfig        `yaml:"output" mapstructure:"output"`
	Transcription TranscriptionConfig `yaml:"transcription" mapstructure:"transcription"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to unset fields.
func (c *Config) ApplyDefaults() {
	if c.Output.ParagraphLength == 0 {
		c.Output.ParagraphLength = 4
	}
	if c.Transcription.DefaultLanguage == "" {
		c.Transcription.DefaultLanguage = "en"
	}
	if c.Transcription.WhisperModel == "" {
		c.Transcription.WhisperModel = "base"
	}
	if c.Transcription.CacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			c.Transcription.CacheDir = filepath.Join(dir, "tubemd", "audio")
		} else {
			c.Transcription.CacheDir = filepath.Join(os.TempDir(), "tubemd", "audio")
		}
	}
	if c.Transcription.ModelDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			c.Transcription.ModelDir = filepath.Join(dir, "tubemd", "models")
		} else {
			c.Transcription.ModelDir = filepath.Join(os.TempDir(), "tubemd", "models")
		}
	}
	if c.LLM.Providers == nil {
		c.LLM.Providers = make(map[string]ProviderConfig)
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.LLM.ActiveProvider != "" && !IsBuiltinProvider(c.LLM.ActiveProvider) {
		if _, ok := c.LLM.Providers[c.LLM.ActiveProvider]; !ok {
			return fmt.Errorf("config: active provider %q is not configured", c.LLM.ActiveProvider)
		}
	}
	return nil
}

// Builtin provider names.
const (
	ProviderLocal     = "local"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// IsBuiltinProvider reports whether name is a built-in provider with default
// endpoint and model.
func IsBuiltinProvider(name string) bool {
	switch name {
	case ProviderLocal, ProviderOpenAI, ProviderAnthropic:
		return true
	}
	return false
}

// Provider resolves the endpoint/model pair for the named provider, filling
// built-in defaults for any blank field. Unknown non-builtin names return an
// error: custom providers must be configured explicitly.
func (c *Config) Provider(name string) (ProviderConfig, error) {
	pc := c.LLM.Providers[name]
	switch name {
	case ProviderLocal, "":
		if pc.Endpoint == "" {
			pc.Endpoint = DefaultLocalEndpoint
		}
		if pc.Model == "" {
			pc.Model = DefaultLocalModel
		}
	case ProviderOpenAI:
		if pc.Endpoint == "" {
			pc.Endpoint = DefaultOpenAIEndpoint
		}
		if pc.Model == "" {
			pc.Model = DefaultOpenAIModel
		}
	case ProviderAnthropic:
		if pc.Endpoint == "" {
			pc.Endpoint = DefaultAnthropicEndpoint
		}
		if pc.Model == "" {
			pc.Model = DefaultAnthropicModel
		}
	default:
		stored, ok := c.LLM.Providers[name]
		if !ok {
			return ProviderConfig{}, fmt.Errorf("config: provider %q is not configured", name)
		}
		if stored.Endpoint == "" {
			return ProviderConfig{}, fmt.Errorf("config: provider %q has no endpoint", name)
		}
		pc = stored
	}
	return pc, nil
}

// SetProvider stores an endpoint/model pair under name.
func (c *Config) SetProvider(name string, pc ProviderConfig) {
	if c.LLM.Providers == nil {
		c.LLM.Providers = make(map[string]ProviderConfig)
	}
	c.LLM.Providers[name] = pc
}

// RemoveProvider deletes the named provider; the active provider is cleared
// if it pointed at the removed entry.
func (c *Config) RemoveProvider(name string) error {
	if _, ok := c.LLM.Providers[name]; !ok && !IsBuiltinProvider(name) {
		return fmt.Errorf("config: provider %q is not configured", name)
	}
	delete(c.LLM.Providers, name)
	if c.LLM.ActiveProvider == name {
		c.LLM.ActiveProvider = ""
	}
	return nil
}
