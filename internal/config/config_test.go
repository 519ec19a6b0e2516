package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Output.ParagraphLength != 4 {
		t.Errorf("paragraph length default = %d, want 4", cfg.Output.ParagraphLength)
	}
	if cfg.Transcription.DefaultLanguage != "en" {
		t.Errorf("default language = %q, want en", cfg.Transcription.DefaultLanguage)
	}
	if cfg.Transcription.WhisperModel != "base" {
		t.Errorf("whisper model = %q, want base", cfg.Transcription.WhisperModel)
	}
	if cfg.Transcription.CacheDir == "" {
		t.Error("cache dir should get a default")
	}
}

func TestValidate_RejectsBadWhisperModel(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Transcription.WhisperModel = "gigantic"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown whisper model")
	}
}

func TestValidate_RejectsUnconfiguredActiveProvider(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.LLM.ActiveProvider = "myrouter"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unconfigured custom active provider")
	}
	cfg.SetProvider("myrouter", ProviderConfig{Endpoint: "https://llm.example.com/v1", Model: "m"})
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestProvider_BuiltinDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	tests := []struct {
		name     string
		endpoint string
	}{
		{ProviderLocal, DefaultLocalEndpoint},
		{ProviderOpenAI, DefaultOpenAIEndpoint},
		{ProviderAnthropic, DefaultAnthropicEndpoint},
	}
	for _, tt := range tests {
		pc, err := cfg.Provider(tt.name)
		if err != nil {
			t.Fatalf("Provider(%s) error: %v", tt.name, err)
		}
		if pc.Endpoint != tt.endpoint {
			t.Errorf("Provider(%s).Endpoint = %q, want %q", tt.name, pc.Endpoint, tt.endpoint)
		}
		if pc.Model == "" {
			t.Errorf("Provider(%s) should default a model", tt.name)
		}
	}
}

func TestProvider_ConfiguredOverridesDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.SetProvider(ProviderLocal, ProviderConfig{Model: "mistral-nemo:12b"})

	pc, err := cfg.Provider(ProviderLocal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.Model != "mistral-nemo:12b" {
		t.Errorf("model = %q, want configured override", pc.Model)
	}
	if pc.Endpoint != DefaultLocalEndpoint {
		t.Errorf("endpoint = %q, want default fill", pc.Endpoint)
	}
}

func TestProvider_CustomRequiresEndpoint(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if _, err := cfg.Provider("myrouter"); err == nil {
		t.Error("expected error for unconfigured custom provider")
	}
	cfg.SetProvider("myrouter", ProviderConfig{Model: "m"})
	if _, err := cfg.Provider("myrouter"); err == nil {
		t.Error("expected error for custom provider without endpoint")
	}
}

func TestRemoveProvider_ClearsActive(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.SetProvider("myrouter", ProviderConfig{Endpoint: "https://llm.example.com/v1"})
	cfg.LLM.ActiveProvider = "myrouter"

	if err := cfg.RemoveProvider("myrouter"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.ActiveProvider != "" {
		t.Errorf("active provider = %q, want cleared", cfg.LLM.ActiveProvider)
	}
	if err := cfg.RemoveProvider("myrouter"); err == nil {
		t.Error("expected error removing absent provider")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Output.ParagraphLength = 6
	cfg.LLM.Enabled = true
	cfg.SetProvider(ProviderOpenAI, ProviderConfig{Model: "gpt-4o-mini"})
	cfg.LLM.ActiveProvider = ProviderOpenAI

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if loaded.Output.ParagraphLength != 6 {
		t.Errorf("paragraph length = %d, want 6", loaded.Output.ParagraphLength)
	}
	if !loaded.LLM.Enabled {
		t.Error("llm.enabled lost in round trip")
	}
	if loaded.LLM.Providers[ProviderOpenAI].Model != "gpt-4o-mini" {
		t.Errorf("provider model lost: %+v", loaded.LLM.Providers)
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.ParagraphLength != 4 {
		t.Errorf("expected defaults, got %+v", cfg.Output)
	}
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	os.Setenv("TUBEMD_OUTPUT_PARAGRAPH_LENGTH", "7")
	defer os.Unsetenv("TUBEMD_OUTPUT_PARAGRAPH_LENGTH")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.ParagraphLength != 7 {
		t.Errorf("paragraph length = %d, want env override 7", cfg.Output.ParagraphLength)
	}
}
