package cmd

import (
	"testing"

	"tubemd/internal/config"
	apperrors "tubemd/internal/errors"
)

func TestSetConfigKey(t *testing.T) {
	c := &config.Config{}
	c.ApplyDefaults()

	tests := []struct {
		key   string
		value string
		check func() bool
	}{
		{"output.dir", "/tmp/out", func() bool { return c.Output.Dir == "/tmp/out" }},
		{"output.paragraph_length", "6", func() bool { return c.Output.ParagraphLength == 6 }},
		{"transcription.prefer_captions", "false", func() bool { return !c.Transcription.PreferCaptions }},
		{"transcription.whisper_model", "small", func() bool { return c.Transcription.WhisperModel == "small" }},
		{"llm.enabled", "true", func() bool { return c.LLM.Enabled }},
		{"llm.active_provider", "openai", func() bool { return c.LLM.ActiveProvider == "openai" }},
		{"logging.format", "json", func() bool { return c.Logging.Format == "json" }},
		{"logging.no_color", "true", func() bool { return c.Logging.NoColor }},
	}
	for _, tt := range tests {
		if err := setConfigKey(c, tt.key, tt.value); err != nil {
			t.Errorf("setConfigKey(%q, %q): %v", tt.key, tt.value, err)
			continue
		}
		if !tt.check() {
			t.Errorf("setConfigKey(%q, %q) did not apply", tt.key, tt.value)
		}
	}
}

func TestSetConfigKeyRejectsBadInput(t *testing.T) {
	c := &config.Config{}
	c.ApplyDefaults()

	if err := setConfigKey(c, "no.such.key", "x"); apperrors.CodeOf(err) != apperrors.CodeInvalidInput {
		t.Errorf("unknown key: code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInvalidInput)
	}
	if err := setConfigKey(c, "llm.enabled", "maybe"); apperrors.CodeOf(err) != apperrors.CodeInvalidInput {
		t.Errorf("bad bool: code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInvalidInput)
	}
	if err := setConfigKey(c, "output.paragraph_length", "many"); apperrors.CodeOf(err) != apperrors.CodeInvalidInput {
		t.Errorf("bad int: code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInvalidInput)
	}
}
