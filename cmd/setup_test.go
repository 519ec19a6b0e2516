package cmd

import (
	"io"
	"strings"
	"testing"

	"tubemd/internal/config"
	apperrors "tubemd/internal/errors"
)

func TestRunSetupAppliesAnswers(t *testing.T) {
	c := &config.Config{}
	c.ApplyDefaults()

	in := strings.NewReader("/tmp/transcripts\nes\nsmall\ny\nlocal\n")
	if err := runSetup(in, io.Discard, c); err != nil {
		t.Fatalf("runSetup: %v", err)
	}

	if c.Output.Dir != "/tmp/transcripts" {
		t.Errorf("output dir = %q", c.Output.Dir)
	}
	if c.Transcription.DefaultLanguage != "es" {
		t.Errorf("language = %q", c.Transcription.DefaultLanguage)
	}
	if c.Transcription.WhisperModel != "small" {
		t.Errorf("whisper model = %q", c.Transcription.WhisperModel)
	}
	if !c.LLM.Enabled || c.LLM.ActiveProvider != config.ProviderLocal {
		t.Errorf("llm = %+v", c.LLM)
	}
}

func TestRunSetupEmptyAnswersKeepDefaults(t *testing.T) {
	c := &config.Config{}
	c.ApplyDefaults()
	c.Output.Dir = "/existing"

	// Blank lines accept every default; LLM stays disabled so no provider
	// prompt follows.
	in := strings.NewReader("\n\n\n\n")
	if err := runSetup(in, io.Discard, c); err != nil {
		t.Fatalf("runSetup: %v", err)
	}

	if c.Output.Dir != "/existing" {
		t.Errorf("output dir = %q, want default kept", c.Output.Dir)
	}
	if c.Transcription.DefaultLanguage != "en" || c.Transcription.WhisperModel != "base" {
		t.Errorf("transcription defaults changed: %+v", c.Transcription)
	}
	if c.LLM.Enabled {
		t.Error("llm must stay disabled on a blank answer")
	}
}

func TestRunSetupRejectsUnconfiguredProvider(t *testing.T) {
	c := &config.Config{}
	c.ApplyDefaults()

	in := strings.NewReader("\n\n\ny\nmystery\n")
	err := runSetup(in, io.Discard, c)
	if apperrors.CodeOf(err) != apperrors.CodeInvalidInput {
		t.Errorf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInvalidInput)
	}
}

func TestRunSetupRejectsBadYesNo(t *testing.T) {
	c := &config.Config{}
	c.ApplyDefaults()

	in := strings.NewReader("\n\n\nmaybe\n")
	err := runSetup(in, io.Discard, c)
	if apperrors.CodeOf(err) != apperrors.CodeInvalidInput {
		t.Errorf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInvalidInput)
	}
}
