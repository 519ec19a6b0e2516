// Package stt performs speech recognition on prepared audio using the
// whisper.cpp command-line tool.
package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "tubemd/internal/errors"
	"tubemd/internal/logger"
	"tubemd/internal/process"
)

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to a 16 kHz mono WAV file.
	AudioPath string
	// Language is the expected language of the audio (e.g. "en").
	Language string
	// Threads overrides the worker thread count. Zero lets whisper decide.
	Threads int
}

// Response holds the result of a transcription call.
type Response struct {
	// Text is the full transcription text.
	Text string
	// Segments contains time-aligned transcript segments.
	Segments []Segment
	// Language is the language the model transcribed in.
	Language string
}

// Segment represents a time-aligned portion of a transcript.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64
	// End is the segment end time in seconds.
	End float64
	// Text is the transcribed text for this segment.
	Text string
}

// Config holds configuration for the whisper engine.
type Config struct {
	// Binary is the whisper.cpp executable. Defaults to "whisper-cli".
	Binary string
	// ModelDir is where ggml model files live.
	ModelDir string
	// ModelSize selects the model variant (tiny, base, small, medium, large).
	ModelSize string
	// Timeout bounds a single transcription run.
	Timeout time.Duration
}

// Engine transcribes audio with whisper.cpp.
type Engine struct {
	cfg    Config
	runner process.Runner
	log    *logger.Logger
}

// NewEngine creates a whisper engine. A nil runner uses real subprocess
// execution.
func NewEngine(cfg Config, runner process.Runner) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = "whisper-cli"
	}
	if cfg.ModelSize == "" {
		cfg.ModelSize = "base"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Minute
	}
	if runner == nil {
		runner = process.DefaultRunner()
	}
	return &Engine{cfg: cfg, runner: runner, log: logger.WithComponent("stt")}
}

// whisperLanguages are the languages with dedicated support. Anything else
// falls back to English.
var whisperLanguages = map[string]bool{
	"en": true, "es": true, "fr": true, "de": true, "it": true, "pt": true,
	"ru": true, "ja": true, "zh": true, "ko": true, "ar": true, "hi": true,
}

// ResolveModel maps a language to a model file path and the language code
// whisper should use. English gets the English-only model variant, which is
// smaller and more accurate, except for large models which have no such
// variant.
func (e *Engine) ResolveModel(language string) (modelPath, lang string) {
	lang = language
	if lang == "" {
		lang = "en"
	}
	if !whisperLanguages[lang] {
		e.log.Warn("language not supported, falling back to English",
			logger.Fields("language", lang))
		lang = "en"
	}

	name := "ggml-" + e.cfg.ModelSize + ".bin"
	if lang == "en" && e.cfg.ModelSize != "large" {
		name = "ggml-" + e.cfg.ModelSize + ".en.bin"
	}
	return filepath.Join(e.cfg.ModelDir, name), lang
}

// Transcribe runs whisper.cpp on the audio file.
func (e *Engine) Transcribe(ctx context.Context, req Request) (*Response, error) {
	modelPath, lang := e.ResolveModel(req.Language)
	if _, err := os.Stat(modelPath); err != nil {
		return nil, apperrors.NotFound("whisper model", modelPath).
			WithDetail("download", "https://huggingface.co/ggerganov/whisper.cpp")
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	outPrefix := filepath.Join(os.TempDir(), "tubemd-stt-"+uuid.NewString())
	defer os.Remove(outPrefix + ".json") //nolint:errcheck // best-effort cleanup

	args := []string{
		"-m", modelPath,
		"-f", req.AudioPath,
		"-l", lang,
		"-oj",
		"-of", outPrefix,
		"-np",
	}
	if req.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(req.Threads))
	}

	e.log.Info("transcribing audio",
		logger.Fields("model", filepath.Base(modelPath), "language", lang))

	result, err := e.runner.Run(ctx, process.Command{
		Binary:      e.cfg.Binary,
		Args:        args,
		GracePeriod: 10 * time.Second,
	})
	if err != nil {
		return nil, apperrors.CollaboratorUnavailable("whisper", err).
			WithDetail("audio", req.AudioPath).
			WithDetail("stderr", tailStderr(result))
	}

	data, err := os.ReadFile(outPrefix + ".json") //nolint:gosec // path is generated above
	if err != nil {
		return nil, fmt.Errorf("stt: read whisper output: %w", err)
	}
	resp, err := parseOutput(data)
	if err != nil {
		return nil, err
	}
	resp.Language = lang

	e.log.Info("transcription complete",
		logger.Fields("segments", len(resp.Segments), "chars", len(resp.Text)))
	return resp, nil
}

// parseOutput decodes whisper.cpp's JSON output format.
func parseOutput(data []byte) (*Response, error) {
	var payload struct {
		Transcription []struct {
			Offsets struct {
				From int64 `json:"from"`
				To   int64 `json:"to"`
			} `json:"offsets"`
			Text string `json:"text"`
		} `json:"transcription"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("stt: parse whisper output: %w", err)
	}

	resp := &Response{Segments: make([]Segment, 0, len(payload.Transcription))}
	var b strings.Builder
	for _, seg := range payload.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		resp.Segments = append(resp.Segments, Segment{
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
			Text:  text,
		})
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
	resp.Text = b.String()
	return resp, nil
}

func tailStderr(r *process.Result) string {
	if r == nil {
		return ""
	}
	s := strings.TrimSpace(string(r.Stderr))
	if len(s) > 512 {
		s = s[len(s)-512:]
	}
	return s
}
