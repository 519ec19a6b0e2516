package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	apperrors "tubemd/internal/errors"
	"tubemd/internal/logger"
	"tubemd/internal/process"
)

// Converter prepares audio for speech recognition via ffmpeg.
type Converter struct {
	runner  process.Runner
	log     *logger.Logger
	timeout time.Duration
}

// NewConverter creates an audio converter. A nil runner uses real subprocess
// execution.
func NewConverter(runner process.Runner) *Converter {
	if runner == nil {
		runner = process.DefaultRunner()
	}
	return &Converter{
		runner:  runner,
		log:     logger.WithComponent("convert"),
		timeout: 10 * time.Minute,
	}
}

// ToWav converts an audio file to 16 kHz mono 16-bit PCM WAV, the input
// format whisper expects. The caller owns the returned file and should
// remove it when done.
func (c *Converter) ToWav(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", apperrors.NotFound("audio file", audioPath)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	wavPath := filepath.Join(os.TempDir(), fmt.Sprintf("tubemd-%s.wav", uuid.NewString()))

	result, err := c.runner.Run(ctx, process.Command{
		Binary: "ffmpeg",
		Args: []string{
			"-i", audioPath,
			"-ar", "16000",
			"-ac", "1",
			"-c:a", "pcm_s16le",
			"-y",
			wavPath,
		},
	})
	if err != nil {
		_ = os.Remove(wavPath)
		return "", apperrors.CollaboratorUnavailable("ffmpeg", err).
			WithDetail("input", audioPath).
			WithDetail("stderr", tailStderr(result))
	}

	c.log.Debug("audio converted", logger.Fields("input", audioPath, "output", wavPath))
	return wavPath, nil
}
