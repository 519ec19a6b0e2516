// Package media acquires audio and caption tracks for a video and prepares
// audio for speech recognition.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "tubemd/internal/errors"
	"tubemd/internal/logger"
	"tubemd/internal/process"
	"tubemd/internal/video"
)

// CaptionClient fetches caption tracks via yt-dlp.
type CaptionClient struct {
	runner  process.Runner
	log     *logger.Logger
	timeout time.Duration
}

// NewCaptionClient creates a caption client. A nil runner uses real
// subprocess execution.
func NewCaptionClient(runner process.Runner) *CaptionClient {
	if runner == nil {
		runner = process.DefaultRunner()
	}
	return &CaptionClient{
		runner:  runner,
		log:     logger.WithComponent("captions"),
		timeout: 2 * time.Minute,
	}
}

// Available reports whether the video has any caption track in the given
// language, manual or auto-generated. Probe failures report false rather
// than erroring so callers can fall through to speech recognition.
func (c *CaptionClient) Available(ctx context.Context, videoID, language string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.runner.Run(ctx, process.Command{
		Binary: "yt-dlp",
		Args:   []string{"--list-subs", "--no-download", video.WatchURL(videoID)},
	})
	if err != nil {
		c.log.Debug("caption probe failed", logger.Fields("video_id", videoID, "error", err.Error()))
		return false
	}

	out := string(result.Stdout)
	if !strings.Contains(out, "Available subtitles") && !strings.Contains(out, "Available automatic captions") {
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && (fields[0] == language || strings.HasPrefix(fields[0], language+"-")) {
			return true
		}
	}
	return false
}

// Fetch downloads the caption track for a video and returns it as plain
// text with timing and cue markup stripped.
func (c *CaptionClient) Fetch(ctx context.Context, videoID, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	workDir, err := os.MkdirTemp("", "tubemd-captions-*")
	if err != nil {
		return "", fmt.Errorf("media: create caption workdir: %w", err)
	}
	defer os.RemoveAll(workDir) //nolint:errcheck // best-effort cleanup

	result, err := c.runner.Run(ctx, process.Command{
		Binary: "yt-dlp",
		Args: []string{
			"--write-sub", "--write-auto-sub",
			"--sub-lang", language,
			"--skip-download",
			"--convert-subs", "srt",
			"-o", "%(id)s_captions",
			video.WatchURL(videoID),
		},
		Dir: workDir,
	})
	if err != nil {
		return "", apperrors.New(apperrors.CodeCollaboratorUnavailable,
			fmt.Sprintf("Caption download failed for %s.", videoID)).
			WithCause(err).
			WithDetail("stderr", tailStderr(result))
	}

	captionPath := filepath.Join(workDir, fmt.Sprintf("%s_captions.%s.srt", videoID, language))
	content, err := os.ReadFile(captionPath) //nolint:gosec // path is built from validated inputs
	if err != nil {
		// yt-dlp exits zero when the requested language has no track.
		return "", apperrors.NotFound("caption track", videoID).
			WithDetail("language", language)
	}

	text := SRTToPlainText(string(content))
	if text == "" {
		return "", apperrors.NotFound("caption track", videoID).
			WithDetail("language", language).
			WithDetail("reason", "caption file was empty")
	}

	c.log.Debug("captions fetched", logger.Fields("video_id", videoID, "language", language, "chars", len(text)))
	return text, nil
}

// SRTToPlainText strips sequence numbers, timing lines, and blank lines
// from SRT subtitle content, joining the cue text with spaces.
func SRTToPlainText(srt string) string {
	var b strings.Builder
	for _, line := range strings.Split(srt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "-->") {
			continue
		}
		if isCueNumber(line) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(line)
	}
	return b.String()
}

func isCueNumber(line string) bool {
	for _, c := range line {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
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
