// Package video identifies YouTube videos and fetches their metadata.
package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"

	apperrors "tubemd/internal/errors"
	"tubemd/internal/logger"
	"tubemd/internal/process"
)

// Metadata describes a YouTube video.
type Metadata struct {
	Title    string
	Channel  string
	Duration string
	VideoID  string
	URL      string
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// ExtractID extracts the video ID from a YouTube URL. Accepted forms are
// watch URLs, youtu.be short links, /shorts/ paths, and a bare 11-character
// ID.
func ExtractID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)

	if idx := strings.Index(rawURL, "youtu.be/"); idx >= 0 {
		id := rawURL[idx+len("youtu.be/"):]
		id, _, _ = strings.Cut(id, "?")
		if id != "" {
			return id, nil
		}
	}

	if strings.Contains(rawURL, "youtube.com") {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return "", apperrors.InvalidInput("url", fmt.Sprintf("not a valid URL: %s", rawURL))
		}
		if v := parsed.Query().Get("v"); v != "" {
			return v, nil
		}
		segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		if len(segments) == 2 && segments[0] == "shorts" {
			return segments[1], nil
		}
	}

	if isBareID(rawURL) {
		return rawURL, nil
	}

	return "", apperrors.InvalidInput("url", fmt.Sprintf("could not extract a video ID from %q", rawURL))
}

// ValidateURL extracts and validates a video ID from a YouTube URL. Video
// IDs are 11 characters.
func ValidateURL(rawURL string) (string, error) {
	id, err := ExtractID(rawURL)
	if err != nil {
		return "", err
	}
	if len(id) != 11 {
		return "", apperrors.InvalidInput("url", fmt.Sprintf("invalid video ID length: %q", id))
	}
	return id, nil
}

func isBareID(s string) bool {
	if len(s) != 11 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

// FormatDuration renders a duration in seconds as HH:MM:SS, or MM:SS when
// under an hour.
func FormatDuration(seconds float64) string {
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Fetcher retrieves video metadata via yt-dlp.
type Fetcher struct {
	runner  process.Runner
	log     *logger.Logger
	timeout time.Duration
}

// NewFetcher creates a metadata fetcher. A nil runner uses real subprocess
// execution.
func NewFetcher(runner process.Runner) *Fetcher {
	if runner == nil {
		runner = process.DefaultRunner()
	}
	return &Fetcher{
		runner:  runner,
		log:     logger.WithComponent("video"),
		timeout: 60 * time.Second,
	}
}

// Fetch retrieves metadata for a video without downloading it.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (*Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	watchURL := WatchURL(videoID)
	result, err := f.runner.Run(ctx, process.Command{
		Binary: "yt-dlp",
		Args:   []string{"--dump-json", "--no-download", watchURL},
	})
	if err != nil {
		appErr := apperrors.CollaboratorUnavailable("yt-dlp", err).
			WithDetail("video_id", videoID).
			WithDetail("stderr", tail(result, 512))
		if errors.Is(err, exec.ErrNotFound) {
			appErr = appErr.WithDetail("install", "https://github.com/yt-dlp/yt-dlp")
		}
		return nil, appErr
	}

	var payload struct {
		Title    string  `json:"title"`
		Uploader string  `json:"uploader"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(result.Stdout, &payload); err != nil {
		return nil, fmt.Errorf("video: parse metadata for %s: %w", videoID, err)
	}

	meta := &Metadata{
		Title:   payload.Title,
		Channel: payload.Uploader,
		VideoID: videoID,
		URL:     watchURL,
	}
	if meta.Title == "" {
		meta.Title = "Unknown Title"
	}
	if payload.Duration > 0 {
		meta.Duration = FormatDuration(payload.Duration)
	}

	f.log.Debug("metadata fetched", logger.Fields("video_id", videoID, "title", meta.Title))
	return meta, nil
}

// tail returns the last n bytes of a result's stderr for error details.
func tail(r *process.Result, n int) string {
	if r == nil {
		return ""
	}
	s := strings.TrimSpace(string(r.Stderr))
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}
