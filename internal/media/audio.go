package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "tubemd/internal/errors"
	"tubemd/internal/logger"
	"tubemd/internal/process"
	"tubemd/internal/video"
)

// Downloader fetches a video's audio track via yt-dlp and caches it on disk
// keyed by video ID.
type Downloader struct {
	runner      process.Runner
	cacheDir    string
	cookiesFile string
	log         *logger.Logger
	timeout     time.Duration
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithCookiesFile passes a browser cookies file to yt-dlp. Age-restricted
// and region-locked videos need one.
func WithCookiesFile(path string) DownloaderOption {
	return func(d *Downloader) { d.cookiesFile = path }
}

// NewDownloader creates an audio downloader writing into cacheDir. A nil
// runner uses real subprocess execution.
func NewDownloader(runner process.Runner, cacheDir string, opts ...DownloaderOption) *Downloader {
	if runner == nil {
		runner = process.DefaultRunner()
	}
	d := &Downloader{
		runner:   runner,
		cacheDir: cacheDir,
		log:      logger.WithComponent("audio"),
		timeout:  15 * time.Minute,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download returns the path to the video's audio file, downloading it if no
// usable cached copy exists. Zero-length files are treated as absent.
func (d *Downloader) Download(ctx context.Context, videoID string) (string, error) {
	if err := os.MkdirAll(d.cacheDir, 0o750); err != nil {
		return "", fmt.Errorf("media: create cache dir: %w", err)
	}

	if cached := d.findCached(videoID); cached != "" {
		d.log.Info("using cached audio", logger.Fields("video_id", videoID, "path", cached))
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// Download into a staging directory first so a partial file never
	// poisons the cache.
	staging := filepath.Join(d.cacheDir, ".partial-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0o750); err != nil {
		return "", fmt.Errorf("media: create staging dir: %w", err)
	}
	defer os.RemoveAll(staging) //nolint:errcheck // best-effort cleanup

	args := []string{
		"-x",
		"--audio-format", "best",
		"--audio-quality", "0",
		"-o", filepath.Join(staging, videoID+"_audio.%(ext)s"),
	}
	if d.cookiesFile != "" {
		args = append(args, "--cookies", d.cookiesFile)
	}
	args = append(args, video.WatchURL(videoID))

	result, err := d.runner.Run(ctx, process.Command{
		Binary: "yt-dlp",
		Args:   args,
	})
	if err != nil {
		return "", apperrors.CollaboratorUnavailable("yt-dlp", err).
			WithDetail("video_id", videoID).
			WithDetail("stderr", tailStderr(result))
	}

	downloaded := findAudioFile(staging, videoID)
	if downloaded == "" {
		return "", apperrors.NotFound("downloaded audio file", videoID)
	}

	final := filepath.Join(d.cacheDir, filepath.Base(downloaded))
	if err := os.Rename(downloaded, final); err != nil {
		return "", fmt.Errorf("media: move audio into cache: %w", err)
	}

	d.log.Info("audio downloaded", logger.Fields("video_id", videoID, "path", final))
	return final, nil
}

// Evict removes any cached audio for a video.
func (d *Downloader) Evict(videoID string) error {
	entries, err := os.ReadDir(d.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("media: read cache dir: %w", err)
	}
	prefix := videoID + "_audio."
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			if err := os.Remove(filepath.Join(d.cacheDir, entry.Name())); err != nil {
				return fmt.Errorf("media: evict cached audio: %w", err)
			}
		}
	}
	return nil
}

func (d *Downloader) findCached(videoID string) string {
	return findAudioFile(d.cacheDir, videoID)
}

// findAudioFile locates a non-empty <videoID>_audio.* file in dir.
func findAudioFile(dir, videoID string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	prefix := videoID + "_audio."
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		return filepath.Join(dir, entry.Name())
	}
	return ""
}
