// Package markdown assembles the final transcript document: YAML front
// matter, title heading, and formatted body.
package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tubemd/internal/stt"
	"tubemd/internal/video"
)

// Document holds everything needed to render a transcript file.
type Document struct {
	// Meta describes the source video.
	Meta *video.Metadata
	// Body is the formatted transcript text.
	Body string
	// Source records the acquisition path (captions or whisper).
	Source string
	// Language is the transcript language code.
	Language string
	// Segments provides timing for timestamped rendering. Optional.
	Segments []stt.Segment
	// Timestamps renders the body as timestamped segments when available.
	Timestamps bool
	// ExtractedAt is when the transcript was produced. Zero means now.
	ExtractedAt time.Time
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Channel     string `yaml:"channel,omitempty"`
	URL         string `yaml:"url"`
	VideoID     string `yaml:"video_id"`
	Duration    string `yaml:"duration,omitempty"`
	Source      string `yaml:"source"`
	Language    string `yaml:"language"`
	ExtractedAt string `yaml:"extracted_at"`
}

// Render produces the full markdown document.
func (d *Document) Render() (string, error) {
	extractedAt := d.ExtractedAt
	if extractedAt.IsZero() {
		extractedAt = time.Now().UTC()
	}
	language := d.Language
	if language == "" {
		language = "en"
	}

	fm := frontMatter{
		Title:       d.Meta.Title,
		Channel:     d.Meta.Channel,
		URL:         d.Meta.URL,
		VideoID:     d.Meta.VideoID,
		Duration:    d.Meta.Duration,
		Source:      d.Source,
		Language:    language,
		ExtractedAt: extractedAt.Format(time.RFC3339),
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("markdown: marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	b.WriteString("# ")
	b.WriteString(d.Meta.Title)
	b.WriteString("\n\n")

	if d.Timestamps && len(d.Segments) > 0 {
		for i, seg := range d.Segments {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "**[%s]** %s\n", video.FormatDuration(seg.Start), seg.Text)
		}
	} else {
		b.WriteString(d.Body)
		b.WriteString("\n")
	}

	return b.String(), nil
}

// Filename builds the output file name: date, video ID, and a sanitized
// title joined with underscores.
func Filename(meta *video.Metadata, at time.Time) string {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return fmt.Sprintf("%s_%s_%s.md", at.Format("2006-01-02"), meta.VideoID, sanitizeTitle(meta.Title))
}

// Save renders the document into dir and returns the written path.
func (d *Document) Save(dir string) (string, error) {
	content, err := d.Render()
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("markdown: create output dir: %w", err)
	}

	at := d.ExtractedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	path := filepath.Join(dir, Filename(d.Meta, at))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // transcripts are not sensitive
		return "", fmt.Errorf("markdown: write document: %w", err)
	}
	return path, nil
}

func sanitizeTitle(title string) string {
	var b strings.Builder
	for _, c := range title {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
