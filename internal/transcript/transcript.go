// Package transcript acquires a raw transcript for a video, preferring
// caption tracks and falling back to speech recognition.
package transcript

import (
	"context"
	"os"

	"tubemd/internal/logger"
	"tubemd/internal/stt"
)

// Source identifies where a transcript came from.
type Source string

const (
	// SourceCaptions marks a transcript built from a caption track.
	SourceCaptions Source = "captions"
	// SourceSpeech marks a transcript produced by speech recognition.
	SourceSpeech Source = "whisper"
)

// Raw is an unformatted transcript with its provenance.
type Raw struct {
	// Text is the transcript as plain text.
	Text string
	// Source records which acquisition path produced the text.
	Source Source
	// Segments contains time-aligned portions when speech recognition
	// produced the transcript. Empty for caption transcripts.
	Segments []stt.Segment
}

// CaptionProvider probes for and fetches caption tracks.
type CaptionProvider interface {
	Available(ctx context.Context, videoID, language string) bool
	Fetch(ctx context.Context, videoID, language string) (string, error)
}

// AudioProvider fetches a video's audio track.
type AudioProvider interface {
	Download(ctx context.Context, videoID string) (string, error)
}

// AudioConverter prepares audio for speech recognition.
type AudioConverter interface {
	ToWav(ctx context.Context, audioPath string) (string, error)
}

// Recognizer transcribes prepared audio.
type Recognizer interface {
	Transcribe(ctx context.Context, req stt.Request) (*stt.Response, error)
}

// Options control transcript acquisition.
type Options struct {
	// PreferCaptions tries the caption path before speech recognition.
	PreferCaptions bool
	// Language is the desired transcript language (e.g. "en").
	Language string
	// Threads overrides the speech recognition thread count.
	Threads int
}

// Selector acquires transcripts through an ordered list of strategies.
type Selector struct {
	captions   CaptionProvider
	audio      AudioProvider
	converter  AudioConverter
	recognizer Recognizer
	log        *logger.Logger
}

// NewSelector wires the acquisition strategies together.
func NewSelector(captions CaptionProvider, audio AudioProvider, converter AudioConverter, recognizer Recognizer) *Selector {
	return &Selector{
		captions:   captions,
		audio:      audio,
		converter:  converter,
		recognizer: recognizer,
		log:        logger.WithComponent("transcript"),
	}
}

// Acquire returns a raw transcript for the video. When captions are
// preferred, any failure on the caption path downgrades silently to speech
// recognition; a speech recognition failure after that is final.
func (s *Selector) Acquire(ctx context.Context, videoID string, opts Options) (*Raw, error) {
	language := opts.Language
	if language == "" {
		language = "en"
	}

	if opts.PreferCaptions {
		if raw, ok := s.tryCaptions(ctx, videoID, language); ok {
			return raw, nil
		}
	}
	return s.recognize(ctx, videoID, opts, language)
}

func (s *Selector) tryCaptions(ctx context.Context, videoID, language string) (*Raw, bool) {
	if !s.captions.Available(ctx, videoID, language) {
		s.log.Debug("no caption track, using speech recognition",
			logger.Fields("video_id", videoID, "language", language))
		return nil, false
	}

	text, err := s.captions.Fetch(ctx, videoID, language)
	if err != nil {
		s.log.Debug("caption fetch failed, using speech recognition",
			logger.Fields("video_id", videoID, "error", err.Error()))
		return nil, false
	}

	s.log.Info("transcript acquired from captions", logger.Fields("video_id", videoID))
	return &Raw{Text: text, Source: SourceCaptions}, true
}

func (s *Selector) recognize(ctx context.Context, videoID string, opts Options, language string) (*Raw, error) {
	audioPath, err := s.audio.Download(ctx, videoID)
	if err != nil {
		return nil, err
	}

	wavPath, err := s.converter.ToWav(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	defer os.Remove(wavPath) //nolint:errcheck // best-effort cleanup of temp wav

	resp, err := s.recognizer.Transcribe(ctx, stt.Request{
		AudioPath: wavPath,
		Language:  language,
		Threads:   opts.Threads,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transcript acquired from speech recognition",
		logger.Fields("video_id", videoID, "segments", len(resp.Segments)))
	return &Raw{Text: resp.Text, Source: SourceSpeech, Segments: resp.Segments}, nil
}
