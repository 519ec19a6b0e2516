package cmd

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"tubemd/internal/format"
	"tubemd/internal/keychain"
	"tubemd/internal/logger"
	"tubemd/internal/markdown"
	"tubemd/internal/media"
	"tubemd/internal/stt"
	"tubemd/internal/transcript"
	"tubemd/internal/video"
)

var (
	outDir          string
	preferCaptions  bool
	language        string
	timestamps      bool
	paragraphLength int
	compactOutput   bool
	forceFormatting bool
	cookiesFile     string
	whisperModel    string
	whisperThreads  int
	useLLM          bool
	providerName    string
	dryRun          bool
	toClipboard     bool
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&outDir, "out-dir", "o", "", "output directory for the transcript")
	flags.BoolVar(&preferCaptions, "prefer-captions", true, "prefer captions over speech recognition")
	flags.StringVar(&language, "lang", "", "language code override")
	flags.BoolVar(&timestamps, "timestamps", false, "include segment timestamps")
	flags.IntVar(&paragraphLength, "paragraph-length", 0, "sentences per paragraph")
	flags.BoolVar(&compactOutput, "compact", false, "plain paragraph grouping without cleanup")
	flags.BoolVar(&forceFormatting, "force-formatting", false, "reflow even music/lyric content")
	flags.StringVar(&cookiesFile, "cookies", "", "browser cookies file for restricted videos")
	flags.StringVar(&whisperModel, "model", "", "whisper model size (tiny, base, small, medium, large)")
	flags.IntVar(&whisperThreads, "threads", 0, "speech recognition thread count")
	flags.BoolVar(&useLLM, "use-llm", false, "format the transcript with the configured LLM")
	flags.StringVar(&providerName, "provider", "", "LLM provider override for this run")
	flags.BoolVar(&dryRun, "dry-run", false, "print instead of writing the file")
	flags.BoolVar(&toClipboard, "clipboard", false, "copy the transcript to the clipboard")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("transcribe")

	videoID, err := video.ValidateURL(args[0])
	if err != nil {
		return err
	}

	meta, err := video.NewFetcher(nil).Fetch(cmd.Context(), videoID)
	if err != nil {
		return err
	}
	log.Info("transcribing video",
		logger.Fields("title", meta.Title, "channel", meta.Channel, "video_id", videoID))

	lang := language
	if lang == "" {
		lang = cfg.Transcription.DefaultLanguage
	}
	modelSize := whisperModel
	if modelSize == "" {
		modelSize = cfg.Transcription.WhisperModel
	}
	threads := whisperThreads
	if threads == 0 {
		threads = cfg.Transcription.WhisperThreads
	}

	selector := transcript.NewSelector(
		media.NewCaptionClient(nil),
		media.NewDownloader(nil, cfg.Transcription.CacheDir, media.WithCookiesFile(cookiesFile)),
		media.NewConverter(nil),
		stt.NewEngine(stt.Config{
			ModelDir:  cfg.Transcription.ModelDir,
			ModelSize: modelSize,
		}, nil),
	)

	prefer := cfg.Transcription.PreferCaptions
	if cmd.Flags().Changed("prefer-captions") {
		prefer = preferCaptions
	}

	raw, err := selector.Acquire(cmd.Context(), videoID, transcript.Options{
		PreferCaptions: prefer,
		Language:       lang,
		Threads:        threads,
	})
	if err != nil {
		return err
	}

	orchestrator := format.NewOrchestrator(cfg, keychain.NewSystem(), nil)
	outcome, err := orchestrator.Format(cmd.Context(), raw.Text, format.Options{
		UseLLM:           useLLM || cfg.LLM.Enabled,
		ProviderOverride: providerName,
		ForceFormatting:  forceFormatting,
		Compact:          compactOutput,
		ParagraphLength:  paragraphLength,
	})
	if err != nil {
		return err
	}
	if outcome.FormattedBy == format.ByLLM {
		log.Info("transcript formatted",
			logger.Fields("provider", outcome.ProviderUsed, "model", outcome.ModelUsed))
	}

	doc := &markdown.Document{
		Meta:        meta,
		Body:        outcome.Text,
		Source:      string(raw.Source),
		Language:    lang,
		Segments:    raw.Segments,
		Timestamps:  timestamps || cfg.Output.Timestamps,
		ExtractedAt: time.Now().UTC(),
	}

	content, err := doc.Render()
	if err != nil {
		return err
	}

	if toClipboard {
		if err := clipboard.WriteAll(content); err != nil {
			log.Warn("clipboard copy failed", logger.Fields("error", err.Error()))
		} else {
			log.Info("transcript copied to clipboard")
		}
	}

	if dryRun {
		fmt.Println(content)
		return nil
	}

	dir := outDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	path, err := doc.Save(dir)
	if err != nil {
		return err
	}
	log.Info("transcript saved",
		logger.Fields("path", path, "source", string(raw.Source), "formatted_by", string(outcome.FormattedBy)))
	fmt.Println(path)
	return nil
}
