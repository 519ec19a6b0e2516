package format

import (
	"context"
	"errors"
	"strings"

	"tubemd/internal/config"
	apperrors "tubemd/internal/errors"
	"tubemd/internal/keychain"
	"tubemd/internal/llm"
	"tubemd/internal/logger"
)

// FormattedBy identifies which formatting path produced the output.
type FormattedBy string

const (
	// ByLLM marks output produced by a language model.
	ByLLM FormattedBy = "llm"
	// ByStandard marks output produced by the deterministic formatter.
	ByStandard FormattedBy = "standard"
)

// Outcome is the terminal formatting artifact.
type Outcome struct {
	// Text is the formatted transcript.
	Text string
	// FormattedBy records which path produced Text.
	FormattedBy FormattedBy
	// ProviderUsed names the LLM provider, when FormattedBy is ByLLM.
	ProviderUsed string
	// ModelUsed names the LLM model, when FormattedBy is ByLLM.
	ModelUsed string
}

// Options control a single formatting run.
type Options struct {
	// UseLLM enables the LLM path. False means deterministic formatting
	// with no network I/O.
	UseLLM bool
	// ProviderOverride selects a provider for this run, bypassing the
	// configured active provider.
	ProviderOverride string
	// ForceFormatting reflows even content the lyric heuristic would
	// normally pass through.
	ForceFormatting bool
	// Compact uses the plain paragraph grouping without the cleanup pass.
	Compact bool
	// ParagraphLength overrides the configured sentences-per-paragraph.
	ParagraphLength int
}

// Completer is the slice of the LLM client the orchestrator needs.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// ClientFactory builds a Completer from a resolved provider config.
type ClientFactory func(cfg llm.Config) (Completer, error)

const systemPrompt = "You are a helpful assistant that formats transcripts into well-structured markdown."

const userPromptPrefix = `Please format the following transcript into well-structured markdown.
Keep the original content but improve readability by:
- Organizing into logical paragraphs
- Fixing any grammar or punctuation issues
- Removing filler words if appropriate
- Maintaining the original meaning and tone

Transcript:

`

// Orchestrator runs the LLM formatting path with deterministic fallback.
type Orchestrator struct {
	cfg       *config.Config
	creds     keychain.Store
	newClient ClientFactory
	log       *logger.Logger
}

// NewOrchestrator creates a formatting orchestrator. A nil factory uses the
// real HTTP client.
func NewOrchestrator(cfg *config.Config, creds keychain.Store, factory ClientFactory) *Orchestrator {
	if factory == nil {
		factory = func(c llm.Config) (Completer, error) { return llm.NewClient(c) }
	}
	return &Orchestrator{
		cfg:       cfg,
		creds:     creds,
		newClient: factory,
		log:       logger.WithComponent("format"),
	}
}

// Format produces the final transcript text. LLM failures fall back to the
// deterministic formatter and are logged, never surfaced; a missing
// credential for an explicitly requested non-local provider is fatal before
// any network I/O.
func (o *Orchestrator) Format(ctx context.Context, rawText string, opts Options) (*Outcome, error) {
	paragraphLen := opts.ParagraphLength
	if paragraphLen <= 0 {
		paragraphLen = o.cfg.Output.ParagraphLength
	}
	deterministic := func(text string) string {
		if opts.Compact {
			return Compact(text, paragraphLen)
		}
		return Standard(text, paragraphLen)
	}

	if Unsuitable(rawText) && !opts.ForceFormatting {
		o.log.Info("lyric content detected, preserving original formatting")
		return &Outcome{Text: rawText, FormattedBy: ByStandard}, nil
	}

	if !opts.UseLLM {
		return &Outcome{Text: deterministic(rawText), FormattedBy: ByStandard}, nil
	}

	provider := opts.ProviderOverride
	if provider == "" {
		provider = o.cfg.LLM.ActiveProvider
	}
	if provider == "" {
		provider = config.ProviderLocal
	}

	providerCfg, err := o.cfg.Provider(provider)
	if err != nil {
		return nil, apperrors.NotFound("provider", provider).WithCause(err)
	}

	var secret string
	if provider != config.ProviderLocal {
		secret, err = o.creds.Get(provider)
		if errors.Is(err, keychain.ErrNotFound) {
			return nil, apperrors.CredentialMissing(provider)
		}
		if err != nil {
			return nil, err
		}
	}

	client, err := o.newClient(llm.Config{
		Dialect:     dialectFor(provider),
		BaseURL:     providerCfg.Endpoint,
		Model:       providerCfg.Model,
		Secret:      secret,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidInput,
			"LLM client configuration is invalid.").WithCause(err)
	}

	resp, err := client.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: userPromptPrefix + rawText},
		},
		Temperature: llm.Temp(0.1),
	})
	if err != nil {
		o.log.Warn("LLM formatting failed, using standard formatter",
			logger.Fields("provider", provider, "error", err.Error()))
		return &Outcome{Text: deterministic(rawText), FormattedBy: ByStandard}, nil
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		o.log.Warn("LLM returned empty response, using standard formatter",
			logger.Fields("provider", provider))
		return &Outcome{Text: deterministic(rawText), FormattedBy: ByStandard}, nil
	}

	model := resp.Model
	if model == "" {
		model = providerCfg.Model
	}
	return &Outcome{
		Text:         text,
		FormattedBy:  ByLLM,
		ProviderUsed: provider,
		ModelUsed:    model,
	}, nil
}

// dialectFor maps a provider name to its wire dialect. Unknown names are
// custom OpenAI-compatible providers.
func dialectFor(provider string) string {
	switch provider {
	case config.ProviderLocal:
		return "local"
	case config.ProviderOpenAI:
		return "openai"
	case config.ProviderAnthropic:
		return "anthropic"
	default:
		return "custom"
	}
}
