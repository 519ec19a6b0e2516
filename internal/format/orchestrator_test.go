package format

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tubemd/internal/config"
	apperrors "tubemd/internal/errors"
	"tubemd/internal/keychain"
	"tubemd/internal/llm"
)

type fakeCompleter struct {
	resp  *llm.CompletionResponse
	err   error
	calls int
	last  llm.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	f.last = req
	return f.resp, f.err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return cfg
}

func factoryFor(c *fakeCompleter, made *int) ClientFactory {
	return func(cfg llm.Config) (Completer, error) {
		if made != nil {
			*made++
		}
		return c, nil
	}
}

func TestFormatWithoutLLMNeverBuildsClient(t *testing.T) {
	made := 0
	o := NewOrchestrator(testConfig(), keychain.NewMemory(), factoryFor(&fakeCompleter{}, &made))

	out, err := o.Format(context.Background(), "hello there. it works fine.", Options{UseLLM: false})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if out.FormattedBy != ByStandard {
		t.Errorf("formattedBy = %s, want %s", out.FormattedBy, ByStandard)
	}
	if made != 0 {
		t.Error("client must not be constructed when the LLM path is off")
	}
	if out.ProviderUsed != "" || out.ModelUsed != "" {
		t.Errorf("standard outcome must not carry provider/model: %+v", out)
	}
}

func TestFormatLLMSuccess(t *testing.T) {
	completer := &fakeCompleter{resp: &llm.CompletionResponse{
		Content: "  Formatted text.  ",
		Model:   "llama3.2:3b",
	}}
	o := NewOrchestrator(testConfig(), keychain.NewMemory(), factoryFor(completer, nil))

	out, err := o.Format(context.Background(), "raw spoken words here. more words follow.", Options{UseLLM: true})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if out.FormattedBy != ByLLM {
		t.Errorf("formattedBy = %s, want %s", out.FormattedBy, ByLLM)
	}
	if out.Text != "Formatted text." {
		t.Errorf("text = %q, want trimmed response", out.Text)
	}
	if out.ProviderUsed != config.ProviderLocal || out.ModelUsed != "llama3.2:3b" {
		t.Errorf("provenance = %s/%s", out.ProviderUsed, out.ModelUsed)
	}
	if completer.last.Temperature == nil || *completer.last.Temperature != 0.1 {
		t.Errorf("temperature = %v, want 0.1", completer.last.Temperature)
	}
	if completer.last.SystemPrompt == "" {
		t.Error("expected a system instruction")
	}
	if len(completer.last.Messages) != 1 || !strings.Contains(completer.last.Messages[0].Content, "raw spoken words") {
		t.Errorf("user message missing transcript: %+v", completer.last.Messages)
	}
}

func TestFormatCompactKeepsCasing(t *testing.T) {
	o := NewOrchestrator(testConfig(), keychain.NewMemory(), factoryFor(&fakeCompleter{}, nil))

	out, err := o.Format(context.Background(), "hello there. it works fine.", Options{Compact: true})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if out.FormattedBy != ByStandard {
		t.Errorf("formattedBy = %s, want %s", out.FormattedBy, ByStandard)
	}
	if out.Text != "hello there. it works fine." {
		t.Errorf("compact output = %q, casing must be preserved", out.Text)
	}
}

func TestFormatTransportFailureFallsBack(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("context deadline exceeded")}
	o := NewOrchestrator(testConfig(), keychain.NewMemory(), factoryFor(completer, nil))

	out, err := o.Format(context.Background(), "first thing. second thing.", Options{UseLLM: true})
	if err != nil {
		t.Fatalf("transport failure must not surface: %v", err)
	}
	if out.FormattedBy != ByStandard {
		t.Errorf("formattedBy = %s, want %s", out.FormattedBy, ByStandard)
	}
	if out.Text == "" {
		t.Error("fallback text must not be empty")
	}
}

func TestFormatEmptyResponseFallsBack(t *testing.T) {
	completer := &fakeCompleter{resp: &llm.CompletionResponse{Content: "   "}}
	o := NewOrchestrator(testConfig(), keychain.NewMemory(), factoryFor(completer, nil))

	out, err := o.Format(context.Background(), "first thing. second thing.", Options{UseLLM: true})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if out.FormattedBy != ByStandard {
		t.Errorf("formattedBy = %s, want %s", out.FormattedBy, ByStandard)
	}
}

func TestFormatMissingCredentialIsFatalBeforeNetwork(t *testing.T) {
	made := 0
	completer := &fakeCompleter{}
	o := NewOrchestrator(testConfig(), keychain.NewMemory(), factoryFor(completer, &made))

	_, err := o.Format(context.Background(), "some text.", Options{
		UseLLM:           true,
		ProviderOverride: config.ProviderOpenAI,
	})
	if apperrors.CodeOf(err) != apperrors.CodeCredentialMissing {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeCredentialMissing)
	}
	if made != 0 || completer.calls != 0 {
		t.Error("no client construction or network call may precede the credential check")
	}
}

func TestFormatUsesStoredCredential(t *testing.T) {
	creds := keychain.NewMemory()
	if err := creds.Set(config.ProviderOpenAI, "sk-test"); err != nil {
		t.Fatal(err)
	}

	var gotSecret string
	completer := &fakeCompleter{resp: &llm.CompletionResponse{Content: "done."}}
	factory := func(cfg llm.Config) (Completer, error) {
		gotSecret = cfg.Secret
		if cfg.Dialect != "openai" {
			t.Errorf("dialect = %q, want openai", cfg.Dialect)
		}
		return completer, nil
	}

	o := NewOrchestrator(testConfig(), creds, factory)
	out, err := o.Format(context.Background(), "some text.", Options{
		UseLLM:           true,
		ProviderOverride: config.ProviderOpenAI,
	})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if gotSecret != "sk-test" {
		t.Errorf("secret = %q, want sk-test", gotSecret)
	}
	if out.ProviderUsed != config.ProviderOpenAI {
		t.Errorf("providerUsed = %q", out.ProviderUsed)
	}
}

func TestFormatUnknownProvider(t *testing.T) {
	o := NewOrchestrator(testConfig(), keychain.NewMemory(), factoryFor(&fakeCompleter{}, nil))
	_, err := o.Format(context.Background(), "some text.", Options{
		UseLLM:           true,
		ProviderOverride: "nonexistent",
	})
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Errorf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeNotFound)
	}
}

func TestFormatLyricsPassThrough(t *testing.T) {
	lyrics := "♪ na na na ♪"
	o := NewOrchestrator(testConfig(), keychain.NewMemory(), factoryFor(&fakeCompleter{}, nil))

	out, err := o.Format(context.Background(), lyrics, Options{UseLLM: true})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if out.FormattedBy != ByStandard {
		t.Errorf("formattedBy = %s, want %s", out.FormattedBy, ByStandard)
	}
	if out.Text != lyrics {
		t.Errorf("lyrics must pass through unchanged, got %q", out.Text)
	}
}

func TestFormatForceFormattingOverridesHeuristic(t *testing.T) {
	completer := &fakeCompleter{resp: &llm.CompletionResponse{Content: "Reflowed."}}
	o := NewOrchestrator(testConfig(), keychain.NewMemory(), factoryFor(completer, nil))

	out, err := o.Format(context.Background(), "♪ na na na ♪", Options{
		UseLLM:          true,
		ForceFormatting: true,
	})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if out.FormattedBy != ByLLM {
		t.Errorf("formattedBy = %s, want %s with ForceFormatting", out.FormattedBy, ByLLM)
	}
}

func TestFormatActiveProviderFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.ActiveProvider = config.ProviderAnthropic
	creds := keychain.NewMemory()
	if err := creds.Set(config.ProviderAnthropic, "sk-ant"); err != nil {
		t.Fatal(err)
	}

	completer := &fakeCompleter{resp: &llm.CompletionResponse{Content: "done."}}
	o := NewOrchestrator(cfg, creds, factoryFor(completer, nil))

	out, err := o.Format(context.Background(), "some text.", Options{UseLLM: true})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if out.ProviderUsed != config.ProviderAnthropic {
		t.Errorf("providerUsed = %q, want anthropic", out.ProviderUsed)
	}
}
