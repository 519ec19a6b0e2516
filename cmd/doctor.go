package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tubemd/internal/config"
	"tubemd/internal/keychain"
	"tubemd/internal/ollama"
	"tubemd/internal/process"
)

type checkResult struct {
	name    string
	ok      bool
	message string
	fix     string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the environment tubemd depends on",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		results := runChecks(cmd.Context())

		failed := 0
		for _, r := range results {
			mark := "ok"
			if !r.ok {
				mark = "FAIL"
				failed++
			}
			fmt.Printf("%-6s %-20s %s\n", mark, r.name, r.message)
			if !r.ok && r.fix != "" {
				fmt.Printf("       fix: %s\n", r.fix)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d check(s) failed", failed)
		}
		fmt.Println("\nAll checks passed")
		return nil
	},
}

func runChecks(ctx context.Context) []checkResult {
	var results []checkResult

	results = append(results, checkBinary("yt-dlp", "https://github.com/yt-dlp/yt-dlp"))
	results = append(results, checkBinary("ffmpeg", "https://ffmpeg.org/download.html"))
	results = append(results, checkBinary("whisper-cli", "https://github.com/ggerganov/whisper.cpp"))
	results = append(results, checkWhisperModels())
	results = append(results, checkOllama(ctx))
	results = append(results, checkConfigFile())
	results = append(results, checkKeyring())

	return results
}

func checkBinary(name, installURL string) checkResult {
	if process.Installed(name) {
		return checkResult{name: name, ok: true, message: "found on PATH"}
	}
	return checkResult{
		name:    name,
		ok:      false,
		message: "not found on PATH",
		fix:     "install from " + installURL,
	}
}

func checkWhisperModels() checkResult {
	dir := cfg.Transcription.ModelDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return checkResult{
			name:    "whisper models",
			ok:      false,
			message: fmt.Sprintf("model directory %s is missing", dir),
			fix:     "download a ggml model from https://huggingface.co/ggerganov/whisper.cpp into " + dir,
		}
	}
	var models []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "ggml-") && strings.HasSuffix(entry.Name(), ".bin") {
			models = append(models, entry.Name())
		}
	}
	if len(models) == 0 {
		return checkResult{
			name:    "whisper models",
			ok:      false,
			message: "no ggml model files in " + dir,
			fix:     "download a ggml model from https://huggingface.co/ggerganov/whisper.cpp",
		}
	}
	return checkResult{
		name:    "whisper models",
		ok:      true,
		message: strings.Join(models, ", "),
	}
}

func checkOllama(ctx context.Context) checkResult {
	pc, err := cfg.Provider(config.ProviderLocal)
	if err != nil {
		pc.Endpoint = ""
	}
	client := ollama.NewClient(pc.Endpoint)
	if !client.IsAvailable(ctx) {
		return checkResult{
			name:    "ollama",
			ok:      false,
			message: "service not reachable at " + pc.Endpoint,
			fix:     "start it with: ollama serve",
		}
	}
	names, err := client.ListLocal(ctx)
	if err != nil || len(names) == 0 {
		return checkResult{
			name:    "ollama",
			ok:      true,
			message: "reachable, no models installed (tubemd model pull <name>)",
		}
	}
	return checkResult{
		name:    "ollama",
		ok:      true,
		message: fmt.Sprintf("reachable, %d model(s): %s", len(names), strings.Join(names, ", ")),
	}
}

func checkConfigFile() checkResult {
	path, err := config.Path()
	if err != nil {
		return checkResult{name: "config", ok: false, message: err.Error()}
	}
	if _, err := os.Stat(path); err != nil {
		return checkResult{
			name:    "config",
			ok:      true,
			message: "no config file yet, defaults apply (" + path + ")",
		}
	}
	return checkResult{name: "config", ok: true, message: path}
}

// checkKeyring verifies the OS secret store works with a throwaway entry.
func checkKeyring() checkResult {
	store := keychain.NewSystem()
	const probe = "tubemd-doctor-probe"
	if err := store.Set(probe, "ok"); err != nil {
		return checkResult{
			name:    "keyring",
			ok:      false,
			message: "OS secret store not usable: " + err.Error(),
			fix:     "use TUBEMD_<PROVIDER>_API_KEY environment variables instead",
		}
	}
	_ = store.Delete(probe)
	return checkResult{name: "keyring", ok: true, message: "OS secret store usable"}
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
