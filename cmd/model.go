package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tubemd/internal/config"
	"tubemd/internal/ollama"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage models on the local inference service",
}

func ollamaClient() *ollama.Client {
	pc, err := cfg.Provider(config.ProviderLocal)
	if err != nil {
		return ollama.NewClient("")
	}
	return ollama.NewClient(pc.Endpoint)
}

var modelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List locally installed models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := ollamaClient().ListLocal(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No models installed. Pull one with: tubemd model pull <name>")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var modelPullCmd = &cobra.Command{
	Use:   "pull <name>",
	Short: "Download a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model := args[0]
		var sink ollama.ProgressSink
		if !quiet {
			sink = ollama.ProgressFunc(renderProgress)
		}
		if err := ollamaClient().Pull(cmd.Context(), model, sink); err != nil {
			fmt.Fprintln(os.Stderr)
			return err
		}
		fmt.Fprintln(os.Stderr)
		fmt.Printf("Model %q installed\n", model)
		return nil
	},
}

var modelRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete an installed model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model := args[0]
		if err := ollamaClient().Delete(cmd.Context(), model); err != nil {
			return err
		}
		fmt.Printf("Model %q removed\n", model)
		return nil
	},
}

// renderProgress draws a single carriage-return progress line on stderr.
func renderProgress(status string, completed, total int64) {
	if total > 0 {
		fmt.Fprintf(os.Stderr, "\r%-30s %5.1f%% (%s / %s)",
			status, float64(completed)/float64(total)*100,
			humanBytes(completed), humanBytes(total))
		return
	}
	fmt.Fprintf(os.Stderr, "\r%-60s", status)
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func init() {
	modelCmd.AddCommand(modelListCmd, modelPullCmd, modelRemoveCmd)
	rootCmd.AddCommand(modelCmd)
}
