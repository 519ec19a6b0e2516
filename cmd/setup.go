package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tubemd/internal/config"
	apperrors "tubemd/internal/errors"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive first-run configuration",
	Long: `Walks through the basic settings (output directory, language, LLM
formatting) and writes the configuration file. Press Enter at any prompt to
keep the shown default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Welcome to tubemd setup.")
		fmt.Fprintln(out)

		if err := runSetup(cmd.InOrStdin(), out, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}

		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Setup complete. Configuration written to %s\n", path)
		fmt.Fprintln(out, "Run 'tubemd doctor' to verify your installation.")
		return nil
	},
}

// runSetup prompts for the basic settings and applies the answers to c.
func runSetup(in io.Reader, out io.Writer, c *config.Config) error {
	r := bufio.NewReader(in)

	dir, err := promptString(r, out, "Output directory for transcripts", c.Output.Dir)
	if err != nil {
		return err
	}
	c.Output.Dir = dir

	lang, err := promptString(r, out, "Default transcript language", c.Transcription.DefaultLanguage)
	if err != nil {
		return err
	}
	c.Transcription.DefaultLanguage = lang

	model, err := promptString(r, out, "Whisper model size (tiny, base, small, medium, large)", c.Transcription.WhisperModel)
	if err != nil {
		return err
	}
	c.Transcription.WhisperModel = model

	enabled, err := promptBool(r, out, "Enable LLM formatting?", c.LLM.Enabled)
	if err != nil {
		return err
	}
	c.LLM.Enabled = enabled
	if !enabled {
		return nil
	}

	active := c.LLM.ActiveProvider
	if active == "" {
		active = config.ProviderLocal
	}
	provider, err := promptString(r, out, "LLM provider (local, openai, anthropic, or a configured custom name)", active)
	if err != nil {
		return err
	}
	if _, err := c.Provider(provider); err != nil {
		return apperrors.InvalidInput("provider", err.Error())
	}
	c.LLM.ActiveProvider = provider

	if provider != config.ProviderLocal {
		fmt.Fprintf(out, "Store the API key with: tubemd key set %s\n", provider)
	}
	return nil
}

func promptString(r *bufio.Reader, out io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read answer: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func promptBool(r *bufio.Reader, out io.Writer, label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	answer, err := promptString(r, out, fmt.Sprintf("%s (%s)", label, hint), "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	}
	return false, apperrors.InvalidInput(label, fmt.Sprintf("%q is not a yes/no answer", answer))
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
