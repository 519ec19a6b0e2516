package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tubemd/internal/config"
	apperrors "tubemd/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and save",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setConfigKey(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return config.Save(cfg)
	},
}

// setConfigKey applies a dotted-key assignment to the config.
func setConfigKey(c *config.Config, key, value string) error {
	switch key {
	case "output.dir":
		c.Output.Dir = value
	case "output.timestamps":
		return setBool(&c.Output.Timestamps, key, value)
	case "output.paragraph_length":
		return setInt(&c.Output.ParagraphLength, key, value)
	case "transcription.prefer_captions":
		return setBool(&c.Transcription.PreferCaptions, key, value)
	case "transcription.default_language":
		c.Transcription.DefaultLanguage = value
	case "transcription.whisper_model":
		c.Transcription.WhisperModel = value
	case "transcription.whisper_threads":
		return setInt(&c.Transcription.WhisperThreads, key, value)
	case "transcription.cache_dir":
		c.Transcription.CacheDir = value
	case "transcription.model_dir":
		c.Transcription.ModelDir = value
	case "llm.enabled":
		return setBool(&c.LLM.Enabled, key, value)
	case "llm.active_provider":
		c.LLM.ActiveProvider = value
	case "logging.level":
		c.Logging.Level = value
	case "logging.format":
		c.Logging.Format = value
	case "logging.no_color":
		return setBool(&c.Logging.NoColor, key, value)
	default:
		return apperrors.InvalidInput("key", fmt.Sprintf("unknown configuration key %q", key))
	}
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return apperrors.InvalidInput(key, fmt.Sprintf("%q is not a boolean", value))
	}
	*dst = b
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return apperrors.InvalidInput(key, fmt.Sprintf("%q is not an integer", value))
	}
	*dst = n
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
