package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tubemd/internal/keychain"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage provider API keys in the OS secret store",
}

var keySetCmd = &cobra.Command{
	Use:   "set <provider> [secret]",
	Short: "Store an API key for a provider",
	Long: `Store an API key for a provider in the OS secret store. When the secret
argument is omitted it is read from standard input, which keeps it out of
shell history. The ` + "`TUBEMD_<PROVIDER>_API_KEY`" + ` environment variable, when
set, always takes precedence over the stored key.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := args[0]
		var secret string
		if len(args) == 2 {
			secret = args[1]
		} else {
			fmt.Fprintf(os.Stderr, "Enter API key for %s: ", provider)
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read secret: %w", err)
			}
			secret = strings.TrimSpace(line)
		}

		if err := keychain.NewSystem().Set(provider, secret); err != nil {
			return err
		}
		fmt.Printf("API key stored for %q\n", provider)
		return nil
	},
}

var keyRemoveCmd = &cobra.Command{
	Use:   "remove <provider>",
	Short: "Delete a provider's stored API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := args[0]
		if err := keychain.NewSystem().Delete(provider); err != nil {
			return err
		}
		fmt.Printf("API key removed for %q\n", provider)
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyRemoveCmd)
	rootCmd.AddCommand(keyCmd)
}
