package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"tubemd/internal/config"
	"tubemd/internal/keychain"
)

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Manage LLM providers",
}

var (
	providerEndpoint string
	providerModel    string
)

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured providers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := map[string]bool{
			config.ProviderLocal:     true,
			config.ProviderOpenAI:    true,
			config.ProviderAnthropic: true,
		}
		for name := range cfg.LLM.Providers {
			names[name] = true
		}
		sorted := make([]string, 0, len(names))
		for name := range names {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)

		active := cfg.LLM.ActiveProvider
		if active == "" {
			active = config.ProviderLocal
		}
		for _, name := range sorted {
			pc, err := cfg.Provider(name)
			if err != nil {
				continue
			}
			marker := " "
			if name == active {
				marker = "*"
			}
			fmt.Printf("%s %-12s %-40s %s\n", marker, name, pc.Endpoint, pc.Model)
		}
		return nil
	},
}

var providerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		pc := cfg.LLM.Providers[name]
		if providerEndpoint != "" {
			pc.Endpoint = providerEndpoint
		}
		if providerModel != "" {
			pc.Model = providerModel
		}
		if !config.IsBuiltinProvider(name) && pc.Endpoint == "" {
			return fmt.Errorf("custom provider %q requires --endpoint", name)
		}
		cfg.SetProvider(name, pc)
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("Provider %q saved\n", name)
		return nil
	},
}

var providerRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a provider and its stored credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := cfg.RemoveProvider(name); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		// Credential lifecycle follows the provider.
		if err := keychain.NewSystem().Delete(name); err != nil {
			return err
		}
		fmt.Printf("Provider %q removed\n", name)
		return nil
	},
}

var providerUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, err := cfg.Provider(name); err != nil {
			return err
		}
		cfg.LLM.ActiveProvider = name
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("Active provider is now %q\n", name)
		return nil
	},
}

func init() {
	providerAddCmd.Flags().StringVar(&providerEndpoint, "endpoint", "", "provider API base URL")
	providerAddCmd.Flags().StringVar(&providerModel, "model", "", "model name")

	providerCmd.AddCommand(providerListCmd, providerAddCmd, providerRemoveCmd, providerUseCmd)
	rootCmd.AddCommand(providerCmd)
}
