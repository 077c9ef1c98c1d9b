package cli

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neboloop/callbridge/internal/config"
	"github.com/neboloop/callbridge/internal/keyring"
)

// CredentialCmd manages the voice agent API key in the OS keychain.
func CredentialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the voice agent API key",
		Long: `The agent API key is resolved from, in order:
  1. the ` + config.APIKeyEnv + ` environment variable
  2. agent.api_key in the config file
  3. the OS keychain (managed by this command)`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [key]",
		Short: "Store the API key in the OS keychain (reads stdin when no key is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !keyring.Available() {
				return errors.New("OS keychain is not available on this host")
			}
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return err
				}
				key = line
			}
			if err := keyring.Set(strings.TrimSpace(key)); err != nil {
				return err
			}
			cmd.Println("API key stored in the OS keychain")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the API key from the OS keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := keyring.Delete(); err != nil {
				return err
			}
			cmd.Println("API key removed from the OS keychain")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show where the API key would be read from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(credentialSource(ServerConfig.Agent))
			return nil
		},
	})

	return cmd
}

// credentialSource names the first place the API key is found.
func credentialSource(a config.AgentConfig) string {
	switch {
	case strings.TrimSpace(os.Getenv(config.APIKeyEnv)) != "":
		return "environment (" + config.APIKeyEnv + ")"
	case strings.TrimSpace(a.APIKey) != "":
		return "config file (agent.api_key)"
	}
	if key, err := keyring.Get(); err == nil && strings.TrimSpace(key) != "" {
		return "OS keychain"
	}
	return "not configured"
}
