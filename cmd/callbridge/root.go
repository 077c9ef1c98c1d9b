package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/neboloop/callbridge/internal/config"
	"github.com/neboloop/callbridge/internal/logging"
)

// SetupRootCmd configures the root command with all subcommands and flags.
// embedded holds the default YAML config compiled into the binary.
func SetupRootCmd(embedded []byte) *cobra.Command {
	embeddedConfig = embedded

	rootCmd := &cobra.Command{
		Use:   "callbridge",
		Short: "callbridge - phone call to voice agent bridge",
		Long: `callbridge accepts telephony media streams over WebSocket and bridges each
call to a hosted voice agent, answering the agent's complaint-desk function
calls from a local database.

Just type 'callbridge' to start the media stream server.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file overlaid on the built-in defaults")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress request logging")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(ComplaintCmd())
	rootCmd.AddCommand(CredentialCmd())
	rootCmd.AddCommand(DoctorCmd())
	rootCmd.AddCommand(VersionCmd())

	return rootCmd
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(embeddedConfig, cfgFile)
	if err != nil {
		return err
	}
	lvl := c.Logging.Level
	if verbose {
		lvl = "debug"
	}
	logging.Setup(os.Stderr, lvl, c.Logging.Color)
	ServerConfig = c
	return nil
}

// VersionCmd prints the build version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print the version",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("callbridge " + Version)
		},
	}
}
