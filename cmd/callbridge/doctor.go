package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/neboloop/callbridge/internal/config"
	"github.com/neboloop/callbridge/internal/db/migrations"
	"github.com/neboloop/callbridge/internal/keyring"
	"github.com/neboloop/callbridge/internal/voiceagent"
)

// DoctorCmd creates the doctor command for health checks
func DoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and diagnose issues",
		Long: `Run diagnostics on this callbridge installation.

Checks:
  - Configuration file
  - Voice agent API key
  - Agent settings document
  - Database and migrations`,
		// The config is checked here rather than required up front.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			results := runDoctor(cmd.Context())
			if printResults(cmd.OutOrStdout(), results) > 0 {
				return fmt.Errorf("doctor found problems")
			}
			return nil
		},
	}
}

type checkResult struct {
	name    string
	status  string // "ok", "warn", "error"
	message string
}

func runDoctor(ctx context.Context) []checkResult {
	c, err := config.Load(embeddedConfig, cfgFile)
	if err != nil {
		return []checkResult{{name: "Config", status: "error", message: err.Error()}}
	}
	ServerConfig = c

	results := []checkResult{checkConfig(c)}
	results = append(results, checkCredential(c))
	results = append(results, checkSettings(c))
	results = append(results, checkDatabase(ctx)...)
	return results
}

func checkConfig(c *config.Config) checkResult {
	u, err := url.Parse(c.Agent.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return checkResult{name: "Config", status: "error", message: fmt.Sprintf("agent.url %q is not a ws:// or wss:// URL", c.Agent.URL)}
	}
	src := "built-in defaults"
	if cfgFile != "" {
		src = cfgFile
	}
	return checkResult{name: "Config", status: "ok", message: fmt.Sprintf("%s (listen %s%s, frame %d bytes)",
		src, c.Server.Addr(), c.Server.StreamPath, c.Audio.Threshold())}
}

func checkCredential(c *config.Config) checkResult {
	if _, err := c.Agent.ResolveAPIKey(keyring.Get); err != nil {
		return checkResult{name: "API Key", status: "error", message: err.Error()}
	}
	return checkResult{name: "API Key", status: "ok", message: "found in " + credentialSource(c.Agent)}
}

func checkSettings(c *config.Config) checkResult {
	loader := voiceagent.NewSettingsLoader(c.Agent.SettingsFile)
	if err := loader.Load(); err != nil {
		return checkResult{name: "Agent Settings", status: "error", message: err.Error()}
	}
	doc, _ := loader.Document()
	return checkResult{name: "Agent Settings", status: "ok", message: fmt.Sprintf("%s (%d bytes)", loader.Path(), len(doc))}
}

func checkDatabase(ctx context.Context) []checkResult {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return []checkResult{{name: "Database", status: "error", message: err.Error()}}
	}
	defer store.Close()

	results := []checkResult{{name: "Database", status: "ok", message: string(store.Dialect())}}
	statuses, err := migrations.Status(ctx, store.DB(), string(store.Dialect()))
	if err != nil {
		return append(results, checkResult{name: "Migrations", status: "warn", message: err.Error()})
	}
	pending := 0
	for _, s := range statuses {
		if s.AppliedAt.IsZero() {
			pending++
		}
	}
	if pending > 0 {
		return append(results, checkResult{name: "Migrations", status: "warn", message: fmt.Sprintf("%d pending", pending)})
	}
	return append(results, checkResult{name: "Migrations", status: "ok", message: fmt.Sprintf("%d applied", len(statuses))})
}

// printResults writes the report and returns the number of errors.
func printResults(w io.Writer, results []checkResult) int {
	okCount, warnCount, errorCount := 0, 0, 0
	for _, r := range results {
		switch r.status {
		case "ok":
			fmt.Fprintf(w, "\033[32m✓\033[0m %s: %s\n", r.name, r.message)
			okCount++
		case "warn":
			fmt.Fprintf(w, "\033[33m⚠\033[0m %s: %s\n", r.name, r.message)
			warnCount++
		case "error":
			fmt.Fprintf(w, "\033[31m✗\033[0m %s: %s\n", r.name, r.message)
			errorCount++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d passed", okCount)
	if warnCount > 0 {
		fmt.Fprintf(w, ", %d warnings", warnCount)
	}
	if errorCount > 0 {
		fmt.Fprintf(w, ", %d errors", errorCount)
	}
	fmt.Fprintln(w)
	return errorCount
}
