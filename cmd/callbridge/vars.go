package cli

import (
	"github.com/neboloop/callbridge/internal/config"
)

// Shared CLI flags (used across multiple command files)
var (
	cfgFile string
	verbose bool
	quiet   bool
)

// Version is set at build time with -ldflags "-X .../cmd/callbridge.Version=...".
var Version = "dev"

// ServerConfig holds the loaded configuration (set before any command runs)
var ServerConfig *config.Config

// embeddedConfig holds the defaults compiled into the binary (set by main)
var embeddedConfig []byte
