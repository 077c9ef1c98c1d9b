package main

import (
	_ "embed"
	"os"

	"github.com/joho/godotenv"

	cli "github.com/neboloop/callbridge/cmd/callbridge"
)

//go:embed etc/callbridge.yaml
var embeddedConfig []byte

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	if err := cli.SetupRootCmd(embeddedConfig).Execute(); err != nil {
		os.Exit(1)
	}
}
