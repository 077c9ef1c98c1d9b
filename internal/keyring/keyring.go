package keyring

import (
	"fmt"
	"os"
	"strings"

	zkr "github.com/zalando/go-keyring"
)

const (
	serviceName = "callbridge"
	accountName = "agent-api-key"
)

// DisabledEnv turns keychain access off for headless hosts.
const DisabledEnv = "CALLBRIDGE_KEYRING_DISABLED"

// Get retrieves the agent API key from the OS keychain.
func Get() (string, error) {
	if disabled() {
		return "", fmt.Errorf("keychain disabled by %s", DisabledEnv)
	}
	key, err := zkr.Get(serviceName, accountName)
	if err != nil {
		return "", fmt.Errorf("keychain get: %w", err)
	}
	return key, nil
}

// Set stores the agent API key in the OS keychain.
func Set(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("refusing to store an empty key")
	}
	return zkr.Set(serviceName, accountName, key)
}

// Delete removes the agent API key from the OS keychain.
func Delete() error {
	return zkr.Delete(serviceName, accountName)
}

// Available returns true if the OS keychain is functional.
// Returns false if CALLBRIDGE_KEYRING_DISABLED=1 is set.
// Otherwise probes the keychain with a test write/read/delete cycle.
func Available() bool {
	if disabled() {
		return false
	}
	testService := "callbridge-keyring-probe"
	testAccount := "probe"
	if err := zkr.Set(testService, testAccount, "ok"); err != nil {
		return false
	}
	_ = zkr.Delete(testService, testAccount)
	return true
}

func disabled() bool {
	return os.Getenv(DisabledEnv) == "1"
}
