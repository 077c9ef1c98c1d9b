package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestSetupFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "warn", false)
	defer Setup(os.Stdout, "info", true)

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	With("conn", "abc").Error("failed", Err(errors.New("boom")))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "conn=abc")
	assert.Contains(t, out, "boom")
}

func TestDisable(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "debug", false)
	defer Setup(os.Stdout, "info", true)

	Disable()
	Infof("quiet")
	L().Info("also quiet")
	Enable()
	Debugf("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
