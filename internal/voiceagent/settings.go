package voiceagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/neboloop/callbridge/internal/logging"
)

// SettingsLoader caches the settings document sent to the agent when a
// session opens, reloading it when the file changes on disk.
type SettingsLoader struct {
	path string

	mu      sync.RWMutex
	current []byte

	watcher   *fsnotify.Watcher
	cancelCtx context.CancelFunc
}

// NewSettingsLoader creates a loader for the JSON file at path.
func NewSettingsLoader(path string) *SettingsLoader {
	return &SettingsLoader{path: path}
}

// Path returns the settings file location.
func (l *SettingsLoader) Path() string {
	return l.path
}

// Load reads and validates the file, replacing the cached document.
func (l *SettingsLoader) Load() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("read agent settings: %w", err)
	}
	doc, err := ValidateSettings(data)
	if err != nil {
		return fmt.Errorf("%s: %w", l.path, err)
	}
	l.mu.Lock()
	l.current = doc
	l.mu.Unlock()
	return nil
}

// Document returns the cached settings, loading them on first use.
func (l *SettingsLoader) Document() ([]byte, error) {
	l.mu.RLock()
	doc := l.current
	l.mu.RUnlock()
	if doc != nil {
		return doc, nil
	}
	if err := l.Load(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current, nil
}

// ValidateSettings checks that data is a single JSON object and returns it compacted.
func ValidateSettings(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("agent settings must be a JSON object")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, fmt.Errorf("agent settings: %w", err)
	}
	return buf.Bytes(), nil
}

// Watch reloads the document whenever the file is written or replaced.
// A document that fails to parse leaves the previous one in place.
func (l *SettingsLoader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	l.watcher = watcher

	ctx, cancel := context.WithCancel(ctx)
	l.cancelCtx = cancel

	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		cancel()
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(l.path), err)
	}

	go l.watchLoop(ctx)
	return nil
}

func (l *SettingsLoader) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			l.handleEvent(event)
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			logging.Errorf("[settings] Watch error: %v", err)
		}
	}
}

func (l *SettingsLoader) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(l.path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if err := l.Load(); err != nil {
		logging.Warnf("[settings] Keeping previous agent settings: %v", err)
		return
	}
	logging.Infof("[settings] Reloaded agent settings from %s", l.path)
}

// Stop stops watching for changes
func (l *SettingsLoader) Stop() {
	if l.cancelCtx != nil {
		l.cancelCtx()
	}
	if l.watcher != nil {
		l.watcher.Close()
	}
}
