package svc

import (
	"context"
	"fmt"

	"github.com/neboloop/callbridge/internal/config"
	"github.com/neboloop/callbridge/internal/conversation"
	"github.com/neboloop/callbridge/internal/crashlog"
	"github.com/neboloop/callbridge/internal/db"
	"github.com/neboloop/callbridge/internal/keyring"
	"github.com/neboloop/callbridge/internal/logging"
	"github.com/neboloop/callbridge/internal/retention"
	"github.com/neboloop/callbridge/internal/sessions"
	"github.com/neboloop/callbridge/internal/tools"
	"github.com/neboloop/callbridge/internal/voice"
	"github.com/neboloop/callbridge/internal/voiceagent"
)

// ServiceContext holds the process-wide collaborators every call shares.
type ServiceContext struct {
	Config  *config.Config
	Version string

	DB        *db.Store
	Tools     *tools.Dispatcher
	Buffers   *conversation.Registry
	Tracker   *sessions.Tracker
	Settings  *voiceagent.SettingsLoader
	Dialer    voiceagent.Dialer
	Retention *retention.Scheduler // nil when retention is disabled

	// Keychain is consulted last when resolving the agent API key.
	Keychain func() (string, error)

	ownsDB bool
}

// NewServiceContext opens the store and builds the shared collaborators. Pass
// a *db.Store to reuse an existing connection; it is then not closed by Close.
func NewServiceContext(ctx context.Context, c *config.Config, database ...*db.Store) (*ServiceContext, error) {
	svc := &ServiceContext{
		Config:   c,
		Version:  "dev",
		Buffers:  conversation.NewRegistry(),
		Tracker:  sessions.NewTracker(),
		Settings: voiceagent.NewSettingsLoader(c.Agent.SettingsFile),
		Dialer: voiceagent.Dialer{
			URL:              c.Agent.URL,
			HandshakeTimeout: c.Agent.HandshakeTimeout,
		},
		Keychain: keyring.Get,
	}

	if len(database) > 0 && database[0] != nil {
		svc.DB = database[0]
	} else {
		store, err := db.Open(ctx, c.Database.Driver, c.Database.Path, c.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		svc.DB = store
		svc.ownsDB = true
	}
	svc.Tools = tools.NewDispatcher(svc.DB)
	crashlog.Init(svc.DB)

	sched, err := retention.New(svc.DB, c.Retention)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.Retention = sched

	return svc, nil
}

// APIKey resolves the agent credential (env, then config, then keychain).
func (svc *ServiceContext) APIKey() (string, error) {
	return svc.Config.Agent.ResolveAPIKey(svc.Keychain)
}

// VoiceHandler builds the dependencies of the media stream endpoint.
func (svc *ServiceContext) VoiceHandler() voice.HandlerDeps {
	return voice.HandlerDeps{
		Session: voice.Deps{
			Tools:       svc.Tools,
			Buffers:     svc.Buffers,
			Transcripts: svc.DB,
		},
		Options:  voice.OptionsFrom(svc.Config),
		Dialer:   svc.Dialer,
		Settings: svc.Settings,
		APIKey:   svc.APIKey,
		Tracker:  svc.Tracker,
	}
}

// Start begins the background work: settings hot reload and transcript retention.
func (svc *ServiceContext) Start(ctx context.Context) error {
	if err := svc.Settings.Load(); err != nil {
		return fmt.Errorf("agent settings: %w", err)
	}
	if err := svc.Settings.Watch(ctx); err != nil {
		logging.Warnf("settings hot reload disabled: %v", err)
	}
	if svc.Retention != nil {
		if err := svc.Retention.Start(); err != nil {
			return fmt.Errorf("transcript retention: %w", err)
		}
	}
	return nil
}

// Close stops background work and releases the database.
func (svc *ServiceContext) Close() {
	if svc.Retention != nil {
		svc.Retention.Stop()
	}
	if svc.Settings != nil {
		svc.Settings.Stop()
	}
	if svc.DB != nil && svc.ownsDB {
		crashlog.Init(nil)
		if err := svc.DB.Close(); err != nil {
			logging.Errorf("close database: %v", err)
		}
	}
}
