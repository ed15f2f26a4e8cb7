package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/client"
	"github.com/mmynk/highlowbuffalo/internal/config"
	"github.com/mmynk/highlowbuffalo/internal/local"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/refdata"
	"github.com/mmynk/highlowbuffalo/internal/storage/kv"
	"github.com/mmynk/highlowbuffalo/internal/syncer"
	"github.com/mmynk/highlowbuffalo/pkg/logging"
)

// directory is the reference data both backends manage.
type directory interface {
	refdata.Source
	SaveSettings(ctx context.Context, settings models.UserSettings) (models.UserSettings, error)
	AddFriend(ctx context.Context, email string) (models.Friend, error)
	RemoveFriend(ctx context.Context, friendID string) error
}

// session is everything a command needs, opened once per invocation.
type session struct {
	cfg     config.ClientConfig
	logger  *slog.Logger
	viewer  string
	backend syncer.Backend
	dir     directory
	adapter *syncer.Adapter
	refs    *refdata.Cache

	// Exactly one of these is set.
	remote *client.Client
	local  *local.Backend
}

func loadConfig() (config.ClientConfig, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return config.ClientConfig{}, err
	}
	if serverURL != "" {
		cfg.Server = serverURL
	}
	if token != "" {
		cfg.Token = token
	}
	if backendName != "" {
		if backendName != config.BackendLocal && backendName != config.BackendRemote {
			return config.ClientConfig{}, fmt.Errorf("--backend must be %q or %q", config.BackendLocal, config.BackendRemote)
		}
		cfg.Backend = backendName
	}
	return cfg, nil
}

func newClient(cfg config.ClientConfig, logger *slog.Logger) *client.Client {
	return client.New(client.Config{
		BaseURL: cfg.Server,
		Token:   cfg.Token,
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
}

// openSession connects to the configured backend and loads reference data.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.LogLevel)
	s := &session{cfg: cfg, logger: logger}

	switch cfg.Backend {
	case config.BackendRemote:
		if cfg.Token == "" {
			return nil, apperr.Unauthorized("not logged in: run \"hlb login\" and set HLB_TOKEN")
		}
		s.remote = newClient(cfg, logger)
		me, err := s.remote.Me(ctx)
		if err != nil {
			return nil, err
		}
		s.viewer = me.ID
		s.backend, s.dir = s.remote, s.remote
	default:
		store, err := openKV(cfg)
		if err != nil {
			return nil, err
		}
		s.local = local.New(store, cfg.UserID)
		s.viewer = cfg.UserID
		s.backend, s.dir = s.local, s.local
	}

	s.adapter = syncer.New(s.backend, s.viewer, syncer.LogObserver{Logger: logger})
	s.refs = refdata.New(s.dir)
	if err := s.refs.Refresh(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func openKV(cfg config.ClientConfig) (kv.Store, error) {
	if cfg.RedisURL != "" {
		store, err := kv.NewRedisStore(cfg.RedisURL, "hlb:"+cfg.UserID+":")
		if err != nil {
			return nil, apperr.Transport(err, "could not reach redis at %s", cfg.RedisURL)
		}
		return store, nil
	}
	store, err := kv.NewSQLiteStore(cfg.LocalPath)
	if err != nil {
		return nil, apperr.Internal(err, "could not open local store at %s", cfg.LocalPath)
	}
	return store, nil
}

func (s *session) Close() {
	if s.local != nil {
		if err := s.local.Close(); err != nil {
			s.logger.Warn("Failed to close local store", "error", err)
		}
	}
}

// withSession opens a session for the command, runs fn and closes it.
func withSession(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, args, s)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
