package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/NordCoder/netpanel/internal/apiclient"
	config "github.com/NordCoder/netpanel/internal/config/panelctl"
	"github.com/NordCoder/netpanel/internal/credential"
	"github.com/NordCoder/netpanel/internal/obs"
	"github.com/NordCoder/netpanel/internal/panel"
	"github.com/NordCoder/netpanel/internal/tui"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// session is what every command shares: config, logger, API client and views.
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	creds  *credential.Store
	client *apiclient.Client

	badgeView *tui.Badge
	toast     *tui.Toaster
	badge     *panel.BadgeUpdater
}

func newSession(fs *pflag.FlagSet, local bool) (*session, error) {
	path, _ := fs.GetString("config")
	cfg, err := config.Load(path, fs)
	if err != nil && !local {
		return nil, err
	}
	if cfg == nil {
		cfg = &config.Config{Keyring: "netpanel", LogLevel: "warn"}
	}

	log, err := obs.NewLogger(cfg.AsLoggerConfig())
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: log, toast: tui.NewToaster(os.Stdout), badgeView: &tui.Badge{}}

	if s.creds, err = credential.Open(cfg.Keyring); err != nil {
		log.Warn("keyring unavailable", zap.Error(err))
	}
	if local {
		return s, nil
	}

	token := cfg.Token
	if token == "" && s.creds != nil {
		token, err = s.creds.Get(credential.TokenKey)
		if err != nil && !errors.Is(err, credential.ErrNotFound) {
			log.Warn("reading token", zap.Error(err))
		}
	}
	opts := []apiclient.Option{apiclient.WithLogger(log)}
	if token != "" {
		opts = append(opts, apiclient.WithBearerToken(token))
	}
	s.client = apiclient.New(cfg.BaseURL, opts...)
	s.badge = panel.NewBadgeUpdater(s.client, s.badgeView,
		panel.WithBadgeLimit(cfg.Limit),
		panel.WithBadgeLogger(log),
	)
	return s, nil
}

func (s *session) close() { _ = s.log.Sync() }

// withTimeout bounds one command by the configured timeout.
func (s *session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

// fetchCSRF asks the panel for the token unsafe requests must echo.
func (s *session) fetchCSRF(ctx context.Context) error {
	raw, err := s.client.Do(ctx, http.MethodGet, "/api/csrf-token", nil)
	if err != nil {
		return fmt.Errorf("fetch csrf token: %w", err)
	}
	body, err := apiclient.Decode[struct {
		Token string `json:"token"`
	}](raw)
	if err != nil {
		return err
	}
	s.client.SetCSRFToken(body.Token)
	return nil
}

// loadTitle starts fetching the panel title; the returned func waits for it
// and puts it on the badge. A failure only costs the title.
func (s *session) loadTitle(ctx context.Context) func() {
	f := s.client.Go(ctx, http.MethodGet, "/api/panel", nil)
	return func() {
		raw, err := f.Wait(ctx)
		if err != nil {
			s.log.Debug("panel info", zap.Error(err))
			return
		}
		info, err := apiclient.Decode[struct {
			Data struct {
				Title string `json:"title"`
			} `json:"data"`
		}](raw)
		if err != nil {
			s.log.Debug("panel info", zap.Error(err))
			return
		}
		s.badgeView.Title = info.Data.Title
	}
}
