package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NordCoder/netpanel/internal/credential"
	"github.com/NordCoder/netpanel/internal/panel"
	"github.com/NordCoder/netpanel/internal/tui"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var out io.Writer = os.Stdout

func runBadge(ctx context.Context, s *session, _ *pflag.FlagSet) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	title := s.loadTitle(ctx)
	err := s.badge.Refresh(ctx)
	title()
	fmt.Fprintln(out, s.badgeView.Render())
	return err
}

func runWatch(ctx context.Context, s *session, _ *pflag.FlagSet) error {
	draw := func() {
		rctx, cancel := s.withTimeout(ctx)
		defer cancel()
		// a failed refresh keeps the last list and marks it stale
		_ = s.badge.Refresh(rctx)
		fmt.Fprintln(out, s.badgeView.Render())
	}

	tctx, cancel := s.withTimeout(ctx)
	s.loadTitle(tctx)()
	cancel()

	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Schedule, draw); err != nil {
		return fmt.Errorf("schedule %q: %w", s.cfg.Schedule, err)
	}
	draw()
	c.Start()
	s.log.Info("watching",
		zap.String("base_url", s.client.BaseURL()),
		zap.String("schedule", s.cfg.Schedule),
	)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func runMark(ctx context.Context, s *session, fs *pflag.FlagSet) error {
	args := fs.Args()
	if len(args) == 0 {
		return errors.New("mark needs a notification id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("bad notification id %q", args[0])
	}
	cmd := panel.Command{TargetID: id}
	if len(args) > 1 {
		cmd.Action = panel.Action(strings.ToLower(args[1]))
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.fetchCSRF(ctx); err != nil {
		return err
	}

	page := &tui.Page{}
	btn := &tui.Button{Label: string(cmd.Action)}
	h := panel.NewActionHandler(s.client, page, s.toast, s.badge, s.log)
	done, err := h.Handle(ctx, cmd, btn)
	if err != nil {
		return err
	}
	res := <-done
	if res.State != panel.StateSucceeded {
		return res.Err
	}
	fmt.Fprintln(out, s.badgeView.Render())
	return nil
}

func createFlags(fs *pflag.FlagSet) {
	fs.String("title", "", "notification title")
	fs.String("body", "", "notification body")
	fs.Bool("sticky", false, "keep the notification after it is read")
}

func runCreate(ctx context.Context, s *session, fs *pflag.FlagSet) error {
	title, _ := fs.GetString("title")
	body, _ := fs.GetString("body")
	sticky, _ := fs.GetBool("sticky")

	fields := url.Values{}
	fields.Set("title", title)
	fields.Set("body", body)
	if sticky {
		fields.Set("sticky", "1")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.fetchCSRF(ctx); err != nil {
		return err
	}

	form := &tui.Form{}
	c := panel.NewCreator(s.client, &tui.Page{}, s.toast, form, s.badge, s.log)
	// nothing to reload on a terminal
	c.After = func(_ time.Duration, f func()) { f() }

	err := c.Submit(ctx, fields)
	var verr *panel.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(out, form.Render())
	}
	if err == nil {
		fmt.Fprintln(out, s.badgeView.Render())
	}
	return err
}

func loginFlags(fs *pflag.FlagSet) {
	fs.Bool("stdin", false, "read the token from stdin")
}

func runLogin(_ context.Context, s *session, fs *pflag.FlagSet) error {
	if s.creds == nil {
		return errors.New("no keyring available")
	}
	token, _ := fs.GetString("token")
	if fromStdin, _ := fs.GetBool("stdin"); fromStdin {
		b, err := io.ReadAll(io.LimitReader(os.Stdin, 64<<10))
		if err != nil {
			return err
		}
		token = strings.TrimSpace(string(b))
	}
	if token == "" {
		return errors.New("login needs --token or --stdin")
	}
	if err := s.creds.Set(credential.TokenKey, token); err != nil {
		return err
	}
	s.toast.Info("Token stored")
	return nil
}

func runLogout(_ context.Context, s *session, _ *pflag.FlagSet) error {
	if s.creds == nil {
		return errors.New("no keyring available")
	}
	if err := s.creds.Delete(credential.TokenKey); err != nil {
		return err
	}
	s.toast.Info("Token removed")
	return nil
}
