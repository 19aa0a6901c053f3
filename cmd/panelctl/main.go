// Command panelctl is a terminal client for the notification panel.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

type command struct {
	name  string
	usage string
	flags func(fs *pflag.FlagSet)
	run   func(ctx context.Context, s *session, fs *pflag.FlagSet) error
	// local commands do not talk to the API.
	local bool
}

var commands = []command{
	{name: "badge", usage: "show the unread count and the latest notifications", run: runBadge},
	{name: "watch", usage: "redraw the badge on a cron schedule", run: runWatch},
	{name: "mark", usage: "mark ID [read|unread|sticky|unsticky]", run: runMark},
	{name: "create", usage: "create a notification", flags: createFlags, run: runCreate},
	{name: "login", usage: "store an API token in the keyring", flags: loginFlags, run: runLogin, local: true},
	{name: "logout", usage: "remove the stored API token", run: runLogout, local: true},
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: panelctl <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", c.name, c.usage)
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == os.Args[1] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		usage()
		os.Exit(2)
	}

	fs := pflag.NewFlagSet("panelctl "+cmd.name, pflag.ContinueOnError)
	globalFlags(fs)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(os.Args[2:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(fs, cmd.local)
	if err != nil {
		fmt.Fprintln(os.Stderr, "panelctl:", err)
		os.Exit(1)
	}
	defer s.close()

	if err := cmd.run(ctx, s, fs); err != nil {
		fmt.Fprintln(os.Stderr, "panelctl:", err)
		os.Exit(1)
	}
}

func globalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file")
	fs.String("base-url", "", "panel base URL")
	fs.String("token", "", "API token, overrides the keyring")
	fs.Duration("timeout", 0, "request timeout")
	fs.Int("limit", 0, "notifications listed under the badge")
	fs.String("schedule", "", "cron spec for watch")
	fs.String("log-level", "", "log level")
}
