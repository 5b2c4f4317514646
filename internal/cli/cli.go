// Package cli dispatches the ecget sub-commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/43ravens/ECget/pkg/config"
	"github.com/43ravens/ECget/pkg/logger"
)

// Command is one ecget sub-command.
type Command interface {
	Name() string
	Synopsis() string
	Run(ctx context.Context, args []string) error
}

// App routes a command line to the named sub-command.
type App struct {
	cfg      *config.Config
	log      *logger.Logger
	out      io.Writer
	commands map[string]Command
}

// New creates the app from its sub-commands. Duplicate command names are a
// wiring mistake and panic.
func New(cfg *config.Config, log *logger.Logger, out io.Writer, commands []Command) *App {
	app := &App{
		cfg:      cfg,
		log:      log,
		out:      out,
		commands: make(map[string]Command, len(commands)),
	}
	for _, c := range commands {
		if _, dup := app.commands[c.Name()]; dup {
			panic(fmt.Sprintf("duplicate command name %q", c.Name()))
		}
		app.commands[c.Name()] = c
	}
	return app
}

// Run dispatches args to the named sub-command. With no args, or an unknown
// command name, it prints the command list and returns an error.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return fmt.Errorf("no command given")
	}
	cmd, ok := a.commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("unknown command %q", args[0])
	}

	if a.cfg.Metrics.Enabled {
		go a.serveMetrics()
	}

	a.log.Debug("running command", logger.String("command", cmd.Name()))
	return cmd.Run(ctx, args[1:])
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "usage: ecget <command> [args]")
	fmt.Fprintln(a.out, "commands:")
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.out, "  %-24s %s\n", name, a.commands[name].Synopsis())
	}
}

// serveMetrics exposes the Prometheus registry for the long-running AMQP
// consumer commands. The listener dies with the process.
func (a *App) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.log.Info("serving metrics", logger.String("addr", a.cfg.Metrics.Addr))
	if err := http.ListenAndServe(a.cfg.Metrics.Addr, mux); err != nil {
		a.log.Error("metrics listener failed", logger.Error(err))
	}
}
