package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/43ravens/ECget/pkg/config"
	"github.com/43ravens/ECget/pkg/logger"
)

type fakeCommand struct {
	name string
	ran  []string
	err  error
}

func (f *fakeCommand) Name() string     { return f.name }
func (f *fakeCommand) Synopsis() string { return "a fake command" }

func (f *fakeCommand) Run(_ context.Context, args []string) error {
	f.ran = args
	return f.err
}

func newTestApp(t *testing.T, out *strings.Builder, commands ...Command) *App {
	t.Helper()
	cfg, err := config.Load("no-such-file.yaml")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	return New(cfg, logger.NewNop(), out, commands)
}

func TestRunDispatches(t *testing.T) {
	cmd := &fakeCommand{name: "river-flow"}
	app := newTestApp(t, &strings.Builder{}, cmd)

	err := app.Run(context.Background(), []string{"river-flow", "08MF005", "2014-01-22"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(cmd.ran) != 2 || cmd.ran[0] != "08MF005" {
		t.Fatalf("command got args %v", cmd.ran)
	}
}

func TestRunNoCommand(t *testing.T) {
	var out strings.Builder
	app := newTestApp(t, &out, &fakeCommand{name: "river-flow"})

	if err := app.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty command line")
	}
	if !strings.Contains(out.String(), "river-flow") {
		t.Fatalf("usage should list commands, got %q", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var out strings.Builder
	app := newTestApp(t, &out, &fakeCommand{name: "river-flow"})

	err := app.Run(context.Background(), []string{"bogus"})
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if !strings.Contains(out.String(), "usage:") {
		t.Fatalf("expected usage output, got %q", out.String())
	}
}

func TestNewPanicsOnDuplicateName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for duplicate command names")
		}
	}()
	newTestApp(t, &strings.Builder{},
		&fakeCommand{name: "river-flow"}, &fakeCommand{name: "river-flow"})
}
