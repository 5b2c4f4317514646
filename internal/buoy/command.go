package buoy

import (
	"context"
	"flag"
	"io"

	"github.com/43ravens/ECget/pkg/logger"
)

// Command gets Fraser River water quality buoy data and outputs it as a
// CSV file line.
type Command struct {
	client *Client
	out    io.Writer
	log    *logger.Logger
}

func NewCommand(client *Client, out io.Writer, log *logger.Logger) *Command {
	return &Command{client: client, out: out, log: log}
}

func (c *Command) Name() string { return "fraser-water-quality" }

func (c *Command) Synopsis() string {
	return "Get EC Fraser River water quality buoy data and output them as a CSV file line"
}

func (c *Command) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	report, err := c.client.Report(ctx)
	if err != nil {
		return err
	}
	return WriteCSV(c.out, report)
}
