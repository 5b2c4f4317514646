package river

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/43ravens/ECget/internal/sog"
	"github.com/43ravens/ECget/pkg/logger"
	"github.com/43ravens/ECget/pkg/util"
)

// DischargeSource yields the raw (timestamp, flow) rows for a station and
// date range, ordered by non-decreasing timestamp.
type DischargeSource interface {
	RawReadings(ctx context.Context, stationID string, start, end time.Time) ([]RawReading, error)
}

// FlowCommand gets river flow data and outputs daily average values for
// SOG.
type FlowCommand struct {
	src DischargeSource
	out io.Writer
	log *logger.Logger
}

// NewFlowCommand creates the river-flow sub-command.
func NewFlowCommand(src DischargeSource, out io.Writer, log *logger.Logger) *FlowCommand {
	return &FlowCommand{src: src, out: out, log: log}
}

func (c *FlowCommand) Name() string { return "river-flow" }

func (c *FlowCommand) Synopsis() string {
	return "Get EC river flow data and output daily average values for SOG"
}

// Run fetches, averages, gap-fills, and prints daily flows.
//
// Usage: ecget river-flow [-end-date YYYY-MM-DD] station_id start_date
func (c *FlowCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	endFlag := fs.String("end-date", "", "last date to get data for; YYYY-MM-DD; defaults to start date")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: ecget %s [-end-date YYYY-MM-DD] station_id start_date\n", c.Name())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("%s: expected station_id and start_date arguments", c.Name())
	}

	stationID := fs.Arg(0)
	startDate, err := util.ParseDate(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	endDate := startDate
	if *endFlag != "" {
		endDate, err = util.ParseDate(*endFlag)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
	}
	if endDate.Before(startDate) {
		return fmt.Errorf("end date %s is before start date %s", *endFlag, fs.Arg(1))
	}

	readings, err := c.src.RawReadings(ctx, stationID, startDate, endDate)
	if err != nil {
		return err
	}
	if len(readings) == 0 {
		return fmt.Errorf("no data for station %s between %s and %s",
			stationID, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	}

	avgs, err := AverageAndInterpolate(readings, endDate, c.log)
	if err != nil {
		return err
	}

	samples := make([]sog.Sample, len(avgs))
	for i, a := range avgs {
		samples[i] = sog.Sample{Time: a.Day, Value: a.Value}
	}
	return sog.WriteDailyValues(c.out, samples)
}
