package river

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/43ravens/ECget/pkg/logger"
)

type fakeSource struct {
	readings []RawReading
	err      error

	stationID  string
	start, end time.Time
}

func (f *fakeSource) RawReadings(_ context.Context, stationID string, start, end time.Time) ([]RawReading, error) {
	f.stationID = stationID
	f.start = start
	f.end = end
	return f.readings, f.err
}

func TestFlowCommandEndToEnd(t *testing.T) {
	src := &fakeSource{readings: []RawReading{
		{"2014-01-21 19:02:00", "4200.0"},
		{"2014-01-21 19:07:00", "4400.0"},
	}}
	var out strings.Builder
	cmd := NewFlowCommand(src, &out, logger.NewNop())

	err := cmd.Run(context.Background(), []string{"-end-date", "2014-01-22", "08MF005", "2014-01-21"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	want := "2014 01 21 4.300000e+03\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
	if src.stationID != "08MF005" {
		t.Fatalf("station id %q", src.stationID)
	}
}

func TestFlowCommandDefaultsEndDateToStart(t *testing.T) {
	src := &fakeSource{readings: []RawReading{
		{"2014-01-22 06:00:00", "4000.0"},
	}}
	var out strings.Builder
	cmd := NewFlowCommand(src, &out, logger.NewNop())

	if err := cmd.Run(context.Background(), []string{"08MF005", "2014-01-22"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !src.end.Equal(src.start) {
		t.Fatalf("end %v should default to start %v", src.end, src.start)
	}
}

func TestFlowCommandInterpolatesGaps(t *testing.T) {
	src := &fakeSource{readings: []RawReading{
		{"2014-01-22 12:00:00", "4300.0"},
		{"2014-01-24 12:00:00", "4500.0"},
	}}
	var out strings.Builder
	cmd := NewFlowCommand(src, &out, logger.NewNop())

	err := cmd.Run(context.Background(), []string{"-end-date", "2014-01-24", "08MF005", "2014-01-22"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	want := "2014 01 22 4.300000e+03\n" +
		"2014 01 23 4.400000e+03\n" +
		"2014 01 24 4.500000e+03\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestFlowCommandFetchErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{err: boom}
	var out strings.Builder
	cmd := NewFlowCommand(src, &out, logger.NewNop())

	err := cmd.Run(context.Background(), []string{"08MF005", "2014-01-22"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error to propagate, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("no output expected on failure, got %q", out.String())
	}
}

func TestFlowCommandRejectsBadArgs(t *testing.T) {
	cmd := NewFlowCommand(&fakeSource{}, &strings.Builder{}, logger.NewNop())
	cases := [][]string{
		{},
		{"08MF005"},
		{"08MF005", "Jan 22 2014"},
		{"-end-date", "2014-01-20", "08MF005", "2014-01-22"},
	}
	for _, args := range cases {
		if err := cmd.Run(context.Background(), args); err == nil {
			t.Fatalf("expected error for args %v", args)
		}
	}
}
