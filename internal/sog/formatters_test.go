package sog

import (
	"strings"
	"testing"
	"time"

	"github.com/43ravens/ECget/pkg/util"
)

func TestWriteDailyValues(t *testing.T) {
	var b strings.Builder
	samples := []Sample{
		{time.Date(2014, 1, 22, 0, 0, 0, 0, time.UTC), 1234.567},
	}
	if err := WriteDailyValues(&b, samples); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	want := "2014 01 22 1.234567e+03\n"
	if b.String() != want {
		t.Fatalf("got %q, want %q", b.String(), want)
	}
}

func TestWriteHourlyValues(t *testing.T) {
	cases := []struct {
		sample Sample
		want   string
	}{
		{Sample{time.Date(2014, 2, 9, 0, 0, 0, 0, util.PST), 5}, "2014 02 09 00 5.00\n"},
		{Sample{time.Date(2014, 2, 9, 23, 0, 0, 0, util.PST), -2.142}, "2014 02 09 23 -2.14\n"},
	}
	for _, c := range cases {
		var b strings.Builder
		if err := WriteHourlyValues(&b, []Sample{c.sample}); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if b.String() != c.want {
			t.Fatalf("got %q, want %q", b.String(), c.want)
		}
	}
}

func TestWriteHourlyWindComponents(t *testing.T) {
	cases := []struct {
		sample WindSample
		want   string
	}{
		{
			WindSample{time.Date(2014, 2, 6, 0, 0, 0, 0, util.PST), -0.847842, 8.066742},
			"06 02 2014 0.0 -0.8478 8.0667\n",
		},
		{
			WindSample{time.Date(2014, 2, 6, 23, 0, 0, 0, util.PST), -0.8, 8.06},
			"06 02 2014 23.0 -0.8000 8.0600\n",
		},
	}
	for _, c := range cases {
		var b strings.Builder
		if err := WriteHourlyWindComponents(&b, []WindSample{c.sample}); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if b.String() != c.want {
			t.Fatalf("got %q, want %q", b.String(), c.want)
		}
	}
}
