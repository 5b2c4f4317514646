// Package sog renders date-stamped observation values as the fixed-column
// text lines that SOG forcing files are built from.
package sog

import (
	"fmt"
	"io"
	"time"
)

// Sample is one date- or hour-stamped scalar value.
type Sample struct {
	Time  time.Time
	Value float64
}

// WindSample is one hour-stamped pair of rotated wind components.
type WindSample struct {
	Time  time.Time
	Cross float64
	Along float64
}

// WriteDailyValues writes date-stamped values as "YYYY MM DD VALUE" lines
// with VALUE in scientific notation.
func WriteDailyValues(w io.Writer, samples []Sample) error {
	for _, s := range samples {
		if _, err := fmt.Fprintf(w, "%s %e\n", s.Time.Format("2006 01 02"), s.Value); err != nil {
			return err
		}
	}
	return nil
}

// WriteHourlyValues writes hour-stamped values as "YYYY MM DD HH VALUE"
// lines with VALUE to two decimal places.
func WriteHourlyValues(w io.Writer, samples []Sample) error {
	for _, s := range samples {
		if _, err := fmt.Fprintf(w, "%s %.2f\n", s.Time.Format("2006 01 02 15"), s.Value); err != nil {
			return err
		}
	}
	return nil
}

// WriteHourlyWindComponents writes hour-stamped wind components as
// "DD MM YYYY HH.H CROSS ALONG" lines, the hour as a decimal and the
// components to four decimal places.
func WriteHourlyWindComponents(w io.Writer, samples []WindSample) error {
	for _, s := range samples {
		if _, err := fmt.Fprintf(w, "%s %.1f %.4f %.4f\n",
			s.Time.Format("02 01 2006"), float64(s.Time.Hour()), s.Cross, s.Along); err != nil {
			return err
		}
	}
	return nil
}
