package buoy

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteCSV writes one report as a CSV file line. Readings the buoy failed
// to report appear as n/a,n/a so the column layout stays stable.
func WriteCSV(w io.Writer, r Report) error {
	fields := []string{
		r.LastUpdate.Format("2006-01-02"),
		r.LastUpdate.Format("15:04:05"),
		r.LastUpdate.Format("MST"),
	}
	fields = appendScalar(fields, r.Turbidity)
	fields = appendScalar(fields, r.SpecificConductivity)
	fields = appendScalar(fields, r.WaterTemperature)
	fields = append(fields, formatValue(r.PH), r.PHScale)
	fields = appendScalar(fields, r.DissolvedOxygen)
	fields = appendScalar(fields, r.WaterDepth)
	fields = appendScalar(fields, r.StreamVelocity)
	fields = append(fields, r.StreamVelocityDirection)
	fields = appendScalar(fields, r.WindSpeed)
	fields = append(fields, r.WindDirection, r.WindBearing)
	fields = appendScalar(fields, r.AirTemperature)
	fields = appendScalar(fields, r.RelativeHumidity)
	fields = appendScalar(fields, r.AtmPressure)

	_, err := fmt.Fprintf(w, "%s\n", strings.Join(fields, ","))
	return err
}

func appendScalar(fields []string, s Scalar) []string {
	if !s.OK {
		return append(fields, "n/a", "n/a")
	}
	return append(fields, formatValue(s.Value), s.Units)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
