package river

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/43ravens/ECget/pkg/logger"
	"github.com/43ravens/ECget/pkg/util"
)

// RawReading is one observation row from the wateroffice data table,
// carried verbatim: a "YYYY-MM-DD HH:mm:ss" timestamp and a flow string.
type RawReading struct {
	Timestamp string
	Flow      string
}

// DailyAverage is the average discharge in m3/s for one calendar day.
type DailyAverage struct {
	Day   time.Time
	Value float64
}

// ParseError reports a flow value that could not be interpreted as a
// number.
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid flow value %q", e.Text)
}

// ErrNoReadings is returned when the averager is called with no readings,
// which callers are required to rule out before invoking it.
var ErrNoReadings = errors.New("no flow readings to average")

const timestampLayout = "2006-01-02 15:04:05"

// ParseFlow converts a flow string to a float64.
//
// Thousands-separator commas are stripped. Provisional values carry a
// trailing "*" marker; when the plain parse fails, one trailing marker is
// removed and the parse retried.
func ParseFlow(text string) (float64, error) {
	s := strings.ReplaceAll(text, ",", "")
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	if trimmed, found := strings.CutSuffix(s, "*"); found {
		if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return v, nil
		}
	}
	return 0, &ParseError{Text: text}
}

// readDatestamp truncates a raw timestamp to its calendar day.
func readDatestamp(timestamp string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", timestamp, err)
	}
	return util.TruncateDay(t), nil
}

// AverageDaily groups the readings into calendar-day averages, one entry
// per distinct day, in the order encountered. Readings whose day is after
// cutoffDay are excluded.
//
// Precondition: readings are in non-decreasing timestamp order and at least
// one reading falls on or before cutoffDay. The readings are not sorted
// here.
func AverageDaily(readings []RawReading, cutoffDay time.Time) ([]DailyAverage, error) {
	if len(readings) == 0 {
		return nil, ErrNoReadings
	}
	cutoff := util.TruncateDay(cutoffDay)

	groupDay, err := readDatestamp(readings[0].Timestamp)
	if err != nil {
		return nil, err
	}

	var (
		avgs  []DailyAverage
		sum   float64
		count int
	)
	for _, r := range readings {
		day, err := readDatestamp(r.Timestamp)
		if err != nil {
			return nil, err
		}
		if day.After(cutoff) {
			break
		}
		flow, err := ParseFlow(r.Flow)
		if err != nil {
			return nil, err
		}
		if day.Equal(groupDay) {
			sum += flow
			count++
		} else {
			avgs = append(avgs, DailyAverage{Day: groupDay, Value: sum / float64(count)})
			groupDay = day
			sum = flow
			count = 1
		}
	}
	if count == 0 {
		// Every reading was past the cutoff.
		return nil, ErrNoReadings
	}
	avgs = append(avgs, DailyAverage{Day: groupDay, Value: sum / float64(count)})
	return avgs, nil
}

// InterpolateMissing fills gaps of whole missing calendar days by linear
// interpolation between the neighbouring known daily averages. Each gap is
// filled from its own local neighbours, so separate gaps are independent.
// Running it on a gap-free list is a no-op.
func InterpolateMissing(avgs []DailyAverage, log *logger.Logger) []DailyAverage {
	for i := 0; i < len(avgs)-1; {
		delta := daysBetween(avgs[i].Day, avgs[i+1].Day)
		if delta <= 1 {
			i++
			continue
		}

		last, next := avgs[i].Value, avgs[i+1].Value
		gap := make([]DailyAverage, delta-1)
		for k := 1; k < delta; k++ {
			day := avgs[i].Day.AddDate(0, 0, k)
			gap[k-1] = DailyAverage{
				Day:   day,
				Value: last + float64(k)*(next-last)/float64(delta),
			}
			log.Debug("interpolated average flow",
				logger.String("day", day.Format("2006-01-02")))
		}
		avgs = append(avgs[:i+1], append(gap, avgs[i+1:]...)...)

		// Continue from the entry that closed this gap; the filled-in
		// days are never treated as new gap edges.
		i += delta
	}
	return avgs
}

// AverageAndInterpolate is the composed pipeline used by the river-flow
// command: daily averages with endDate as the inclusive cutoff, then gap
// interpolation whenever more than one day resulted.
func AverageAndInterpolate(readings []RawReading, endDate time.Time, log *logger.Logger) ([]DailyAverage, error) {
	avgs, err := AverageDaily(readings, endDate)
	if err != nil {
		return nil, err
	}
	if len(avgs) > 1 {
		avgs = InterpolateMissing(avgs, log)
	}
	return avgs, nil
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
