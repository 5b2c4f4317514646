// Package buoy scrapes the Environment Canada Fraser River water quality
// buoy page and formats the readings as a CSV file line.
package buoy

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/43ravens/ECget/pkg/http"
	"github.com/43ravens/ECget/pkg/logger"
	"github.com/43ravens/ECget/pkg/metrics"
)

// pacific is the buoy's local timezone; the page reports wall-clock times
// without an offset.
var pacific = func() *time.Location {
	loc, err := time.LoadLocation("Canada/Pacific")
	if err != nil {
		return time.FixedZone("PST", -8*60*60)
	}
	return loc
}()

const lastUpdateLayout = "2006-01-02 15:04:05"

// Scalar is one value/units pair from the buoy page. OK is false when the
// instrument reported no usable value.
type Scalar struct {
	Value float64
	Units string
	OK    bool
}

// Report holds one scrape of the buoy page.
type Report struct {
	LastUpdate time.Time

	Turbidity            Scalar
	SpecificConductivity Scalar
	WaterTemperature     Scalar
	DissolvedOxygen      Scalar
	WaterDepth           Scalar
	WindSpeed            Scalar
	AirTemperature       Scalar
	RelativeHumidity     Scalar
	AtmPressure          Scalar

	PH      float64
	PHScale string

	StreamVelocity          Scalar
	StreamVelocityDirection string

	WindDirection string
	WindBearing   string
}

// Config carries the buoy page location and request timeout.
type Config struct {
	DataURL string
	Timeout time.Duration
}

// Client gets and parses the buoy page. The metrics recorder may be nil.
type Client struct {
	cfg Config
	log *logger.Logger
	rec *metrics.Recorder
}

func NewClient(cfg Config, log *logger.Logger, rec *metrics.Recorder) *Client {
	return &Client{cfg: cfg, log: log, rec: rec}
}

// Report gets the buoy page and returns the parsed readings.
func (c *Client) Report(ctx context.Context) (Report, error) {
	client := http.NewClient(http.WithTimeout(c.cfg.Timeout))
	began := time.Now()
	body, err := client.Get(ctx, c.cfg.DataURL, nil)
	if err != nil {
		return Report{}, fmt.Errorf("get buoy page: %w", err)
	}
	if c.rec != nil {
		c.rec.RecordFetch("buoy", time.Since(began).Seconds())
	}
	return parseReport(body, c.log)
}

// span IDs of the simple value/units readings on the page. The turbidity
// ID typo is the page's, not ours.
var scalarIDs = []struct {
	name string
	id   string
	dst  func(*Report) *Scalar
	// Readings from instruments that go dark for long stretches do not
	// warrant a warning per scrape.
	quiet bool
}{
	{"turbidity", "MainContent_turbidty", func(r *Report) *Scalar { return &r.Turbidity }, false},
	{"specific conductivity", "MainContent_specCond", func(r *Report) *Scalar { return &r.SpecificConductivity }, false},
	{"water temperature", "MainContent_waterTemp", func(r *Report) *Scalar { return &r.WaterTemperature }, false},
	{"dissolved oxygen", "MainContent_DOper", func(r *Report) *Scalar { return &r.DissolvedOxygen }, false},
	{"water depth", "MainContent_waterDepth", func(r *Report) *Scalar { return &r.WaterDepth }, true},
	{"wind speed", "MainContent_windSpeed", func(r *Report) *Scalar { return &r.WindSpeed }, true},
	{"air temperature", "MainContent_airTemp", func(r *Report) *Scalar { return &r.AirTemperature }, false},
	{"relative humidity", "MainContent_relHumid", func(r *Report) *Scalar { return &r.RelativeHumidity }, false},
	{"atmospheric pressure", "MainContent_pressure", func(r *Report) *Scalar { return &r.AtmPressure }, false},
}

func parseReport(page []byte, log *logger.Logger) (Report, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return Report{}, fmt.Errorf("parse buoy page: %w", err)
	}

	var r Report

	updated := spanText(doc, "mainContentTime_LastUpdateTime")
	r.LastUpdate, err = time.ParseInLocation(lastUpdateLayout, strings.TrimSpace(updated), pacific)
	if err != nil {
		return Report{}, fmt.Errorf("invalid buoy last update time %q: %w", updated, err)
	}
	log.Debug("got Fraser River water quality data",
		logger.String("recorded", r.LastUpdate.Format(time.RFC3339)))

	for _, s := range scalarIDs {
		sel := doc.Find("span#" + s.id)
		raw := strings.TrimSpace(sel.Parent().Text())
		scalar, ok := parseScalar(raw)
		if !ok && !s.quiet {
			log.Warn("invalid buoy data",
				logger.String("quantity", s.name),
				logger.String("text", raw))
		}
		*s.dst(&r) = scalar
	}

	phText := strings.TrimSpace(spanText(doc, "MainContent_pH"))
	r.PH, err = strconv.ParseFloat(phText, 64)
	if err != nil {
		return Report{}, fmt.Errorf("invalid buoy pH %q: %w", phText, err)
	}
	r.PHScale = "NIST"

	parts := strings.Fields(spanText(doc, "MainContent_waterVelocity"))
	if len(parts) >= 2 {
		if v, err := strconv.ParseFloat(parts[0], 64); err == nil {
			r.StreamVelocity = Scalar{Value: v, Units: parts[1], OK: true}
			r.StreamVelocityDirection = strings.ToLower(strings.Join(parts[2:], " "))
		}
	}
	if !r.StreamVelocity.OK {
		r.StreamVelocityDirection = "n/a"
	}

	parts = strings.Fields(spanText(doc, "MainContent_windDirection"))
	if len(parts) >= 2 {
		r.WindDirection = strings.ToLower(strings.Join(parts[:2], " "))
		r.WindBearing = strings.Trim(parts[len(parts)-1], "()")
	} else {
		r.WindDirection, r.WindBearing = "n/a", "n/a"
	}

	return r, nil
}

func spanText(doc *goquery.Document, id string) string {
	return doc.Find("span#" + id).Text()
}

// parseScalar expects "value units" text around a reading's span.
func parseScalar(text string) (Scalar, bool) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return Scalar{}, false
	}
	v, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Scalar{}, false
	}
	return Scalar{Value: v, Units: parts[1], OK: true}, true
}
