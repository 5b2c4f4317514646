// Package wateroffice fetches river discharge data from the Environment
// Canada wateroffice.ec.gc.ca site.
package wateroffice

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/43ravens/ECget/internal/river"
	"github.com/43ravens/ECget/pkg/http"
	"github.com/43ravens/ECget/pkg/logger"
	"github.com/43ravens/ECget/pkg/metrics"
)

// Parameter ids understood by the graph page.
var paramIDs = map[string]int{
	"discharge": 6,
}

// Config points the client at the wateroffice site.
type Config struct {
	DisclaimerURL   string
	DataURL         string
	DisclaimerDelay time.Duration
	Timeout         time.Duration
}

// Client scrapes the wateroffice text-mode data table for a station and
// date range.
type Client struct {
	cfg   Config
	param int
	log   *logger.Logger
	rec   *metrics.Recorder
}

// NewClient creates a discharge data client. The metrics recorder may be
// nil.
func NewClient(cfg Config, log *logger.Logger, rec *metrics.Recorder) *Client {
	return &Client{cfg: cfg, param: paramIDs["discharge"], log: log, rec: rec}
}

// RawReadings gets the (timestamp, flow) rows for stationID over
// [start, end], both dates inclusive. The site's end-date parameters are
// exclusive of the final day, so one day is added to the request; the
// caller's averaging cutoff keeps the result inclusive of end.
//
// The disclaimer-acceptance session cookie lives in an HTTP client scoped
// to this one call.
func (c *Client) RawReadings(ctx context.Context, stationID string, start, end time.Time) ([]river.RawReading, error) {
	began := time.Now()

	client := http.NewClient(
		http.WithTimeout(c.cfg.Timeout),
		http.WithCookieJar(),
	)

	if _, err := client.PostForm(ctx, c.cfg.DisclaimerURL, url.Values{
		"disclaimer_action": {"I Agree"},
	}); err != nil {
		return nil, fmt.Errorf("accept wateroffice disclaimer: %w", err)
	}

	// The site rejects data requests that follow the disclaimer
	// acceptance too quickly.
	select {
	case <-time.After(c.cfg.DisclaimerDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	lastDate := end.AddDate(0, 0, 1)
	body, err := client.Get(ctx, c.cfg.DataURL, url.Values{
		"mode": {"text"},
		"prm1": {strconv.Itoa(c.param)},
		"stn":  {stationID},
		"syr":  {strconv.Itoa(start.Year())},
		"smo":  {strconv.Itoa(int(start.Month()))},
		"sday": {strconv.Itoa(start.Day())},
		"eyr":  {strconv.Itoa(lastDate.Year())},
		"emo":  {strconv.Itoa(int(lastDate.Month()))},
		"eday": {strconv.Itoa(lastDate.Day())},
	})
	if err != nil {
		return nil, fmt.Errorf("get wateroffice data: %w", err)
	}

	readings, err := parseDataTable(body)
	if err != nil {
		return nil, err
	}

	if c.rec != nil {
		c.rec.RecordFetch("wateroffice", time.Since(began).Seconds())
	}
	c.log.Debug("got river discharge data",
		logger.String("station_id", stationID),
		logger.String("start_date", start.Format("2006-01-02")),
		logger.String("end_date", end.Format("2006-01-02")),
		logger.Int("rows", len(readings)))
	return readings, nil
}

// parseDataTable extracts (timestamp, flow) cell pairs from the page's
// data table.
func parseDataTable(page []byte) ([]river.RawReading, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse wateroffice page: %w", err)
	}

	table := doc.Find("table#dataTable")
	if table.Length() == 0 {
		return nil, fmt.Errorf("no data table found in wateroffice page")
	}

	var readings []river.RawReading
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		readings = append(readings, river.RawReading{
			Timestamp: strings.TrimSpace(cells.Eq(0).Text()),
			Flow:      strings.TrimSpace(cells.Eq(1).Text()),
		})
	})
	return readings, nil
}
