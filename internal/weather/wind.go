package weather

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/43ravens/ECget/internal/sog"
	"github.com/43ravens/ECget/internal/swob"
	"github.com/43ravens/ECget/pkg/logger"
	"github.com/43ravens/ECget/pkg/metrics"
	"github.com/43ravens/ECget/pkg/util"
)

const (
	windSpeedLabel = "avg_wnd_spd_10m_mt58-60"
	windDirLabel   = "avg_wnd_dir_10m_mt58-60"
)

// straitHeading is the along-strait axis of the Strait of Georgia,
// measured as a compass heading.
var straitHeading = 305 * math.Pi / 180

// WindCommand gets Sand Heads wind data via AMQP and outputs hourly
// cross- and along-strait component values for SOG.
type WindCommand struct {
	command
}

// NewSandHeadsWind creates the sandheads-wind sub-command.
func NewSandHeadsWind(cfg Config, fetcher *swob.Fetcher, rec *metrics.Recorder, out io.Writer, log *logger.Logger) *WindCommand {
	c := &WindCommand{command{
		name:        "sandheads-wind",
		synopsis:    "Get Sand Heads wind data via AMQP and output hourly component values for SOG",
		queuePrefix: "cmc.SoG.SandHeads",
		routingKey:  "exp.dd.notify.observations.swob-ml.*.CWVF",
		cfg:         cfg,
		fetcher:     fetcher,
		rec:         rec,
		out:         out,
		log:         log,
	}}
	c.process = c.processDoc
	return c
}

func (c *WindCommand) processDoc(_ context.Context, doc []byte) error {
	data, err := swob.Extract(doc, c.log, []string{windSpeedLabel, windDirLabel})
	if err != nil {
		return err
	}
	winds, err := calcHourlyWinds(data)
	if err != nil {
		return err
	}
	return sog.WriteHourlyWindComponents(c.out, winds)
}

// calcHourlyWinds converts an observed wind speed and direction into SOG's
// cross- and along-strait components.
//
// Speed arrives in km/h and is converted to m/s. The meteorological vector
// is rotated onto the strait axis, then both components are negated to
// resolve the atmosphere/ocean direction convention difference in favour
// of oceanography.
func calcHourlyWinds(data swob.Data) ([]sog.WindSample, error) {
	spd, ok := data.Get(windSpeedLabel)
	if !ok {
		return nil, fmt.Errorf("no %s value in SWOB-ML data", windSpeedLabel)
	}
	dir, ok := data.Get(windDirLabel)
	if !ok {
		return nil, fmt.Errorf("no %s value in SWOB-ML data", windDirLabel)
	}

	timestamp, err := time.Parse(time.RFC3339, data.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid observation timestamp %q: %w", data.Timestamp, err)
	}
	speed, err := strconv.ParseFloat(spd.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid wind speed %q: %w", spd.Value, err)
	}
	direction, err := strconv.ParseFloat(dir.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid wind direction %q: %w", dir.Value, err)
	}

	// km/h to m/s
	speed = speed * 1000 / (60 * 60)

	// Wind speed and direction to u and v components.
	radians := direction * math.Pi / 180
	uWind := speed * math.Sin(radians)
	vWind := speed * math.Cos(radians)

	// Rotate components to align u direction with the strait.
	crossWind := uWind*math.Cos(straitHeading) - vWind*math.Sin(straitHeading)
	alongWind := uWind*math.Sin(straitHeading) + vWind*math.Cos(straitHeading)

	return []sog.WindSample{{
		Time:  timestamp.In(util.PST),
		Cross: -crossWind,
		Along: -alongWind,
	}}, nil
}
