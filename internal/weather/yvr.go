package weather

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/43ravens/ECget/internal/sog"
	"github.com/43ravens/ECget/internal/swob"
	"github.com/43ravens/ECget/pkg/logger"
	"github.com/43ravens/ECget/pkg/metrics"
	"github.com/43ravens/ECget/pkg/util"
)

const yvrRoutingKey = "exp.dd.notify.observations.swob-ml.*.CYVR"

// ScalarCommand gets a single labelled YVR observation value via AMQP and
// outputs hourly values for SOG. An observation without the label yields
// no output line.
type ScalarCommand struct {
	command
	label string
}

func newYVRScalar(name, synopsis, queuePrefix, label string, cfg Config, fetcher *swob.Fetcher, rec *metrics.Recorder, out io.Writer, log *logger.Logger) *ScalarCommand {
	c := &ScalarCommand{
		command: command{
			name:        name,
			synopsis:    synopsis,
			queuePrefix: queuePrefix,
			routingKey:  yvrRoutingKey,
			cfg:         cfg,
			fetcher:     fetcher,
			rec:         rec,
			out:         out,
			log:         log,
		},
		label: label,
	}
	c.command.process = c.processDoc
	return c
}

// NewYVRAirTemperature creates the yvr-air-temperature sub-command.
func NewYVRAirTemperature(cfg Config, fetcher *swob.Fetcher, rec *metrics.Recorder, out io.Writer, log *logger.Logger) *ScalarCommand {
	return newYVRScalar(
		"yvr-air-temperature",
		"Get YVR air temperature data via AMQP and output hourly values for SOG",
		"cmc.SoG.YVR.air.temperature",
		"air_temp",
		cfg, fetcher, rec, out, log)
}

// NewYVRRelativeHumidity creates the yvr-relative-humidity sub-command.
func NewYVRRelativeHumidity(cfg Config, fetcher *swob.Fetcher, rec *metrics.Recorder, out io.Writer, log *logger.Logger) *ScalarCommand {
	return newYVRScalar(
		"yvr-relative-humidity",
		"Get YVR relative humidity data via AMQP and output hourly values for SOG",
		"cmc.SoG.YVR.relative.humidity",
		"rel_hum",
		cfg, fetcher, rec, out, log)
}

func (c *ScalarCommand) processDoc(_ context.Context, doc []byte) error {
	data, err := swob.Extract(doc, c.log, []string{c.label})
	if err != nil {
		return err
	}
	samples, err := scalarSamples(data, c.label)
	if err != nil {
		return err
	}
	return sog.WriteHourlyValues(c.out, samples)
}

// scalarSamples converts one labelled value to an hourly sample; no sample
// when the observation does not carry the label.
func scalarSamples(data swob.Data, label string) ([]sog.Sample, error) {
	v, ok := data.Get(label)
	if !ok {
		return nil, nil
	}
	timestamp, err := time.Parse(time.RFC3339, data.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid observation timestamp %q: %w", data.Timestamp, err)
	}
	value, err := strconv.ParseFloat(v.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", label, v.Value, err)
	}
	return []sog.Sample{{Time: timestamp.In(util.PST), Value: value}}, nil
}

// CloudFractionCommand gets YVR cloud fraction data via AMQP and outputs
// hourly values for SOG.
type CloudFractionCommand struct {
	command
}

// NewYVRCloudFraction creates the yvr-cloud-fraction sub-command.
func NewYVRCloudFraction(cfg Config, fetcher *swob.Fetcher, rec *metrics.Recorder, out io.Writer, log *logger.Logger) *CloudFractionCommand {
	c := &CloudFractionCommand{command{
		name:        "yvr-cloud-fraction",
		synopsis:    "Get YVR cloud fraction data via AMQP and output hourly values for SOG",
		queuePrefix: "cmc.SoG.YVR.clouds",
		routingKey:  yvrRoutingKey,
		cfg:         cfg,
		fetcher:     fetcher,
		rec:         rec,
		out:         out,
		log:         log,
	}}
	c.process = c.processDoc
	return c
}

// Mapping from EC cloud amount codes to 10ths of cloud fraction.
// Ref: SWOB-ML Product User Guide v6.0, pg 86.
var cloudFractionByCode = map[string]float64{
	"0":  0,
	"32": 1,
	"33": 2.5,
	"34": 4,
	"35": 5,
	"36": 6,
	"37": 7.5,
	"38": 9,
	"39": 10,
}

func (c *CloudFractionCommand) processDoc(_ context.Context, doc []byte) error {
	data, err := swob.Extract(doc, c.log,
		[]string{"tot_cld_amt"}, `cld_amt_code_[0-9]`)
	if err != nil {
		return err
	}
	samples, err := calcCloudFraction(data)
	if err != nil {
		return err
	}
	return sog.WriteHourlyValues(c.out, samples)
}

// calcCloudFraction prefers the total cloud amount when reported and
// otherwise sums the per-layer cloud amount codes, capped at 10 tenths.
func calcCloudFraction(data swob.Data) ([]sog.Sample, error) {
	if data.Timestamp == "" {
		return nil, nil
	}
	timestamp, err := time.Parse(time.RFC3339, data.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid observation timestamp %q: %w", data.Timestamp, err)
	}
	timestamp = timestamp.In(util.PST)

	if tot, ok := data.Get("tot_cld_amt"); ok {
		value, err := strconv.ParseFloat(tot.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tot_cld_amt value %q: %w", tot.Value, err)
		}
		return []sog.Sample{{Time: timestamp, Value: value / 10}}, nil
	}

	var layersTotal float64
	for label, v := range data.Values {
		if !strings.HasPrefix(label, "cld_amt_code_") {
			continue
		}
		amount, ok := cloudFractionByCode[v.Value]
		if !ok {
			return nil, fmt.Errorf("unknown cloud amount code %q for %s", v.Value, label)
		}
		layersTotal += amount
	}
	return []sog.Sample{{Time: timestamp, Value: min(layersTotal, 10)}}, nil
}
