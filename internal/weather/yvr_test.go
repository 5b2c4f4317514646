package weather

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/43ravens/ECget/internal/swob"
	"github.com/43ravens/ECget/pkg/logger"
)

const airTempDoc = `<?xml version="1.0" encoding="UTF-8"?>
<om:ObservationCollection xmlns:om="http://www.opengis.net/om/1.0"
    xmlns:dset="http://dms.ec.gc.ca/schema/point-observation/2.0">
  <om:member>
    <om:Observation>
      <om:metadata>
        <dset:set>
          <dset:identification-elements>
            <dset:element name="date_tm" uom="datetime" value="2014-02-06T18:00:00Z"/>
          </dset:identification-elements>
        </dset:set>
      </om:metadata>
      <om:result>
        <dset:elements>
          <dset:element name="air_temp" uom="degC" value="5.2"/>
          <dset:element name="rel_hum" uom="%" value="83"/>
        </dset:elements>
      </om:result>
    </om:Observation>
  </om:member>
</om:ObservationCollection>`

func cloudDoc(elements string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<om:ObservationCollection xmlns:om="http://www.opengis.net/om/1.0"
    xmlns:dset="http://dms.ec.gc.ca/schema/point-observation/2.0">
  <om:member>
    <om:Observation>
      <om:metadata>
        <dset:set>
          <dset:identification-elements>
            <dset:element name="date_tm" uom="datetime" value="2014-02-06T18:00:00Z"/>
          </dset:identification-elements>
        </dset:set>
      </om:metadata>
      <om:result>
        <dset:elements>` + elements + `</dset:elements>
      </om:result>
    </om:Observation>
  </om:member>
</om:ObservationCollection>`
}

func TestScalarSamples(t *testing.T) {
	data := swob.Data{
		Timestamp: "2014-02-06T18:00:00Z",
		Values: map[string]swob.Value{
			"air_temp": {Value: "5.2", UOM: "degC"},
		},
	}

	samples, err := scalarSamples(data, "air_temp")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(samples))
	}
	if samples[0].Value != 5.2 {
		t.Fatalf("value %v, want 5.2", samples[0].Value)
	}
	// 18:00 UTC is 10:00 PST.
	if samples[0].Time.Hour() != 10 {
		t.Fatalf("unexpected timestamp %v", samples[0].Time)
	}
}

func TestScalarSamplesMissingLabel(t *testing.T) {
	data := swob.Data{
		Timestamp: "2014-02-06T18:00:00Z",
		Values:    map[string]swob.Value{},
	}
	samples, err := scalarSamples(data, "air_temp")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if samples != nil {
		t.Fatalf("expected no samples, got %v", samples)
	}
}

func TestScalarSamplesBadValue(t *testing.T) {
	data := swob.Data{
		Timestamp: "2014-02-06T18:00:00Z",
		Values: map[string]swob.Value{
			"air_temp": {Value: "MSNG", UOM: "degC"},
		},
	}
	if _, err := scalarSamples(data, "air_temp"); err == nil {
		t.Fatalf("expected error for unparseable value")
	}
}

func TestAirTemperatureProcessDoc(t *testing.T) {
	var out strings.Builder
	cmd := NewYVRAirTemperature(Config{}, nil, nil, &out, logger.NewNop())

	if err := cmd.processDoc(context.Background(), []byte(airTempDoc)); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	want := "2014 02 06 10 5.20\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestRelativeHumidityProcessDoc(t *testing.T) {
	var out strings.Builder
	cmd := NewYVRRelativeHumidity(Config{}, nil, nil, &out, logger.NewNop())

	if err := cmd.processDoc(context.Background(), []byte(airTempDoc)); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	want := "2014 02 06 10 83.00\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestCalcCloudFractionTotalAmount(t *testing.T) {
	doc := cloudDoc(`<dset:element name="tot_cld_amt" uom="code" value="88"/>`)
	data, err := swob.Extract([]byte(doc), logger.NewNop(),
		[]string{"tot_cld_amt"}, `cld_amt_code_[0-9]`)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	samples, err := calcCloudFraction(data)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(samples))
	}
	if math.Abs(samples[0].Value-8.8) > 1e-9 {
		t.Fatalf("value %v, want 8.8", samples[0].Value)
	}
}

func TestCalcCloudFractionLayerCodes(t *testing.T) {
	doc := cloudDoc(`<dset:element name="cld_amt_code_1" uom="code" value="33"/>
          <dset:element name="cld_amt_code_2" uom="code" value="35"/>`)
	data, err := swob.Extract([]byte(doc), logger.NewNop(),
		[]string{"tot_cld_amt"}, `cld_amt_code_[0-9]`)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	samples, err := calcCloudFraction(data)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	// codes 33 and 35 are 2.5 and 5 tenths
	if samples[0].Value != 7.5 {
		t.Fatalf("value %v, want 7.5", samples[0].Value)
	}
}

func TestCalcCloudFractionCappedAtTen(t *testing.T) {
	doc := cloudDoc(`<dset:element name="cld_amt_code_1" uom="code" value="39"/>
          <dset:element name="cld_amt_code_2" uom="code" value="39"/>`)
	data, err := swob.Extract([]byte(doc), logger.NewNop(),
		[]string{"tot_cld_amt"}, `cld_amt_code_[0-9]`)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	samples, err := calcCloudFraction(data)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if samples[0].Value != 10 {
		t.Fatalf("value %v, want 10", samples[0].Value)
	}
}

func TestCalcCloudFractionUnknownCode(t *testing.T) {
	data := swob.Data{
		Timestamp: "2014-02-06T18:00:00Z",
		Values: map[string]swob.Value{
			"cld_amt_code_1": {Value: "99", UOM: "code"},
		},
	}
	if _, err := calcCloudFraction(data); err == nil {
		t.Fatalf("expected error for unknown cloud amount code")
	}
}

func TestCalcCloudFractionEmptyData(t *testing.T) {
	samples, err := calcCloudFraction(swob.Data{})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if samples != nil {
		t.Fatalf("expected no samples, got %v", samples)
	}
}
