package swob

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/43ravens/ECget/pkg/logger"
)

const windDoc = `<?xml version="1.0" encoding="UTF-8"?>
<om:ObservationCollection xmlns:om="http://www.opengis.net/om/1.0"
    xmlns:dset="http://dms.ec.gc.ca/schema/point-observation/2.0">
  <om:member>
    <om:Observation>
      <om:metadata>
        <dset:set>
          <dset:identification-elements>
            <dset:element name="stn_nam" uom="unitless" value="Sand Heads"/>
            <dset:element name="date_tm" uom="datetime" value="2014-02-06T18:00:00.000Z"/>
          </dset:identification-elements>
        </dset:set>
      </om:metadata>
      <om:result>
        <dset:elements>
          <dset:element name="avg_wnd_spd_10m_mt58-60" uom="km/h" value="21.6">
            <dset:element name="qa_summary" uom="unitless" value="100"/>
          </dset:element>
          <dset:element name="avg_wnd_dir_10m_mt58-60" uom="deg" value="305.0"/>
          <dset:element name="air_temp" uom="degC" value="5.2"/>
        </dset:elements>
      </om:result>
    </om:Observation>
  </om:member>
</om:ObservationCollection>`

const cloudDoc = `<?xml version="1.0" encoding="UTF-8"?>
<om:ObservationCollection xmlns:om="http://www.opengis.net/om/1.0"
    xmlns:dset="http://dms.ec.gc.ca/schema/point-observation/2.0">
  <om:member>
    <om:Observation>
      <om:metadata>
        <dset:set>
          <dset:identification-elements>
            <dset:element name="date_tm" uom="datetime" value="2014-02-06T18:00:00.000Z"/>
          </dset:identification-elements>
        </dset:set>
      </om:metadata>
      <om:result>
        <dset:elements>
          <dset:element name="cld_amt_code_1" uom="code" value="33"/>
          <dset:element name="cld_amt_code_2" uom="code" value="35"/>
        </dset:elements>
      </om:result>
    </om:Observation>
  </om:member>
</om:ObservationCollection>`

func TestExtractLabels(t *testing.T) {
	data, err := Extract([]byte(windDoc), logger.NewNop(),
		[]string{"avg_wnd_spd_10m_mt58-60", "avg_wnd_dir_10m_mt58-60"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if data.Timestamp != "2014-02-06T18:00:00.000Z" {
		t.Fatalf("timestamp %q", data.Timestamp)
	}
	spd, ok := data.Get("avg_wnd_spd_10m_mt58-60")
	if !ok || spd.Value != "21.6" || spd.UOM != "km/h" {
		t.Fatalf("unexpected speed %+v ok=%v", spd, ok)
	}
	dir, ok := data.Get("avg_wnd_dir_10m_mt58-60")
	if !ok || dir.Value != "305.0" {
		t.Fatalf("unexpected direction %+v ok=%v", dir, ok)
	}
	if _, ok := data.Get("air_temp"); ok {
		t.Fatalf("air_temp was not requested and must not be extracted")
	}
}

func TestExtractSkipsNestedQualifierElements(t *testing.T) {
	data, err := Extract([]byte(windDoc), logger.NewNop(), []string{"qa_summary"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(data.Values) != 0 {
		t.Fatalf("nested elements must be ignored, got %v", data.Values)
	}
}

func TestExtractLabelPatterns(t *testing.T) {
	data, err := Extract([]byte(cloudDoc), logger.NewNop(),
		[]string{"tot_cld_amt"}, `cld_amt_code_[0-9]`)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(data.Values) != 2 {
		t.Fatalf("expected 2 layer codes, got %v", data.Values)
	}
	if v, _ := data.Get("cld_amt_code_1"); v.Value != "33" {
		t.Fatalf("cld_amt_code_1 = %+v", v)
	}
}

func TestExtractMissingSections(t *testing.T) {
	doc := `<root><other/></root>`
	data, err := Extract([]byte(doc), logger.NewNop(), []string{"air_temp"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(data.Values) != 0 || data.Timestamp != "" {
		t.Fatalf("expected empty data, got %+v", data)
	}
}

func TestExtractMalformedXML(t *testing.T) {
	if _, err := Extract([]byte("<unclosed"), logger.NewNop(), nil); err == nil {
		t.Fatalf("expected error for malformed XML")
	}
}

func TestFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(windDoc))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, logger.NewNop(), nil)
	body, err := f.Fetch(context.Background(), srv.URL+"/observations/swob-ml/latest.xml")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if string(body) != windDoc {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestFetcherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, logger.NewNop(), nil)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for 404")
	}
}
