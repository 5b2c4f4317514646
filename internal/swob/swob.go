// Package swob extracts labelled observation values from Environment
// Canada SWOB-ML (point-observation 2.0) documents.
package swob

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/43ravens/ECget/pkg/http"
	"github.com/43ravens/ECget/pkg/logger"
	"github.com/43ravens/ECget/pkg/metrics"
)

// Value is the attribute set found for one element label.
type Value struct {
	Value string
	UOM   string
}

// Data holds the values found for the requested labels and the observation
// timestamp from the identification elements.
type Data struct {
	Timestamp string
	Values    map[string]Value
}

// Get returns the value for label and whether it was present.
func (d Data) Get(label string) (Value, bool) {
	v, ok := d.Values[label]
	return v, ok
}

// Extract pulls the values for the requested label names, plus any element
// whose name matches one of the label patterns, out of a SWOB-ML document.
//
// A document without identification-elements or elements sections yields
// empty Data and a warning, matching the upstream feed's occasional
// malformed files; only unparseable XML is an error.
func Extract(doc []byte, log *logger.Logger, labels []string, labelPatterns ...string) (Data, error) {
	data := Data{Values: make(map[string]Value)}

	patterns := make([]*regexp.Regexp, 0, len(labelPatterns))
	for _, p := range labelPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return data, fmt.Errorf("invalid label pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	wanted := func(name string) bool {
		for _, l := range labels {
			if name == l {
				return true
			}
		}
		for _, re := range patterns {
			if re.MatchString(name) {
				return true
			}
		}
		return false
	}

	var (
		sawID, sawElements bool
		timestamp          string
	)

	dec := xml.NewDecoder(bytes.NewReader(doc))
	// Local names of the enclosing sections on the element stack;
	// "" means outside both.
	section := ""
	depth := 0
	sectionDepth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Data{Values: map[string]Value{}}, fmt.Errorf("parse SWOB-ML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "identification-elements":
				section = t.Name.Local
				sectionDepth = depth
				sawID = true
			case "elements":
				section = t.Name.Local
				sectionDepth = depth
				sawElements = true
			case "element":
				// Only direct children of a section count;
				// nested qualifier elements are skipped.
				if section == "" || depth != sectionDepth+1 {
					break
				}
				name, value, uom := elementAttrs(t)
				if section == "identification-elements" {
					if name == "date_tm" {
						timestamp = value
					}
				} else if wanted(name) {
					data.Values[name] = Value{Value: value, UOM: uom}
				}
			}
		case xml.EndElement:
			if depth == sectionDepth && t.Name.Local == section {
				section = ""
				sectionDepth = 0
			}
			depth--
		}
	}

	if !sawID {
		log.Warn("no identification-elements found in SWOB-ML document")
		return Data{Values: map[string]Value{}}, nil
	}
	if !sawElements {
		log.Warn("no elements found in SWOB-ML document")
		return Data{Values: map[string]Value{}}, nil
	}
	if len(data.Values) > 0 {
		data.Timestamp = timestamp
	}
	return data, nil
}

// elementAttrs returns the name, value, and uom attributes of a SWOB-ML
// element tag.
func elementAttrs(t xml.StartElement) (name, value, uom string) {
	for _, a := range t.Attr {
		switch a.Name.Local {
		case "name":
			name = a.Value
		case "value":
			value = a.Value
		case "uom":
			uom = a.Value
		}
	}
	return name, value, uom
}

// Fetcher downloads SWOB-ML documents named by Datamart notification
// messages.
type Fetcher struct {
	client *http.Client
	log    *logger.Logger
	rec    *metrics.Recorder
}

// NewFetcher creates a SWOB-ML document fetcher. The metrics recorder may
// be nil.
func NewFetcher(timeout time.Duration, log *logger.Logger, rec *metrics.Recorder) *Fetcher {
	return &Fetcher{
		client: http.NewClient(http.WithTimeout(timeout)),
		log:    log,
		rec:    rec,
	}
}

// Fetch gets the SWOB-ML document at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	began := time.Now()
	body, err := f.client.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("get SWOB-ML document: %w", err)
	}
	if f.rec != nil {
		f.rec.RecordFetch("datamart", time.Since(began).Seconds())
	}
	f.log.Debug("got SWOB-ML document",
		logger.String("url", url),
		logger.Int("bytes", len(body)))
	return body, nil
}
