// Package weather adapts the mid-range forecast backend. The response
// shape is backend-defined and has shipped under three different nesting
// conventions over time, so the payload is probed defensively instead of
// bound to one schema.
package weather

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strconv"
	"strings"

	"haru-assistant/internal/envelope"
	"haru-assistant/internal/gateway"
)

// Forecast is the shared result shape: outlook text plus the day's
// temperature band, as carried by the backend's wfSv/taMin/taMax fields.
type Forecast struct {
	Region  string
	Outlook string
	TempMin float64
	TempMax float64
}

// flexNumber tolerates the backend emitting temperatures as numbers or
// quoted strings, depending on its serialization layer.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = flexNumber(v)
	return nil
}

type record struct {
	WfSv  string     `json:"wfSv"`
	TaMin flexNumber `json:"taMin"`
	TaMax flexNumber `json:"taMax"`
}

type Service struct {
	client *gateway.Client
}

func NewService(client *gateway.Client) *Service {
	return &Service{client: client}
}

// MidRange fetches the mid-range forecast for a region. Read path: any
// failure, including an unrecognized payload shape, yields (zero, false)
// with the cause logged.
func (s *Service) MidRange(ctx context.Context, region string) (Forecast, bool) {
	region = strings.TrimSpace(region)
	if region == "" {
		region = "서울"
	}
	q := url.Values{"region": {region}, "dataType": {"JSON"}}
	raw, _, err := s.client.GetJSON(ctx, "/weather/midterm", q)
	if err != nil {
		log.Printf("weather lookup for %q failed: %v", region, err)
		return Forecast{}, false
	}
	env, err := envelope.Normalize(raw)
	if err != nil || !env.OK {
		log.Printf("weather lookup for %q returned non-success: code=%d err=%v", region, env.Code, err)
		return Forecast{}, false
	}

	rec, ok := probe(env.Payload)
	if !ok {
		log.Printf("weather payload for %q matched none of the known shapes", region)
		return Forecast{}, false
	}
	return Forecast{
		Region:  region,
		Outlook: rec.WfSv,
		TempMin: float64(rec.TaMin),
		TempMax: float64(rec.TaMax),
	}, true
}

// probe tries the three nesting conventions the backend has used:
//  1. single object wrapping response.body.items.item
//  2. single object wrapping item directly
//  3. a flattened array of forecast records
//
// The first convention that yields a record wins; the others are never
// required.
func probe(p envelope.Payload) (record, bool) {
	switch p.Kind {
	case envelope.Single:
		var deep struct {
			Response struct {
				Body struct {
					Items struct {
						Item []record `json:"item"`
					} `json:"items"`
				} `json:"body"`
			} `json:"response"`
		}
		if err := json.Unmarshal(p.One, &deep); err == nil && len(deep.Response.Body.Items.Item) > 0 {
			return deep.Response.Body.Items.Item[0], true
		}

		var mid struct {
			Item []record `json:"item"`
		}
		if err := json.Unmarshal(p.One, &mid); err == nil && len(mid.Item) > 0 {
			return mid.Item[0], true
		}

		// a bare record at the top level also counts as the second shape
		var flat record
		if err := json.Unmarshal(p.One, &flat); err == nil && flat.WfSv != "" {
			return flat, true
		}
	case envelope.Many:
		for _, item := range p.Items {
			var rec record
			if err := json.Unmarshal(item, &rec); err == nil && rec.WfSv != "" {
				return rec, true
			}
		}
	}
	return record{}, false
}
