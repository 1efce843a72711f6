package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	googleDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"
	metersPerMile       = 1609.344
)

// GoogleProvider fetches optimized driving routes from the Google
// directions API.
type GoogleProvider struct {
	apiKey string
	client *http.Client
}

func NewGoogle(apiKey string, timeout time.Duration) *GoogleProvider {
	return &GoogleProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

type googleDirectionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance struct {
				Value float64 `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"`
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

func (p *GoogleProvider) Directions(ctx context.Context, origin, destination Point, waypoints []Point) (*Route, error) {
	query := url.Values{}
	query.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	query.Set("destination", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	query.Set("mode", "driving")
	query.Set("key", p.apiKey)
	if len(waypoints) > 0 {
		parts := make([]string, 0, len(waypoints))
		for _, w := range waypoints {
			parts = append(parts, fmt.Sprintf("%f,%f", w.Lat, w.Lng))
		}
		query.Set("waypoints", "optimize:true|"+strings.Join(parts, "|"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleDirectionsURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload googleDirectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Status != "OK" || len(payload.Routes) == 0 {
		return nil, nil
	}

	route := payload.Routes[0]
	if route.OverviewPolyline.Points == "" {
		return nil, nil
	}

	var totalMeters, totalSeconds float64
	for _, leg := range route.Legs {
		totalMeters += leg.Distance.Value
		totalSeconds += leg.Duration.Value
	}

	return &Route{
		Points:  DecodePolyline(route.OverviewPolyline.Points),
		Miles:   totalMeters / metersPerMile,
		Minutes: totalSeconds / 60.0,
	}, nil
}
