package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleProvider resolves addresses via the Google geocoding API.
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

type googleComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type googleGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		AddressComponents []googleComponent `json:"address_components"`
	} `json:"results"`
}

func (p *GoogleProvider) Geocode(ctx context.Context, address string) (*Result, error) {
	query := url.Values{}
	query.Set("address", address)
	query.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleGeocodeURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Status != "OK" || len(payload.Results) == 0 {
		return nil, nil
	}

	first := payload.Results[0]
	return &Result{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		Locality:         component(first.AddressComponents, "locality"),
		AdminAreaLevel1:  component(first.AddressComponents, "administrative_area_level_1"),
		Country:          component(first.AddressComponents, "country"),
		PostalCode:       component(first.AddressComponents, "postal_code"),
		FormattedAddress: first.FormattedAddress,
	}, nil
}

func component(comps []googleComponent, key string) string {
	for _, comp := range comps {
		for _, t := range comp.Types {
			if t == key {
				if comp.LongName != "" {
					return comp.LongName
				}
				return comp.ShortName
			}
		}
	}
	return ""
}
