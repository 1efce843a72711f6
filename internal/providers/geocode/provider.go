package geocode

import "context"

// Result is a resolved address. A nil Result with nil error means the
// provider is disabled or could not resolve the address.
type Result struct {
	Latitude         float64
	Longitude        float64
	Locality         string
	AdminAreaLevel1  string
	Country          string
	PostalCode       string
	FormattedAddress string
}

// Provider turns a free-form address into coordinates and locality parts.
type Provider interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

// DisabledProvider never resolves anything.
type DisabledProvider struct{}

func (DisabledProvider) Geocode(ctx context.Context, address string) (*Result, error) {
	return nil, nil
}
