package directions

import "context"

// Point is a latitude/longitude pair.
type Point struct {
	Lat float64
	Lng float64
}

// Route is a drivable route. Points are [lng, lat] pairs in drive order.
type Route struct {
	Points  [][]float64
	Miles   float64
	Minutes float64
}

// Provider computes a driving route from origin to destination through
// optimized waypoints. A nil Route with nil error means no route is
// available from the provider; callers fall back to local estimation.
type Provider interface {
	Directions(ctx context.Context, origin, destination Point, waypoints []Point) (*Route, error)
}

// DisabledProvider never returns a route.
type DisabledProvider struct{}

func (DisabledProvider) Directions(ctx context.Context, origin, destination Point, waypoints []Point) (*Route, error) {
	return nil, nil
}
