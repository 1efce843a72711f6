package route

import (
	"context"
	"math"

	"github.com/greensupply/greensupply/internal/config"
	"github.com/greensupply/greensupply/internal/providers/directions"
	"go.uber.org/zap"
)

const earthRadiusMiles = 3958.8

// Plan is an ordered delivery route. Points are [lng, lat] pairs starting
// at the supplier.
type Plan struct {
	Points       [][]float64
	TotalMiles   float64
	TotalMinutes float64
}

// Planner turns a supplier point and destination points into a drivable
// route. The directions provider is tried first; the haversine fallback
// guarantees a result with zero network connectivity.
type Planner struct {
	log      *zap.Logger
	cfg      config.RouteConfig
	provider directions.Provider
}

func NewPlanner(log *zap.Logger, cfg config.Config, provider directions.Provider) *Planner {
	return &Planner{
		log:      log.Named("route.planner"),
		cfg:      cfg.Route,
		provider: provider,
	}
}

func (p *Planner) Compute(ctx context.Context, supplier directions.Point, stops []directions.Point) Plan {
	if len(stops) == 0 {
		return Plan{
			Points:       [][]float64{{supplier.Lng, supplier.Lat}},
			TotalMiles:   0,
			TotalMinutes: 0,
		}
	}

	if plan := p.fromProvider(ctx, supplier, stops); plan != nil {
		return *plan
	}
	return p.fallback(supplier, stops)
}

// fromProvider tries each stop as the final destination, bounded to the
// first MaxCandidates, letting the provider optimize intermediate
// waypoints, and keeps the candidate with the lowest drive time.
func (p *Planner) fromProvider(ctx context.Context, supplier directions.Point, stops []directions.Point) *Plan {
	if len(stops) == 1 {
		route, err := p.provider.Directions(ctx, supplier, stops[0], nil)
		if err != nil || route == nil {
			return nil
		}
		return &Plan{Points: route.Points, TotalMiles: route.Miles, TotalMinutes: route.Minutes}
	}

	candidates := len(stops)
	if candidates > p.cfg.MaxCandidates {
		candidates = p.cfg.MaxCandidates
	}

	var best *Plan
	for i := 0; i < candidates; i++ {
		waypoints := make([]directions.Point, 0, len(stops)-1)
		for j, stop := range stops {
			if j != i {
				waypoints = append(waypoints, stop)
			}
		}
		route, err := p.provider.Directions(ctx, supplier, stops[i], waypoints)
		if err != nil {
			p.log.Debug("directions request failed", zap.Error(err))
			continue
		}
		if route == nil {
			continue
		}
		if best == nil || route.Minutes < best.TotalMinutes {
			best = &Plan{Points: route.Points, TotalMiles: route.Miles, TotalMinutes: route.Minutes}
		}
	}
	return best
}

// fallback orders stops greedily by nearest neighbor from the supplier and
// estimates time from average speed plus a per-stop buffer.
func (p *Planner) fallback(supplier directions.Point, stops []directions.Point) Plan {
	ordered := make([]directions.Point, 0, len(stops)+1)
	ordered = append(ordered, supplier)

	remaining := make([]directions.Point, len(stops))
	copy(remaining, stops)
	current := supplier
	for len(remaining) > 0 {
		nearest := 0
		nearestMiles := haversineMiles(current, remaining[0])
		for i := 1; i < len(remaining); i++ {
			if miles := haversineMiles(current, remaining[i]); miles < nearestMiles {
				nearest = i
				nearestMiles = miles
			}
		}
		current = remaining[nearest]
		ordered = append(ordered, current)
		remaining = append(remaining[:nearest], remaining[nearest+1:]...)
	}

	points := make([][]float64, 0, len(ordered))
	totalMiles := 0.0
	for i, point := range ordered {
		points = append(points, []float64{point.Lng, point.Lat})
		if i > 0 {
			totalMiles += haversineMiles(ordered[i-1], point)
		}
	}

	baseMinutes := totalMiles / p.cfg.AvgSpeedMPH * 60
	bufferMinutes := float64(len(stops)-1) * p.cfg.StopBufferMinutes
	if bufferMinutes < 0 {
		bufferMinutes = 0
	}
	return Plan{
		Points:       points,
		TotalMiles:   totalMiles,
		TotalMinutes: baseMinutes + bufferMinutes,
	}
}

func haversineMiles(a, b directions.Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lng1 := a.Lng * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lng2 := b.Lng * math.Pi / 180

	dlat := lat2 - lat1
	dlng := lng2 - lng1
	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlng/2), 2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}
