package seed

import (
	"context"
	"fmt"
	"math"

	catalogdomain "github.com/greensupply/greensupply/internal/catalog/domain"
	"github.com/greensupply/greensupply/internal/clock"
	regiondomain "github.com/greensupply/greensupply/internal/region/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	sfCenterLat   = 37.7749
	sfCenterLng   = -122.4194
	halfSpanMiles = 3.5
	blockMiles    = 2.0
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

// Seeder loads the product catalog and the SF region grid. Both loads are
// idempotent: existing rows short-circuit the pass.
type Seeder struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) *Seeder {
	return &Seeder{
		db:    p.DB,
		log:   p.Log.Named("seed"),
		clock: p.Clock,
	}
}

func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedProducts(ctx); err != nil {
		return err
	}
	return s.seedRegions(ctx)
}

func (s *Seeder) seedProducts(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&catalogdomain.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := Products(s.clock)
	if err := s.db.WithContext(ctx).Create(&products).Error; err != nil {
		return err
	}
	s.log.Info("seeded product catalog", zap.Int("products", len(products)))
	return nil
}

func (s *Seeder) seedRegions(ctx context.Context) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&regiondomain.Region{}).
		Where("code LIKE ?", "SF-%").
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	regions := Regions(s.clock)
	if err := s.db.WithContext(ctx).Create(&regions).Error; err != nil {
		return err
	}
	s.log.Info("seeded region grid", zap.Int("regions", len(regions)))
	return nil
}

// Products returns the fixed catalog of sustainable packaging products.
func Products(clk clock.Clock) []catalogdomain.Product {
	now := clk.Now()
	product := func(id int64, name, category, material string, certs []string, retail, bulk string, minBulk int, co2, plastic string) catalogdomain.Product {
		return catalogdomain.Product{
			ID:                      id,
			Name:                    name,
			Category:                category,
			Material:                material,
			Certifications:          datatypes.NewJSONSlice(certs),
			RetailUnitPrice:         decimal.RequireFromString(retail),
			BulkUnitPrice:           decimal.RequireFromString(bulk),
			MinBulkUnits:            minBulk,
			CO2PerUnitKg:            decimal.RequireFromString(co2),
			PlasticAvoidedPerUnitKg: decimal.RequireFromString(plastic),
			CreatedAt:               now,
		}
	}

	return []catalogdomain.Product{
		product(1, "9x9 Bagasse Clamshell", "clamshell", "bagasse", []string{"BPI", "ASTM D6400"}, "0.32", "0.24", 5000, "0.021", "0.012"),
		product(2, "12oz Compostable Cup", "cup", "paper", []string{"BPI"}, "0.19", "0.14", 8000, "0.014", "0.008"),
		product(3, "Cold Cup Lid (PLA)", "cup", "PLA", []string{"ASTM D6400"}, "0.09", "0.06", 10000, "0.006", "0.004"),
		product(4, "Compostable Fork", "utensil", "CPLA", []string{"BPI"}, "0.07", "0.045", 12000, "0.0035", "0.0028"),
		product(5, "Compostable Spoon", "utensil", "CPLA", []string{"BPI"}, "0.07", "0.045", 12000, "0.0035", "0.0028"),
		product(6, "Takeout Paper Bag", "bag", "kraft paper", []string{"FSC"}, "0.15", "0.10", 6000, "0.009", "0.007"),
		product(7, "8oz Soup Container", "container", "paper", []string{"BPI"}, "0.26", "0.20", 7000, "0.016", "0.010"),
		product(8, "Fiber Tray", "tray", "molded fiber", []string{"BPI", "FSC"}, "0.22", "0.16", 5500, "0.013", "0.009"),
		product(9, "Compostable Straw", "straw", "PLA", []string{"BPI"}, "0.045", "0.030", 20000, "0.002", "0.0015"),
		product(10, "Kraft Napkin", "napkin", "recycled paper", []string{"FSC"}, "0.018", "0.011", 30000, "0.0008", "0.0006"),
	}
}

// Regions returns the SF delivery grid: 2-mile blocks covering a 7-mile
// square centered on downtown San Francisco.
func Regions(clk clock.Clock) []regiondomain.Region {
	now := clk.Now()

	totalSpan := halfSpanMiles * 2
	cells := int((totalSpan + blockMiles - 0.0001) / blockMiles)

	minLat := sfCenterLat - milesToLat(halfSpanMiles)
	maxLat := sfCenterLat + milesToLat(halfSpanMiles)
	minLng := sfCenterLng - milesToLng(halfSpanMiles, sfCenterLat)
	maxLng := sfCenterLng + milesToLng(halfSpanMiles, sfCenterLat)

	latStep := (maxLat - minLat) / float64(cells)
	lngStep := (maxLng - minLng) / float64(cells)

	regions := make([]regiondomain.Region, 0, cells*cells)
	id := int64(0)
	for row := 1; row <= cells; row++ {
		for col := 1; col <= cells; col++ {
			id++
			regions = append(regions, regiondomain.Region{
				ID:        id,
				Code:      fmt.Sprintf("SF-%d-%d", row, col),
				Name:      fmt.Sprintf("SF Block %d-%d", row, col),
				RowIndex:  row,
				ColIndex:  col,
				MinLat:    minLat + float64(row-1)*latStep,
				MaxLat:    minLat + float64(row)*latStep,
				MinLng:    minLng + float64(col-1)*lngStep,
				MaxLng:    minLng + float64(col)*lngStep,
				CreatedAt: now,
			})
		}
	}
	return regions
}

func milesToLat(miles float64) float64 {
	return miles / 69.0
}

func milesToLng(miles, lat float64) float64 {
	return miles / (69.172 * math.Max(math.Cos(lat*math.Pi/180), 0.2))
}
