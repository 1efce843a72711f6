package seed

import (
	"context"

	businessdomain "github.com/greensupply/greensupply/internal/business/domain"
	catalogdomain "github.com/greensupply/greensupply/internal/catalog/domain"
	groupdomain "github.com/greensupply/greensupply/internal/group/domain"
	regiondomain "github.com/greensupply/greensupply/internal/region/domain"
	supplierdomain "github.com/greensupply/greensupply/internal/supplier/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Provide(New),
	fx.Invoke(Run),
)

// Run migrates the schema and loads the baseline data before the server
// starts accepting traffic.
func Run(lc fx.Lifecycle, db *gorm.DB, seeder *Seeder) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := Migrate(db); err != nil {
				return err
			}
			return seeder.Run(ctx)
		},
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalogdomain.Product{},
		&regiondomain.Region{},
		&businessdomain.Business{},
		&supplierdomain.SupplierProduct{},
		&groupdomain.BuyingGroup{},
		&groupdomain.GroupCommitment{},
		&groupdomain.SupplierConfirmedOrder{},
	)
}
