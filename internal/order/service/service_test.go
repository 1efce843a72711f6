package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	businessdomain "github.com/greensupply/greensupply/internal/business/domain"
	catalogdomain "github.com/greensupply/greensupply/internal/catalog/domain"
	"github.com/greensupply/greensupply/internal/clock"
	groupdomain "github.com/greensupply/greensupply/internal/group/domain"
	grouprepo "github.com/greensupply/greensupply/internal/group/repository"
	"github.com/greensupply/greensupply/internal/order/domain"
	"github.com/greensupply/greensupply/internal/order/repository"
	supplierdomain "github.com/greensupply/greensupply/internal/supplier/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type orderFixture struct {
	db   *gorm.DB
	svc  domain.Service
	node *snowflake.Node
	clk  *clock.FakeClock
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&businessdomain.Business{},
		&catalogdomain.Product{},
		&supplierdomain.SupplierProduct{},
		&groupdomain.BuyingGroup{},
		&groupdomain.GroupCommitment{},
		&groupdomain.SupplierConfirmedOrder{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Clock:     clk,
		Repo:      repository.Provide(),
		GroupRepo: grouprepo.Provide(),
	})
	return &orderFixture{db: db, svc: svc, node: node, clk: clk}
}

func (f *orderFixture) seedBusiness(t *testing.T, name, address string) *businessdomain.Business {
	t.Helper()
	business := businessdomain.Business{
		ID:           f.node.Generate().Int64(),
		Name:         &name,
		Address:      &address,
		BusinessType: "cafe",
		AccountType:  "business",
		Neighborhood: "soma",
		CreatedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.db.Create(&business).Error)
	return &business
}

type seededOrder struct {
	order    groupdomain.SupplierConfirmedOrder
	group    groupdomain.BuyingGroup
	supplier int64
}

// seedOrder builds a confirmed group with two commitments (600 and 400
// units) plus its order row. lotName, when set, becomes a supplier product
// referenced by the order.
func (f *orderFixture) seedOrder(t *testing.T, lotName string, estimatedEnd *time.Time, members ...*businessdomain.Business) seededOrder {
	t.Helper()

	supplierName := "EcoPack SF"
	supplier := businessdomain.Business{
		ID:           f.node.Generate().Int64(),
		Name:         &supplierName,
		BusinessType: "supplier",
		AccountType:  "supplier",
		Neighborhood: "soma",
		CreatedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.db.Create(&supplier).Error)

	product := catalogdomain.Product{
		ID:                      f.node.Generate().Int64(),
		Name:                    "9x9 Bagasse Clamshell",
		Category:                "clamshell",
		Material:                "bagasse",
		RetailUnitPrice:         decimal.RequireFromString("0.32"),
		BulkUnitPrice:           decimal.RequireFromString("0.24"),
		MinBulkUnits:            5000,
		CO2PerUnitKg:            decimal.RequireFromString("0.021"),
		PlasticAvoidedPerUnitKg: decimal.RequireFromString("0.012"),
		CreatedAt:               time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.db.Create(&product).Error)

	var lotID *int64
	if lotName != "" {
		lot := supplierdomain.SupplierProduct{
			ID:                 f.node.Generate().Int64(),
			SupplierBusinessID: supplier.ID,
			Name:               lotName,
			Category:           "clamshell",
			Material:           "bagasse",
			AvailableUnits:     5000,
			UnitPrice:          decimal.RequireFromString("0.22"),
			MinOrderUnits:      1,
			Status:             supplierdomain.StatusActive,
			CreatedAt:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, f.db.Create(&lot).Error)
		lotID = &lot.ID
	}

	confirmedAt := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	group := groupdomain.BuyingGroup{
		ID:                    f.node.Generate().Int64(),
		ProductID:             product.ID,
		CreatedByBusinessID:   members[0].ID,
		SupplierBusinessID:    &supplier.ID,
		SupplierProductID:     lotID,
		RegionID:              7,
		TargetUnits:           1000,
		MinBusinessesRequired: 2,
		Status:                groupdomain.StatusConfirmed,
		ConfirmedAt:           &confirmedAt,
		CreatedAt:             time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.db.Create(&group).Error)

	units := []int{600, 400}
	for i, member := range members {
		require.NoError(t, f.db.Create(&groupdomain.GroupCommitment{
			ID:         f.node.Generate().Int64(),
			GroupID:    group.ID,
			BusinessID: member.ID,
			Units:      units[i],
			CreatedAt:  group.CreatedAt.Add(time.Duration(i) * time.Hour),
		}).Error)
	}

	scheduledStart := time.Date(2026, 3, 6, 16, 0, 0, 0, time.UTC)
	miles, minutes := 12.4, 46.0
	order := groupdomain.SupplierConfirmedOrder{
		ID:                 f.node.Generate().Int64(),
		SupplierBusinessID: supplier.ID,
		SupplierProductID:  lotID,
		GroupID:            group.ID,
		TotalUnits:         1000,
		BusinessCount:      len(members),
		Status:             groupdomain.StatusConfirmed,
		ScheduledStartAt:   &scheduledStart,
		EstimatedEndAt:     estimatedEnd,
		RouteTotalMiles:    &miles,
		RouteTotalMinutes:  &minutes,
		RoutePoints:        datatypes.NewJSONSlice([][]float64{{-122.4193, 37.7793}, {-122.4190, 37.7850}}),
		CreatedAt:          confirmedAt,
	}
	require.NoError(t, f.db.Create(&order).Error)

	return seededOrder{order: order, group: group, supplier: supplier.ID}
}

func TestListSupplierOrdersFiltersBySupplier(t *testing.T) {
	f := newOrderFixture(t)
	cafe := f.seedBusiness(t, "Mission Cafe", "123 Valencia St")
	deli := f.seedBusiness(t, "Hayes Deli", "456 Hayes St")

	end := time.Date(2026, 3, 20, 18, 0, 0, 0, time.UTC)
	first := f.seedOrder(t, "Bagasse Clamshell Lot", &end, cafe, deli)
	f.seedOrder(t, "", &end, cafe, deli)

	views, err := f.svc.ListSupplierOrders(context.Background(), snowflake.ID(first.supplier).String())
	require.NoError(t, err)
	require.Len(t, views, 1)

	view := views[0]
	assert.Equal(t, snowflake.ID(first.order.ID).String(), view.ID)
	assert.Equal(t, 1000, view.TotalUnits)
	assert.Equal(t, 2, view.BusinessCount)
	assert.Equal(t, groupdomain.StatusConfirmed, view.Status)

	// The supplier's lot name wins over the catalog product name.
	require.NotNil(t, view.ProductName)
	assert.Equal(t, "Bagasse Clamshell Lot", *view.ProductName)

	groupID := snowflake.ID(first.group.ID).String()
	assert.Equal(t, "Bagasse Clamshell Lot - "+groupID[:8], view.GroupDisplayName)

	require.NotNil(t, view.RouteTotalMiles)
	assert.Equal(t, 12.4, *view.RouteTotalMiles)
	require.Len(t, view.RoutePoints, 2)
}

func TestListSupplierOrdersUnfilteredReturnsAll(t *testing.T) {
	f := newOrderFixture(t)
	cafe := f.seedBusiness(t, "Mission Cafe", "123 Valencia St")
	deli := f.seedBusiness(t, "Hayes Deli", "456 Hayes St")

	end := time.Date(2026, 3, 20, 18, 0, 0, 0, time.UTC)
	f.seedOrder(t, "", &end, cafe, deli)
	f.seedOrder(t, "", &end, cafe, deli)

	views, err := f.svc.ListSupplierOrders(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestListSupplierOrdersInvalidIDIsEmpty(t *testing.T) {
	f := newOrderFixture(t)

	views, err := f.svc.ListSupplierOrders(context.Background(), "not-an-id")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestListBusinessOrdersIncludesParticipants(t *testing.T) {
	f := newOrderFixture(t)
	cafe := f.seedBusiness(t, "Mission Cafe", "123 Valencia St")
	deli := f.seedBusiness(t, "Hayes Deli", "456 Hayes St")

	end := time.Date(2026, 3, 20, 18, 0, 0, 0, time.UTC)
	f.seedOrder(t, "", &end, cafe, deli)

	views, err := f.svc.ListBusinessOrders(context.Background(), snowflake.ID(deli.ID).String())
	require.NoError(t, err)
	require.Len(t, views, 1)

	view := views[0]
	assert.Equal(t, 400, view.YourUnits)
	assert.Equal(t, 1000, view.TotalUnits)
	require.NotNil(t, view.ProductName)
	assert.Equal(t, "9x9 Bagasse Clamshell", *view.ProductName)

	require.Len(t, view.Participants, 2)
	require.NotNil(t, view.Participants[0].BusinessName)
	assert.Equal(t, "Mission Cafe", *view.Participants[0].BusinessName)
	assert.Equal(t, 600, view.Participants[0].Units)
	require.NotNil(t, view.Participants[1].BusinessAddress)
	assert.Equal(t, "456 Hayes St", *view.Participants[1].BusinessAddress)
}

func TestListBusinessOrdersReconcilesPastDeliveries(t *testing.T) {
	f := newOrderFixture(t)
	cafe := f.seedBusiness(t, "Mission Cafe", "123 Valencia St")
	deli := f.seedBusiness(t, "Hayes Deli", "456 Hayes St")

	// Delivery window ended before the fixture clock's now.
	past := time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC)
	seeded := f.seedOrder(t, "", &past, cafe, deli)

	views, err := f.svc.ListBusinessOrders(context.Background(), snowflake.ID(cafe.ID).String())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, groupdomain.StatusCompleted, views[0].Status)

	var order groupdomain.SupplierConfirmedOrder
	require.NoError(t, f.db.First(&order, "id = ?", seeded.order.ID).Error)
	assert.Equal(t, groupdomain.StatusCompleted, order.Status)

	var group groupdomain.BuyingGroup
	require.NoError(t, f.db.First(&group, "id = ?", seeded.group.ID).Error)
	assert.Equal(t, groupdomain.StatusCompleted, group.Status)
}

func TestListBusinessOrdersKeepsFutureDeliveriesConfirmed(t *testing.T) {
	f := newOrderFixture(t)
	cafe := f.seedBusiness(t, "Mission Cafe", "123 Valencia St")
	deli := f.seedBusiness(t, "Hayes Deli", "456 Hayes St")

	future := time.Date(2026, 3, 20, 18, 0, 0, 0, time.UTC)
	f.seedOrder(t, "", &future, cafe, deli)

	views, err := f.svc.ListBusinessOrders(context.Background(), snowflake.ID(cafe.ID).String())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, groupdomain.StatusConfirmed, views[0].Status)
}

func TestListBusinessOrdersInvalidIDIsEmpty(t *testing.T) {
	f := newOrderFixture(t)

	views, err := f.svc.ListBusinessOrders(context.Background(), "not-an-id")
	require.NoError(t, err)
	assert.Empty(t, views)
}
