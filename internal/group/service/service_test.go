package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	businessdomain "github.com/greensupply/greensupply/internal/business/domain"
	businessrepo "github.com/greensupply/greensupply/internal/business/repository"
	"github.com/greensupply/greensupply/internal/catalog"
	catalogdomain "github.com/greensupply/greensupply/internal/catalog/domain"
	"github.com/greensupply/greensupply/internal/clock"
	"github.com/greensupply/greensupply/internal/config"
	"github.com/greensupply/greensupply/internal/group/domain"
	"github.com/greensupply/greensupply/internal/group/repository"
	supplierdomain "github.com/greensupply/greensupply/internal/supplier/domain"
	supplierrepo "github.com/greensupply/greensupply/internal/supplier/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   domain.Service
	clk   *clock.FakeClock
	node  *snowflake.Node
	cfg   config.Config
	ctx   context.Context
	index int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Product{},
		&businessdomain.Business{},
		&supplierdomain.SupplierProduct{},
		&domain.BuyingGroup{},
		&domain.GroupCommitment{},
		&domain.SupplierConfirmedOrder{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	cfg := config.Config{
		Group: config.GroupConfig{DefaultMinBusinesses: 5, DefaultDeadlineHours: 72},
		Impact: config.ImpactConfig{
			BaselineDeliveryMiles:     5.0,
			ConsolidatedDeliveryMiles: 8.0,
			CityProjectionBusinesses:  4000,
		},
	}

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clk,
		Cfg:          cfg,
		Repo:         repository.Provide(),
		CatalogRepo:  catalog.ProvideRepository(),
		BusinessRepo: businessrepo.Provide(),
		SupplierRepo: supplierrepo.Provide(),
	})

	return &fixture{db: db, svc: svc, clk: clk, node: node, cfg: cfg, ctx: context.Background()}
}

func (f *fixture) nextID() int64 {
	return f.node.Generate().Int64()
}

func (f *fixture) seedProduct(t *testing.T) *catalogdomain.Product {
	t.Helper()
	product := catalogdomain.Product{
		ID:                      f.nextID(),
		Name:                    "9x9 Bagasse Clamshell",
		Category:                "clamshell",
		Material:                "bagasse",
		RetailUnitPrice:         decimal.RequireFromString("0.32"),
		BulkUnitPrice:           decimal.RequireFromString("0.24"),
		MinBulkUnits:            5000,
		CO2PerUnitKg:            decimal.RequireFromString("0.021"),
		PlasticAvoidedPerUnitKg: decimal.RequireFromString("0.012"),
		CreatedAt:               f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&product).Error)
	return &product
}

func (f *fixture) seedBusiness(t *testing.T, accountType string, regionID int64) *businessdomain.Business {
	t.Helper()
	business := businessdomain.Business{
		ID:           f.nextID(),
		BusinessType: "cafe",
		AccountType:  accountType,
		Neighborhood: "mission",
		RegionID:     &regionID,
		CreatedAt:    f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&business).Error)
	return &business
}

func (f *fixture) seedSupplierProduct(t *testing.T, supplierBusinessID int64, available int) *supplierdomain.SupplierProduct {
	t.Helper()
	product := supplierdomain.SupplierProduct{
		ID:                 f.nextID(),
		SupplierBusinessID: supplierBusinessID,
		Name:               "Bagasse Clamshell Lot",
		Category:           "clamshell",
		Material:           "bagasse",
		AvailableUnits:     available,
		UnitPrice:          decimal.RequireFromString("0.22"),
		MinOrderUnits:      1,
		Status:             supplierdomain.StatusActive,
		CreatedAt:          f.clk.Now(),
		UpdatedAt:          f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&product).Error)
	return &product
}

func idString(id int64) string {
	return snowflake.ID(id).String()
}

func (f *fixture) setInventory(t *testing.T, supplierProductID int64, units int) {
	t.Helper()
	require.NoError(t, f.db.Exec(
		"UPDATE supplier_products SET available_units = ? WHERE id = ?",
		units, supplierProductID,
	).Error)
}

func TestJoinRejectsInvalidUnits(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Join(f.ctx, domain.JoinRequest{GroupID: "1", BusinessID: "2", Units: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidUnits)

	_, err = f.svc.Join(f.ctx, domain.JoinRequest{GroupID: "1", BusinessID: "2", Units: -10})
	assert.ErrorIs(t, err, domain.ErrInvalidUnits)
}

func TestJoinValidatesBusiness(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t)
	creator := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	supplierAccount := f.seedBusiness(t, businessdomain.AccountTypeSupplier, 7)
	otherRegion := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 8)

	group, err := f.svc.Create(f.ctx, domain.CreateRequest{
		ProductID:           idString(product.ID),
		CreatedByBusinessID: idString(creator.ID),
		TargetUnits:         100,
	})
	require.NoError(t, err)

	_, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(supplierAccount.ID), Units: 10,
	})
	assert.ErrorIs(t, err, domain.ErrNotBusinessAccount)

	_, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(otherRegion.ID), Units: 10,
	})
	assert.ErrorIs(t, err, domain.ErrRegionMismatch)
}

func TestJoinRejectsDuplicateCommitment(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t)
	creator := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)

	group, err := f.svc.Create(f.ctx, domain.CreateRequest{
		ProductID:           idString(product.ID),
		CreatedByBusinessID: idString(creator.ID),
		TargetUnits:         100,
	})
	require.NoError(t, err)

	_, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(creator.ID), Units: 10,
	})
	require.NoError(t, err)

	_, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(creator.ID), Units: 5,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCommitment)
}

func TestJoinRejectsOverCapacity(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t)
	creator := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	second := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)

	group, err := f.svc.Create(f.ctx, domain.CreateRequest{
		ProductID:           idString(product.ID),
		CreatedByBusinessID: idString(creator.ID),
		TargetUnits:         100,
	})
	require.NoError(t, err)

	_, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(creator.ID), Units: 60,
	})
	require.NoError(t, err)

	_, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(second.ID), Units: 50,
	})
	var capacityErr *domain.CapacityExceededError
	require.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, 40, capacityErr.Remaining)

	// The rejected join left no partial state behind.
	detail, err := f.svc.Get(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, detail.CurrentUnits)
	assert.Len(t, detail.Commitments, 1)
}

func TestJoinConfirmsAtQuorumAndDecrementsInventory(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t)
	creator := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	second := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	supplierAccount := f.seedBusiness(t, businessdomain.AccountTypeSupplier, 7)
	lot := f.seedSupplierProduct(t, supplierAccount.ID, 150)

	group, err := f.svc.Create(f.ctx, domain.CreateRequest{
		ProductID:             idString(product.ID),
		CreatedByBusinessID:   idString(creator.ID),
		SupplierBusinessID:    idString(supplierAccount.ID),
		SupplierProductID:     idString(lot.ID),
		TargetUnits:           100,
		MinBusinessesRequired: 2,
	})
	require.NoError(t, err)

	detail, err := f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(creator.ID), Units: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, detail.Status)

	detail, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(second.ID), Units: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, detail.Status)
	require.NotNil(t, detail.ConfirmedAt)

	var lotRow supplierdomain.SupplierProduct
	require.NoError(t, f.db.First(&lotRow, "id = ?", lot.ID).Error)
	assert.Equal(t, 70, lotRow.AvailableUnits)
	assert.Equal(t, supplierdomain.StatusActive, lotRow.Status)

	var orders []domain.SupplierConfirmedOrder
	require.NoError(t, f.db.Find(&orders, "group_id = ?", detail.ID).Error)
	require.Len(t, orders, 1)
	assert.Equal(t, 80, orders[0].TotalUnits)
	assert.Equal(t, 2, orders[0].BusinessCount)
	assert.Equal(t, domain.StatusConfirmed, orders[0].Status)

	// Confirmed groups accept no further joins.
	third := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	_, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(third.ID), Units: 5,
	})
	assert.ErrorIs(t, err, domain.ErrNotJoinable)
}

func TestConfirmationIsIdempotent(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t)
	creator := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	second := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	supplierAccount := f.seedBusiness(t, businessdomain.AccountTypeSupplier, 7)
	lot := f.seedSupplierProduct(t, supplierAccount.ID, 150)

	group, err := f.svc.Create(f.ctx, domain.CreateRequest{
		ProductID:             idString(product.ID),
		CreatedByBusinessID:   idString(creator.ID),
		SupplierBusinessID:    idString(supplierAccount.ID),
		SupplierProductID:     idString(lot.ID),
		TargetUnits:           100,
		MinBusinessesRequired: 2,
	})
	require.NoError(t, err)

	for _, b := range []*businessdomain.Business{creator, second} {
		_, err = f.svc.Join(f.ctx, domain.JoinRequest{
			GroupID: group.ID, BusinessID: idString(b.ID), Units: 40,
		})
		require.NoError(t, err)
	}

	// Re-reading and re-approving a confirmed group must not create a
	// second order row or decrement inventory again.
	_, err = f.svc.Get(f.ctx, group.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(f.ctx, domain.ApproveRequest{
		GroupID: group.ID, SupplierBusinessID: idString(supplierAccount.ID),
	})
	require.NoError(t, err)

	var orderCount int64
	require.NoError(t, f.db.Model(&domain.SupplierConfirmedOrder{}).Count(&orderCount).Error)
	assert.Equal(t, int64(1), orderCount)

	var lotRow supplierdomain.SupplierProduct
	require.NoError(t, f.db.First(&lotRow, "id = ?", lot.ID).Error)
	assert.Equal(t, 70, lotRow.AvailableUnits)
}

func TestConfirmationSellsOutInventory(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t)
	creator := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	second := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	supplierAccount := f.seedBusiness(t, businessdomain.AccountTypeSupplier, 7)
	lot := f.seedSupplierProduct(t, supplierAccount.ID, 80)

	group, err := f.svc.Create(f.ctx, domain.CreateRequest{
		ProductID:             idString(product.ID),
		CreatedByBusinessID:   idString(creator.ID),
		SupplierBusinessID:    idString(supplierAccount.ID),
		SupplierProductID:     idString(lot.ID),
		TargetUnits:           80,
		MinBusinessesRequired: 2,
	})
	require.NoError(t, err)

	for _, b := range []*businessdomain.Business{creator, second} {
		_, err = f.svc.Join(f.ctx, domain.JoinRequest{
			GroupID: group.ID, BusinessID: idString(b.ID), Units: 40,
		})
		require.NoError(t, err)
	}

	var lotRow supplierdomain.SupplierProduct
	require.NoError(t, f.db.First(&lotRow, "id = ?", lot.ID).Error)
	assert.Equal(t, 0, lotRow.AvailableUnits)
	assert.Equal(t, supplierdomain.StatusSoldOut, lotRow.Status)
}

func TestInsufficientInventorySurfacesAndKeepsCommitment(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t)
	creator := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	second := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	supplierAccount := f.seedBusiness(t, businessdomain.AccountTypeSupplier, 7)
	lot := f.seedSupplierProduct(t, supplierAccount.ID, 150)

	group, err := f.svc.Create(f.ctx, domain.CreateRequest{
		ProductID:             idString(product.ID),
		CreatedByBusinessID:   idString(creator.ID),
		SupplierBusinessID:    idString(supplierAccount.ID),
		SupplierProductID:     idString(lot.ID),
		TargetUnits:           100,
		MinBusinessesRequired: 5,
	})
	require.NoError(t, err)

	_, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(creator.ID), Units: 30,
	})
	require.NoError(t, err)
	_, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(second.ID), Units: 20,
	})
	require.NoError(t, err)

	// Inventory shrinks below the committed units before the supplier
	// forces confirmation.
	f.setInventory(t, lot.ID, 40)

	_, err = f.svc.Approve(f.ctx, domain.ApproveRequest{
		GroupID: group.ID, SupplierBusinessID: idString(supplierAccount.ID),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)

	// The failed confirmation rolled back: status, inventory and the
	// commitments are untouched.
	var groupRow domain.BuyingGroup
	require.NoError(t, f.db.First(&groupRow, "id = ?", parseTestID(t, group.ID)).Error)
	assert.NotEqual(t, domain.StatusConfirmed, groupRow.Status)

	var lotRow supplierdomain.SupplierProduct
	require.NoError(t, f.db.First(&lotRow, "id = ?", lot.ID).Error)
	assert.Equal(t, 40, lotRow.AvailableUnits)

	var commitmentCount int64
	require.NoError(t, f.db.Model(&domain.GroupCommitment{}).Count(&commitmentCount).Error)
	assert.Equal(t, int64(2), commitmentCount)
}

func TestCapacityReachedFlipsBackWhenInventoryGrows(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t)
	creator := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	supplierAccount := f.seedBusiness(t, businessdomain.AccountTypeSupplier, 7)
	lot := f.seedSupplierProduct(t, supplierAccount.ID, 50)

	group, err := f.svc.Create(f.ctx, domain.CreateRequest{
		ProductID:             idString(product.ID),
		CreatedByBusinessID:   idString(creator.ID),
		SupplierBusinessID:    idString(supplierAccount.ID),
		SupplierProductID:     idString(lot.ID),
		TargetUnits:           100,
		MinBusinessesRequired: 3,
	})
	require.NoError(t, err)
	// Target is clamped to the 50 units actually available.
	assert.Equal(t, 50, group.TargetUnits)

	detail, err := f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(creator.ID), Units: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCapacityReached, detail.Status)

	// Restocking re-opens the group on the next read.
	f.setInventory(t, lot.ID, 120)

	detail, err = f.svc.Get(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, detail.Status)
}

func TestApproveOverridesQuorum(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t)
	creator := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	supplierAccount := f.seedBusiness(t, businessdomain.AccountTypeSupplier, 7)
	otherSupplier := f.seedBusiness(t, businessdomain.AccountTypeSupplier, 7)
	lot := f.seedSupplierProduct(t, supplierAccount.ID, 150)

	group, err := f.svc.Create(f.ctx, domain.CreateRequest{
		ProductID:             idString(product.ID),
		CreatedByBusinessID:   idString(creator.ID),
		SupplierBusinessID:    idString(supplierAccount.ID),
		SupplierProductID:     idString(lot.ID),
		TargetUnits:           100,
		MinBusinessesRequired: 5,
	})
	require.NoError(t, err)

	// Nothing committed yet: not approvable.
	_, err = f.svc.Approve(f.ctx, domain.ApproveRequest{
		GroupID: group.ID, SupplierBusinessID: idString(supplierAccount.ID),
	})
	assert.ErrorIs(t, err, domain.ErrNoCommittedUnits)

	_, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: group.ID, BusinessID: idString(creator.ID), Units: 30,
	})
	require.NoError(t, err)

	// Only the group's own supplier may approve.
	_, err = f.svc.Approve(f.ctx, domain.ApproveRequest{
		GroupID: group.ID, SupplierBusinessID: idString(otherSupplier.ID),
	})
	assert.ErrorIs(t, err, domain.ErrNotGroupSupplier)

	detail, err := f.svc.Approve(f.ctx, domain.ApproveRequest{
		GroupID: group.ID, SupplierBusinessID: idString(supplierAccount.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, detail.Status)

	var lotRow supplierdomain.SupplierProduct
	require.NoError(t, f.db.First(&lotRow, "id = ?", lot.ID).Error)
	assert.Equal(t, 120, lotRow.AvailableUnits)
}

func TestSharedInventoryLimitsSiblingGroups(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t)
	creator := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	second := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	supplierAccount := f.seedBusiness(t, businessdomain.AccountTypeSupplier, 7)
	lot := f.seedSupplierProduct(t, supplierAccount.ID, 100)

	groupA, err := f.svc.Create(f.ctx, domain.CreateRequest{
		ProductID:             idString(product.ID),
		CreatedByBusinessID:   idString(creator.ID),
		SupplierBusinessID:    idString(supplierAccount.ID),
		SupplierProductID:     idString(lot.ID),
		TargetUnits:           100,
		MinBusinessesRequired: 5,
	})
	require.NoError(t, err)
	groupB, err := f.svc.Create(f.ctx, domain.CreateRequest{
		ProductID:             idString(product.ID),
		CreatedByBusinessID:   idString(creator.ID),
		SupplierBusinessID:    idString(supplierAccount.ID),
		SupplierProductID:     idString(lot.ID),
		TargetUnits:           100,
		MinBusinessesRequired: 5,
	})
	require.NoError(t, err)

	_, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: groupA.ID, BusinessID: idString(creator.ID), Units: 70,
	})
	require.NoError(t, err)

	// Group B only has the 30 units not reserved by group A.
	_, err = f.svc.Join(f.ctx, domain.JoinRequest{
		GroupID: groupB.ID, BusinessID: idString(second.ID), Units: 40,
	})
	var capacityErr *domain.CapacityExceededError
	require.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, 30, capacityErr.Remaining)
}

func TestImpactProjectsCityScale(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t)
	creator := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)
	second := f.seedBusiness(t, businessdomain.AccountTypeBusiness, 7)

	group, err := f.svc.Create(f.ctx, domain.CreateRequest{
		ProductID:             idString(product.ID),
		CreatedByBusinessID:   idString(creator.ID),
		TargetUnits:           5000,
		MinBusinessesRequired: 5,
	})
	require.NoError(t, err)

	for _, b := range []*businessdomain.Business{creator, second} {
		_, err = f.svc.Join(f.ctx, domain.JoinRequest{
			GroupID: group.ID, BusinessID: idString(b.ID), Units: 500,
		})
		require.NoError(t, err)
	}

	report, err := f.svc.Impact(f.ctx, group.ID)
	require.NoError(t, err)

	assert.Equal(t, 1000, report.CurrentUnits)
	assert.Equal(t, 80.0, report.EstimatedSavingsUSD)
	assert.Equal(t, 4000, report.CityScaleProjection.Businesses)

	// scale = 4000 city businesses / 2 participants, projected monthly x12.
	assert.Equal(t, 504000.0, report.CityScaleProjection.YearlyCO2SavedKg)
	assert.Equal(t, 288000.0, report.CityScaleProjection.YearlyPlasticAvoidedKg)
	assert.Equal(t, 48000.0, report.CityScaleProjection.YearlyDeliveryMilesSaved)
}

func parseTestID(t *testing.T, value string) int64 {
	t.Helper()
	id, err := snowflake.ParseString(value)
	require.NoError(t, err)
	return id.Int64()
}
