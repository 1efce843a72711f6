package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	businessdomain "github.com/greensupply/greensupply/internal/business/domain"
	catalogdomain "github.com/greensupply/greensupply/internal/catalog/domain"
	"github.com/greensupply/greensupply/internal/dashboard/domain"
	groupdomain "github.com/greensupply/greensupply/internal/group/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type summaryFixture struct {
	db   *gorm.DB
	svc  domain.Service
	node *snowflake.Node
}

func newSummaryFixture(t *testing.T) *summaryFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Product{},
		&businessdomain.Business{},
		&groupdomain.BuyingGroup{},
		&groupdomain.GroupCommitment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: ProvideRepository(),
	})
	return &summaryFixture{db: db, svc: svc, node: node}
}

func (f *summaryFixture) seedCommitment(t *testing.T, businessID int64, units int, status string, committedAt time.Time, confirmedAt *time.Time) {
	t.Helper()

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
		CreatedAt:               committedAt,
	}
	require.NoError(t, f.db.Create(&product).Error)

	group := groupdomain.BuyingGroup{
		ID:                    f.node.Generate().Int64(),
		ProductID:             product.ID,
		CreatedByBusinessID:   businessID,
		RegionID:              7,
		TargetUnits:           5000,
		MinBusinessesRequired: 5,
		Status:                status,
		ConfirmedAt:           confirmedAt,
		CreatedAt:             committedAt,
	}
	require.NoError(t, f.db.Create(&group).Error)

	require.NoError(t, f.db.Create(&groupdomain.GroupCommitment{
		ID:         f.node.Generate().Int64(),
		GroupID:    group.ID,
		BusinessID: businessID,
		Units:      units,
		CreatedAt:  committedAt,
	}).Error)
}

func TestBusinessSummaryEmpty(t *testing.T) {
	f := newSummaryFixture(t)

	summary, err := f.svc.BusinessSummary(context.Background(), "12345")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.YourGroupsJoined)
	assert.Equal(t, 0.0, summary.YourTotalSavingsUSD)
	assert.Nil(t, summary.YourMedianTimeToConfirmationHours)
}

func TestBusinessSummaryInvalidIDIsEmptyNotError(t *testing.T) {
	f := newSummaryFixture(t)

	summary, err := f.svc.BusinessSummary(context.Background(), "not-an-id")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.YourGroupsJoined)
}

func TestBusinessSummaryRollup(t *testing.T) {
	f := newSummaryFixture(t)
	businessID := f.node.Generate().Int64()

	committed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	confirmedFast := committed.Add(12 * time.Hour)
	confirmedSlow := committed.Add(48 * time.Hour)

	f.seedCommitment(t, businessID, 1000, groupdomain.StatusConfirmed, committed, &confirmedFast)
	f.seedCommitment(t, businessID, 500, groupdomain.StatusCompleted, committed, &confirmedSlow)
	f.seedCommitment(t, businessID, 200, groupdomain.StatusActive, committed, nil)

	summary, err := f.svc.BusinessSummary(context.Background(), snowflake.ID(businessID).String())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.YourGroupsJoined)
	assert.Equal(t, 1700, summary.YourUnitsCommitted)

	// 1700 units x (0.32 - 0.24) savings per unit.
	assert.Equal(t, 136.0, summary.YourTotalSavingsUSD)
	assert.Equal(t, 25.0, summary.YourWeightedSavingsPct)

	// 2 of 3 groups reached confirmation.
	assert.Equal(t, 66.67, summary.YourGroupConversionRate)

	require.NotNil(t, summary.YourMedianTimeToConfirmationHours)
	assert.Equal(t, 30.0, *summary.YourMedianTimeToConfirmationHours)

	assert.Equal(t, 35.7, summary.YourCO2SavedKg)
	assert.Equal(t, 20.4, summary.YourPlasticAvoidedKg)
}
