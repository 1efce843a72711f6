package recommend

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
	groupdomain "github.com/greensupply/greensupply/internal/group/domain"
	grouprepo "github.com/greensupply/greensupply/internal/group/repository"
	groupservice "github.com/greensupply/greensupply/internal/group/service"
	"github.com/greensupply/greensupply/internal/providers/genai"
	"github.com/greensupply/greensupply/internal/recommend/domain"
	supplierdomain "github.com/greensupply/greensupply/internal/supplier/domain"
	supplierrepo "github.com/greensupply/greensupply/internal/supplier/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type genaiStub struct {
	text string
	err  error
}

func (g *genaiStub) Generate(ctx context.Context, prompt string) (string, error) {
	return g.text, g.err
}

type recommendFixture struct {
	db     *gorm.DB
	svc    domain.Service
	groups groupdomain.Service
	node   *snowflake.Node
	clk    *clock.FakeClock
}

func newRecommendFixture(t *testing.T, provider genai.Provider) *recommendFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Product{},
		&businessdomain.Business{},
		&supplierdomain.SupplierProduct{},
		&groupdomain.BuyingGroup{},
		&groupdomain.GroupCommitment{},
		&groupdomain.SupplierConfirmedOrder{},
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

	groups := groupservice.New(groupservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clk,
		Cfg:          cfg,
		Repo:         grouprepo.Provide(),
		CatalogRepo:  catalog.ProvideRepository(),
		BusinessRepo: businessrepo.Provide(),
		SupplierRepo: supplierrepo.Provide(),
	})

	svc := NewService(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenAI:        provider,
		Groups:       groups,
		GroupRepo:    grouprepo.Provide(),
		BusinessRepo: businessrepo.Provide(),
	})
	return &recommendFixture{db: db, svc: svc, groups: groups, node: node, clk: clk}
}

func (f *recommendFixture) seedProduct(t *testing.T) *catalogdomain.Product {
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
		CreatedAt:               f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&product).Error)
	return &product
}

func (f *recommendFixture) seedBusiness(t *testing.T, regionID int64) *businessdomain.Business {
	t.Helper()
	business := businessdomain.Business{
		ID:           f.node.Generate().Int64(),
		BusinessType: "cafe",
		AccountType:  "business",
		Neighborhood: "mission",
		RegionID:     &regionID,
		CreatedAt:    f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&business).Error)
	return &business
}

func (f *recommendFixture) createGroup(t *testing.T, creator *businessdomain.Business, product *catalogdomain.Product) *groupdomain.Detail {
	t.Helper()
	detail, err := f.groups.Create(context.Background(), groupdomain.CreateRequest{
		ProductID:           snowflake.ID(product.ID).String(),
		CreatedByBusinessID: snowflake.ID(creator.ID).String(),
		TargetUnits:         5000,
	})
	require.NoError(t, err)
	return detail
}

func TestGroupFallbackWhenProviderUnavailable(t *testing.T) {
	f := newRecommendFixture(t, genai.DisabledProvider{})
	creator := f.seedBusiness(t, 7)
	product := f.seedProduct(t)
	group := f.createGroup(t, creator, product)

	rec, err := f.svc.Group(context.Background(), domain.GroupRequest{GroupID: group.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceFallback, rec.Source)
	assert.Equal(t, group.ID, rec.GroupID)
	assert.Contains(t, rec.RecommendedPackaging, "bagasse")
	assert.Contains(t, rec.RecommendedPackaging, "9x9 Bagasse Clamshell")
	assert.NotEmpty(t, rec.Tradeoffs)
	assert.NotEmpty(t, rec.SustainabilityReport)
}

func TestGroupParsesFencedJSON(t *testing.T) {
	stub := &genaiStub{text: "```json\n{\"recommended_packaging\":\"Bagasse clamshells\"," +
		"\"tradeoffs\":\"Needs compost collection\",\"sustainability_report\":\"Avoids plastic\"}\n```"}
	f := newRecommendFixture(t, stub)
	creator := f.seedBusiness(t, 7)
	product := f.seedProduct(t)
	group := f.createGroup(t, creator, product)

	rec, err := f.svc.Group(context.Background(), domain.GroupRequest{GroupID: group.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceGemini, rec.Source)
	assert.Equal(t, "Bagasse clamshells", rec.RecommendedPackaging)
	assert.Equal(t, "Needs compost collection", rec.Tradeoffs)
	assert.Equal(t, "Avoids plastic", rec.SustainabilityReport)
}

func TestGroupSalvagesUnstructuredText(t *testing.T) {
	f := newRecommendFixture(t, &genaiStub{text: "Switch to bagasse clamshells for takeout."})
	creator := f.seedBusiness(t, 7)
	product := f.seedProduct(t)
	group := f.createGroup(t, creator, product)

	rec, err := f.svc.Group(context.Background(), domain.GroupRequest{GroupID: group.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceGemini, rec.Source)
	assert.Equal(t, "Switch to bagasse clamshells for takeout.", rec.RecommendedPackaging)
}

func TestGroupIncompleteJSONFallsBack(t *testing.T) {
	f := newRecommendFixture(t, &genaiStub{text: `{"recommended_packaging":"Bagasse only"}`})
	creator := f.seedBusiness(t, 7)
	product := f.seedProduct(t)
	group := f.createGroup(t, creator, product)

	rec, err := f.svc.Group(context.Background(), domain.GroupRequest{GroupID: group.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, rec.Source)
}

func TestGroupUnknownGroup(t *testing.T) {
	f := newRecommendFixture(t, genai.DisabledProvider{})

	_, err := f.svc.Group(context.Background(), domain.GroupRequest{GroupID: "999999"})
	assert.ErrorIs(t, err, groupdomain.ErrNotFound)
}

func TestDashboardFallbackNamesBusiness(t *testing.T) {
	f := newRecommendFixture(t, genai.DisabledProvider{})

	rec, err := f.svc.Dashboard(context.Background(), domain.DashboardRequest{
		BusinessName:   "Mission Cafe",
		CityBusinesses: 4000,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceFallback, rec.Source)
	assert.Contains(t, rec.Summary, "Mission Cafe")
	assert.Len(t, rec.SuggestedActions, 3)
}

func TestDashboardFallbackDefaultsName(t *testing.T) {
	f := newRecommendFixture(t, genai.DisabledProvider{})

	rec, err := f.svc.Dashboard(context.Background(), domain.DashboardRequest{})
	require.NoError(t, err)
	assert.Contains(t, rec.Summary, "your business")
}

func TestDashboardParsesGeneratedJSON(t *testing.T) {
	stub := &genaiStub{text: `{"summary":"Pool orders monthly.","suggested_actions":["Join a group"]}`}
	f := newRecommendFixture(t, stub)

	rec, err := f.svc.Dashboard(context.Background(), domain.DashboardRequest{BusinessName: "Mission Cafe"})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceGemini, rec.Source)
	assert.Equal(t, "Pool orders monthly.", rec.Summary)
	assert.Equal(t, []string{"Join a group"}, rec.SuggestedActions)
}

func TestGroupOpportunitiesFiltersRegionAndCaps(t *testing.T) {
	f := newRecommendFixture(t, genai.DisabledProvider{})
	product := f.seedProduct(t)

	missionCreator := f.seedBusiness(t, 7)
	for i := 0; i < 4; i++ {
		f.createGroup(t, missionCreator, product)
	}
	somaCreator := f.seedBusiness(t, 8)
	otherRegion := f.createGroup(t, somaCreator, product)

	rec, err := f.svc.GroupOpportunities(context.Background(), domain.OpportunitiesRequest{
		BusinessID: snowflake.ID(missionCreator.ID).String(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceFallback, rec.Source)
	require.Len(t, rec.Opportunities, 3)
	for _, opportunity := range rec.Opportunities {
		assert.NotEqual(t, otherRegion.ID, opportunity.GroupID)
		assert.Equal(t, "9x9 Bagasse Clamshell", opportunity.ProductName)
		assert.Equal(t, 5000, opportunity.RemainingUnits)
		assert.NotEmpty(t, opportunity.Reason)
	}
}

func TestGroupOpportunitiesWithoutBusinessListsAllRegions(t *testing.T) {
	f := newRecommendFixture(t, genai.DisabledProvider{})
	product := f.seedProduct(t)

	f.createGroup(t, f.seedBusiness(t, 7), product)
	f.createGroup(t, f.seedBusiness(t, 8), product)

	rec, err := f.svc.GroupOpportunities(context.Background(), domain.OpportunitiesRequest{
		BusinessID: "not-an-id",
	})
	require.NoError(t, err)
	assert.Len(t, rec.Opportunities, 2)
}
