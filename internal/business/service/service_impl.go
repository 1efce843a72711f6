package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/greensupply/greensupply/internal/business/domain"
	"github.com/greensupply/greensupply/internal/clock"
	"github.com/greensupply/greensupply/internal/providers/geocode"
	regionrepo "github.com/greensupply/greensupply/internal/region"
	regiondomain "github.com/greensupply/greensupply/internal/region/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	RegionRepo regiondomain.Repository
	Geocoder   geocode.Provider
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	regionRepo regiondomain.Repository
	geocoder   geocode.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("business.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		regionRepo: p.RegionRepo,
		geocoder:   p.Geocoder,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	accountType := strings.ToLower(strings.TrimSpace(req.AccountType))
	if accountType == "" {
		accountType = domain.AccountTypeBusiness
	}
	if accountType != domain.AccountTypeBusiness && accountType != domain.AccountTypeSupplier {
		return nil, domain.ErrInvalidAccountType
	}

	businessType := strings.ToLower(strings.TrimSpace(req.BusinessType))
	if accountType == domain.AccountTypeBusiness && businessType == "" {
		return nil, domain.ErrMissingBusinessType
	}
	if accountType == domain.AccountTypeSupplier {
		businessType = domain.AccountTypeSupplier
	}

	business := domain.Business{
		ID:           s.genID.Generate().Int64(),
		BusinessType: businessType,
		AccountType:  accountType,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		CreatedAt:    s.clock.Now(),
	}
	setOptional(&business.Name, req.Name)
	setOptional(&business.Email, strings.ToLower(req.Email))
	setOptional(&business.Address, req.Address)
	setOptional(&business.City, req.City)
	setOptional(&business.State, req.State)
	setOptional(&business.Zip, req.ZipCode)

	business.Neighborhood = strings.TrimSpace(req.Neighborhood)
	if business.Neighborhood == "" && business.City != nil {
		business.Neighborhood = *business.City
	}
	if business.Neighborhood == "" {
		business.Neighborhood = "unknown"
	}

	if err := s.resolveLocation(ctx, &business); err != nil {
		return nil, err
	}

	if err := s.assignRegion(ctx, &business); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, s.db, &business); err != nil {
		return nil, err
	}

	s.log.Info("business created",
		zap.String("business_id", snowflake.ID(business.ID).String()),
		zap.String("account_type", business.AccountType),
	)
	return toResponse(&business), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, domain.ErrNotFound
	}

	business, err := s.repo.FindByID(ctx, s.db, parsed.Int64())
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, domain.ErrNotFound
	}
	return toResponse(business), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*domain.Response, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.ErrNotFound
	}

	business, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, domain.ErrNotFound
	}
	return toResponse(business), nil
}

// resolveLocation geocodes the street address when coordinates were not
// supplied and enforces the service-area gate: ordinary businesses must
// resolve inside San Francisco, suppliers anywhere inside the US. When
// the geocoder is disabled or cannot resolve the address, creation
// proceeds without coordinates and region assignment falls back to zip.
func (s *Service) resolveLocation(ctx context.Context, business *domain.Business) error {
	if business.Latitude != nil && business.Longitude != nil {
		return nil
	}

	address := s.fullAddress(business)
	if address == "" {
		return nil
	}

	result, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	if business.AccountType == domain.AccountTypeBusiness && !insideSanFrancisco(result) {
		return domain.ErrOutsideServiceArea
	}
	if business.AccountType == domain.AccountTypeSupplier && !insideUS(result) {
		return domain.ErrSupplierOutsideUS
	}

	business.Latitude = &result.Latitude
	business.Longitude = &result.Longitude
	return nil
}

// assignRegion places a business into the delivery grid by coordinates,
// falling back to the static zip table when the point misses every cell.
// Only ordinary businesses are required to land in a region.
func (s *Service) assignRegion(ctx context.Context, business *domain.Business) error {
	if business.Latitude != nil && business.Longitude != nil {
		region, err := s.regionRepo.FindByPoint(ctx, s.db, *business.Latitude, *business.Longitude)
		if err != nil {
			return err
		}
		if region != nil {
			business.RegionID = &region.ID
			return nil
		}
	}

	if business.Zip != nil {
		region, err := regionrepo.FindByZipFallback(ctx, s.db, s.regionRepo, *business.Zip)
		if err != nil {
			return err
		}
		if region != nil {
			business.RegionID = &region.ID
			return nil
		}
	}

	if business.AccountType == domain.AccountTypeBusiness {
		return domain.ErrNoRegion
	}
	return nil
}

func (s *Service) fullAddress(business *domain.Business) string {
	parts := make([]string, 0, 5)
	for _, p := range []*string{business.Address, business.City, business.State, business.Zip} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	parts = append(parts, "United States")
	return strings.Join(parts, ", ")
}

func insideSanFrancisco(result *geocode.Result) bool {
	locality := strings.ToLower(strings.TrimSpace(result.Locality))
	state := strings.ToLower(strings.TrimSpace(result.AdminAreaLevel1))
	return locality == "san francisco" &&
		(state == "ca" || state == "california") &&
		insideUS(result) &&
		strings.HasPrefix(strings.TrimSpace(result.PostalCode), "941")
}

func insideUS(result *geocode.Result) bool {
	country := strings.ToLower(strings.TrimSpace(result.Country))
	return country == "us" || country == "united states"
}

func setOptional(dst **string, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	*dst = &value
}

func toResponse(business *domain.Business) *domain.Response {
	resp := &domain.Response{
		ID:           snowflake.ID(business.ID).String(),
		Name:         business.Name,
		Email:        business.Email,
		BusinessType: business.BusinessType,
		AccountType:  business.AccountType,
		Address:      business.Address,
		City:         business.City,
		State:        business.State,
		Neighborhood: business.Neighborhood,
		Zip:          business.Zip,
		Latitude:     business.Latitude,
		Longitude:    business.Longitude,
		CreatedAt:    business.CreatedAt,
	}
	if business.RegionID != nil {
		regionID := fmt.Sprintf("%d", *business.RegionID)
		resp.RegionID = &regionID
	}
	return resp
}
