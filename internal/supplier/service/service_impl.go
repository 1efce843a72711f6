package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	businessdomain "github.com/greensupply/greensupply/internal/business/domain"
	"github.com/greensupply/greensupply/internal/clock"
	"github.com/greensupply/greensupply/internal/supplier/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	BusinessRepo businessdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	businessRepo businessdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("supplier.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		businessRepo: p.BusinessRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	supplierID, err := parseID(req.SupplierBusinessID)
	if err != nil {
		return nil, domain.ErrSupplierNotFound
	}

	supplier, err := s.businessRepo.FindByID(ctx, s.db, supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrSupplierNotFound
	}
	if supplier.AccountType != businessdomain.AccountTypeSupplier {
		return nil, domain.ErrNotSupplierAccount
	}

	if req.AvailableUnits <= 0 {
		return nil, domain.ErrInvalidUnits
	}
	if req.UnitPrice <= 0 {
		return nil, domain.ErrInvalidUnitPrice
	}
	if req.MinOrderUnits <= 0 {
		return nil, domain.ErrInvalidMinOrderUnits
	}

	now := s.clock.Now()
	product := domain.SupplierProduct{
		ID:                 s.genID.Generate().Int64(),
		SupplierBusinessID: supplierID,
		Name:               strings.TrimSpace(req.Name),
		Category:           strings.TrimSpace(req.Category),
		Material:           strings.TrimSpace(req.Material),
		AvailableUnits:     req.AvailableUnits,
		UnitPrice:          decimal.NewFromFloat(req.UnitPrice),
		MinOrderUnits:      req.MinOrderUnits,
		Status:             domain.StatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, s.db, &product); err != nil {
		return nil, err
	}

	s.log.Info("supplier product created",
		zap.String("supplier_product_id", snowflake.ID(product.ID).String()),
		zap.Int("available_units", product.AvailableUnits),
	)
	return toResponse(&product, nil, 0), nil
}

// List returns active inventory with availability net of units reserved
// by active buying groups on each lot.
func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	var supplierID *int64
	if strings.TrimSpace(req.SupplierBusinessID) != "" {
		id, err := parseID(req.SupplierBusinessID)
		if err != nil {
			return nil, domain.ErrSupplierNotFound
		}
		supplierID = &id
	}

	items, err := s.repo.FindActive(ctx, s.db, supplierID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]int64, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ID)
	}
	reserved, err := s.repo.ReservedUnits(ctx, s.db, productIDs, 0)
	if err != nil {
		return nil, err
	}

	names, err := s.supplierNames(ctx, items)
	if err != nil {
		return nil, err
	}

	responses := make([]domain.Response, 0, len(items))
	for i := range items {
		item := &items[i]
		responses = append(responses, *toResponse(item, names[item.SupplierBusinessID], reserved[item.ID]))
	}
	return responses, nil
}

func (s *Service) supplierNames(ctx context.Context, items []domain.SupplierProduct) (map[int64]*string, error) {
	names := make(map[int64]*string)
	for _, item := range items {
		if _, ok := names[item.SupplierBusinessID]; ok {
			continue
		}
		supplier, err := s.businessRepo.FindByID(ctx, s.db, item.SupplierBusinessID)
		if err != nil {
			return nil, err
		}
		if supplier != nil {
			names[item.SupplierBusinessID] = supplier.Name
		} else {
			names[item.SupplierBusinessID] = nil
		}
	}
	return names, nil
}

func parseID(value string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}

func toResponse(product *domain.SupplierProduct, supplierName *string, reservedUnits int) *domain.Response {
	available := product.AvailableUnits - reservedUnits
	if available < 0 {
		available = 0
	}
	price, _ := product.UnitPrice.Float64()
	return &domain.Response{
		ID:                   snowflake.ID(product.ID).String(),
		SupplierBusinessID:   snowflake.ID(product.SupplierBusinessID).String(),
		SupplierBusinessName: supplierName,
		Name:                 product.Name,
		Category:             product.Category,
		Material:             product.Material,
		AvailableUnits:       available,
		UnitPrice:            price,
		MinOrderUnits:        product.MinOrderUnits,
		Status:               product.Status,
		CreatedAt:            product.CreatedAt,
		UpdatedAt:            product.UpdatedAt,
	}
}
