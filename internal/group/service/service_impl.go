package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	businessdomain "github.com/greensupply/greensupply/internal/business/domain"
	catalogdomain "github.com/greensupply/greensupply/internal/catalog/domain"
	"github.com/greensupply/greensupply/internal/clock"
	"github.com/greensupply/greensupply/internal/config"
	"github.com/greensupply/greensupply/internal/group/domain"
	"github.com/greensupply/greensupply/internal/observability/metrics"
	supplierdomain "github.com/greensupply/greensupply/internal/supplier/domain"
	"github.com/greensupply/greensupply/pkg/db"
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
	Cfg          config.Config
	Repo         domain.Repository
	CatalogRepo  catalogdomain.Repository
	BusinessRepo businessdomain.Repository
	SupplierRepo supplierdomain.Repository
	Notifier     domain.ConfirmationNotifier `optional:"true"`
	Obs          *metrics.GroupMetrics       `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	cfg          config.Config
	repo         domain.Repository
	catalogRepo  catalogdomain.Repository
	businessRepo businessdomain.Repository
	supplierRepo supplierdomain.Repository
	notifier     domain.ConfirmationNotifier
	obs          *metrics.GroupMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("group.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		cfg:          p.Cfg,
		repo:         p.Repo,
		catalogRepo:  p.CatalogRepo,
		businessRepo: p.BusinessRepo,
		supplierRepo: p.SupplierRepo,
		notifier:     p.Notifier,
		obs:          p.Obs,
	}
}

func (s *Service) deliveryConstants() domain.DeliveryConstants {
	return domain.DeliveryConstants{
		BaselineMilesPerBusiness:  s.cfg.Impact.BaselineDeliveryMiles,
		ConsolidatedDeliveryMiles: s.cfg.Impact.ConsolidatedDeliveryMiles,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Detail, error) {
	productID, err := parseID(req.ProductID)
	if err != nil {
		return nil, catalogdomain.ErrNotFound
	}
	product, err := s.catalogRepo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, catalogdomain.ErrNotFound
	}

	creatorID, err := parseID(req.CreatedByBusinessID)
	if err != nil {
		return nil, businessdomain.ErrNotFound
	}
	creator, err := s.businessRepo.FindByID(ctx, s.db, creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, businessdomain.ErrNotFound
	}
	if creator.AccountType != businessdomain.AccountTypeBusiness {
		return nil, domain.ErrCreatorNotBusiness
	}
	if creator.RegionID == nil {
		return nil, domain.ErrCreatorNoRegion
	}

	var supplier *businessdomain.Business
	if strings.TrimSpace(req.SupplierBusinessID) != "" {
		supplierID, err := parseID(req.SupplierBusinessID)
		if err != nil {
			return nil, supplierdomain.ErrSupplierNotFound
		}
		supplier, err = s.businessRepo.FindByID(ctx, s.db, supplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, supplierdomain.ErrSupplierNotFound
		}
		if supplier.AccountType != businessdomain.AccountTypeSupplier {
			return nil, domain.ErrNotSupplierReference
		}
		if supplier.RegionID != nil && *supplier.RegionID != *creator.RegionID {
			return nil, domain.ErrSupplierRegion
		}
	}

	targetUnits := req.TargetUnits
	if targetUnits <= 0 {
		targetUnits = product.MinBulkUnits
	}

	var supplierProduct *supplierdomain.SupplierProduct
	if strings.TrimSpace(req.SupplierProductID) != "" {
		supplierProductID, err := parseID(req.SupplierProductID)
		if err != nil {
			return nil, supplierdomain.ErrNotFound
		}
		supplierProduct, err = s.supplierRepo.FindByID(ctx, s.db, supplierProductID)
		if err != nil {
			return nil, err
		}
		if supplierProduct == nil {
			return nil, supplierdomain.ErrNotFound
		}
		if supplier != nil && supplierProduct.SupplierBusinessID != supplier.ID {
			return nil, domain.ErrSupplierMismatch
		}
		if supplierProduct.Status != supplierdomain.StatusActive {
			return nil, domain.ErrSupplierInactive
		}
		if supplierProduct.AvailableUnits <= 0 {
			return nil, domain.ErrSupplierOutOfStock
		}
		// Clamp rather than reject: a group can never consume more than
		// the lot holds anyway.
		if targetUnits > supplierProduct.AvailableUnits {
			targetUnits = supplierProduct.AvailableUnits
		}
		if supplier == nil {
			supplier, err = s.businessRepo.FindByID(ctx, s.db, supplierProduct.SupplierBusinessID)
			if err != nil {
				return nil, err
			}
		}
	}

	minBusinesses := req.MinBusinessesRequired
	if minBusinesses <= 0 {
		minBusinesses = s.cfg.Group.DefaultMinBusinesses
	}
	if minBusinesses < 1 {
		minBusinesses = 1
	}

	now := s.clock.Now()
	deadline := req.Deadline
	if deadline == nil {
		d := now.Add(time.Duration(s.cfg.Group.DefaultDeadlineHours) * time.Hour)
		deadline = &d
	}

	group := domain.BuyingGroup{
		ID:                    s.genID.Generate().Int64(),
		ProductID:             product.ID,
		CreatedByBusinessID:   creator.ID,
		RegionID:              *creator.RegionID,
		TargetUnits:           targetUnits,
		MinBusinessesRequired: minBusinesses,
		Deadline:              deadline,
		Status:                domain.StatusActive,
		CreatedAt:             now,
	}
	if supplier != nil {
		group.SupplierBusinessID = &supplier.ID
	}
	if supplierProduct != nil {
		group.SupplierProductID = &supplierProduct.ID
	}

	if err := s.repo.Create(ctx, s.db, &group); err != nil {
		return nil, err
	}

	s.log.Info("buying group created",
		zap.String("group_id", snowflake.ID(group.ID).String()),
		zap.Int("target_units", group.TargetUnits),
	)
	return s.detail(ctx, group.ID)
}

// Join commits units to a group. The capacity check, commitment insert and
// status flip run in one transaction holding row locks on the supplier
// inventory and the group, so concurrent joins cannot race past the
// capacity ceiling. Confirmation runs in its own transaction afterwards:
// its failure surfaces to the caller but never unwinds the commitment.
func (s *Service) Join(ctx context.Context, req domain.JoinRequest) (*domain.Detail, error) {
	if req.Units <= 0 {
		s.obs.ObserveJoin(metrics.OutcomeRejected)
		return nil, domain.ErrInvalidUnits
	}

	groupID, err := parseID(req.GroupID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	businessID, err := parseID(req.BusinessID)
	if err != nil {
		return nil, businessdomain.ErrNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, supplierProduct, err := s.lockGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}

		business, err := s.businessRepo.FindByID(ctx, tx, businessID)
		if err != nil {
			return err
		}
		if business == nil {
			return businessdomain.ErrNotFound
		}
		if business.AccountType != businessdomain.AccountTypeBusiness {
			return domain.ErrNotBusinessAccount
		}
		if business.RegionID == nil {
			return domain.ErrNoRegion
		}
		if *business.RegionID != group.RegionID {
			return domain.ErrRegionMismatch
		}
		if domain.IsTerminal(group.Status) {
			return domain.ErrNotJoinable
		}

		existing, err := s.repo.FindCommitment(ctx, tx, group.ID, business.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateCommitment
		}

		rollups, err := s.repo.Rollups(ctx, tx, []int64{group.ID})
		if err != nil {
			return err
		}
		rollup := rollups[group.ID]

		maxCapacity, err := s.effectiveCapacity(ctx, tx, group, supplierProduct)
		if err != nil {
			return err
		}
		if rollup.CurrentUnits+req.Units > maxCapacity {
			remaining := maxCapacity - rollup.CurrentUnits
			if remaining < 0 {
				remaining = 0
			}
			return &domain.CapacityExceededError{Remaining: remaining}
		}

		commitment := domain.GroupCommitment{
			ID:         s.genID.Generate().Int64(),
			GroupID:    group.ID,
			BusinessID: business.ID,
			Units:      req.Units,
			CreatedAt:  s.clock.Now(),
		}
		if err := s.repo.InsertCommitment(ctx, tx, &commitment); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateCommitment
			}
			return err
		}

		return s.syncStatus(ctx, tx, group, rollup.CurrentUnits+req.Units, rollup.BusinessCount+1, maxCapacity)
	})
	if err != nil {
		s.obs.ObserveJoin(metrics.OutcomeRejected)
		return nil, err
	}
	s.obs.ObserveJoin(metrics.OutcomeAccepted)

	if err := s.maybeConfirm(ctx, groupID, false); err != nil {
		return nil, err
	}
	return s.detail(ctx, groupID)
}

// Approve lets the group's supplier force confirmation before the
// business-count quorum is met. Zero committed units is never approvable.
func (s *Service) Approve(ctx context.Context, req domain.ApproveRequest) (*domain.Detail, error) {
	groupID, err := parseID(req.GroupID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	supplierID, err := parseID(req.SupplierBusinessID)
	if err != nil {
		return nil, domain.ErrNotGroupSupplier
	}

	group, err := s.repo.FindByID(ctx, s.db, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.ErrNotFound
	}
	if group.SupplierBusinessID == nil || *group.SupplierBusinessID != supplierID {
		return nil, domain.ErrNotGroupSupplier
	}

	if !domain.IsTerminal(group.Status) {
		rollups, err := s.repo.Rollups(ctx, s.db, []int64{group.ID})
		if err != nil {
			return nil, err
		}
		if rollups[group.ID].CurrentUnits <= 0 {
			return nil, domain.ErrNoCommittedUnits
		}
		if err := s.maybeConfirm(ctx, group.ID, true); err != nil {
			return nil, err
		}
	}
	return s.detail(ctx, groupID)
}

func (s *Service) List(ctx context.Context) ([]domain.Summary, error) {
	groups, err := s.repo.FindVisible(ctx, s.db)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if domain.IsTerminal(groups[i].Status) {
			continue
		}
		s.syncOnRead(ctx, groups[i].ID)
	}

	groups, err = s.repo.FindVisible(ctx, s.db)
	if err != nil {
		return nil, err
	}

	groupIDs := make([]int64, 0, len(groups))
	for _, group := range groups {
		groupIDs = append(groupIDs, group.ID)
	}
	rollups, err := s.repo.Rollups(ctx, s.db, groupIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.Summary, 0, len(groups))
	for i := range groups {
		summary, err := s.buildSummary(ctx, &groups[i], rollups[groups[i].ID], false)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

func (s *Service) Get(ctx context.Context, groupID string) (*domain.Detail, error) {
	id, err := parseID(groupID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	group, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.ErrNotFound
	}
	if !domain.IsTerminal(group.Status) {
		s.syncOnRead(ctx, id)
	}
	return s.detail(ctx, id)
}

func (s *Service) Impact(ctx context.Context, groupID string) (*domain.ImpactReport, error) {
	detail, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	cityBusinesses := s.cfg.Impact.CityProjectionBusinesses
	participants := detail.BusinessCount
	if participants < 1 {
		participants = 1
	}
	scale := float64(cityBusinesses) / float64(participants)

	return &domain.ImpactReport{
		GroupID:                   detail.ID,
		CurrentUnits:              detail.CurrentUnits,
		EstimatedSavingsUSD:       detail.EstimatedSavingsUSD,
		EstimatedCO2SavedKg:       detail.EstimatedCO2SavedKg,
		EstimatedPlasticAvoidedKg: detail.EstimatedPlasticAvoidedKg,
		DeliveryMilesSaved:        detail.DeliveryMilesSaved,
		DeliveryTripsReduced:      detail.DeliveryTripsReduced,
		CityScaleProjection: domain.CityProjection{
			Businesses:               cityBusinesses,
			YearlyCO2SavedKg:         round2(detail.EstimatedCO2SavedKg * scale * 12),
			YearlyPlasticAvoidedKg:   round2(detail.EstimatedPlasticAvoidedKg * scale * 12),
			YearlyDeliveryMilesSaved: round2(detail.DeliveryMilesSaved * scale * 12),
		},
	}, nil
}

// lockGroup acquires row locks in a fixed order, supplier inventory before
// group, so concurrent joins and confirmations cannot deadlock.
func (s *Service) lockGroup(ctx context.Context, tx *gorm.DB, groupID int64) (*domain.BuyingGroup, *supplierdomain.SupplierProduct, error) {
	group, err := s.repo.FindByID(ctx, tx, groupID)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, nil, domain.ErrNotFound
	}

	var supplierProduct *supplierdomain.SupplierProduct
	if group.SupplierProductID != nil {
		supplierProduct, err = s.supplierRepo.FindByIDForUpdate(ctx, tx, *group.SupplierProductID)
		if err != nil {
			return nil, nil, err
		}
		if supplierProduct == nil {
			return nil, nil, supplierdomain.ErrNotFound
		}
	}

	group, err = s.repo.FindByIDForUpdate(ctx, tx, groupID)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, nil, domain.ErrNotFound
	}
	return group, supplierProduct, nil
}

// effectiveCapacity computes the group's unit ceiling from its target and
// the supplier inventory net of units reserved by sibling active groups.
func (s *Service) effectiveCapacity(ctx context.Context, tx *gorm.DB, group *domain.BuyingGroup, supplierProduct *supplierdomain.SupplierProduct) (int, error) {
	maxCapacity := group.TargetUnits
	if group.SupplierProductID == nil {
		return maxCapacity, nil
	}
	if supplierProduct == nil {
		return 0, supplierdomain.ErrNotFound
	}

	reserved, err := s.supplierRepo.ReservedUnits(ctx, tx, []int64{supplierProduct.ID}, group.ID)
	if err != nil {
		return 0, err
	}
	available := supplierProduct.AvailableUnits - reserved[supplierProduct.ID]
	if available < maxCapacity {
		maxCapacity = available
	}
	if maxCapacity < 0 {
		maxCapacity = 0
	}
	return maxCapacity, nil
}

// syncStatus applies the non-terminal transitions: a full group without
// quorum parks at capacity_reached; freed capacity re-opens it.
func (s *Service) syncStatus(ctx context.Context, tx *gorm.DB, group *domain.BuyingGroup, currentUnits, businessCount, maxCapacity int) error {
	next := group.Status
	if currentUnits >= maxCapacity && businessCount < group.MinBusinessesRequired {
		next = domain.StatusCapacityReached
	} else if group.Status == domain.StatusCapacityReached && currentUnits < maxCapacity {
		next = domain.StatusActive
	}
	if next == group.Status {
		return nil
	}
	group.Status = next
	return s.repo.UpdateStatus(ctx, tx, group.ID, next, group.ConfirmedAt)
}

// maybeConfirm runs the confirmation state machine for one group in its own
// transaction. Idempotent: a confirmed group is a no-op. On success with a
// supplier attached it decrements inventory and inserts the confirmed-order
// row exactly once; the post-commit notifier handles routing and email.
func (s *Service) maybeConfirm(ctx context.Context, groupID int64, override bool) error {
	confirmed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, supplierProduct, err := s.lockGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if domain.IsTerminal(group.Status) {
			return nil
		}

		rollups, err := s.repo.Rollups(ctx, tx, []int64{group.ID})
		if err != nil {
			return err
		}
		rollup := rollups[group.ID]

		maxCapacity, err := s.effectiveCapacity(ctx, tx, group, supplierProduct)
		if err != nil {
			return err
		}
		if err := s.syncStatus(ctx, tx, group, rollup.CurrentUnits, rollup.BusinessCount, maxCapacity); err != nil {
			return err
		}

		quorum := rollup.BusinessCount >= group.MinBusinessesRequired
		if (!quorum && !override) || rollup.CurrentUnits <= 0 {
			return nil
		}

		if supplierProduct != nil && supplierProduct.AvailableUnits < rollup.CurrentUnits {
			return domain.ErrInsufficientInventory
		}

		now := s.clock.Now()
		group.ConfirmedAt = &now
		if err := s.repo.UpdateStatus(ctx, tx, group.ID, domain.StatusConfirmed, &now); err != nil {
			return err
		}

		if group.SupplierBusinessID != nil {
			existing, err := s.repo.FindConfirmedOrderByGroup(ctx, tx, group.ID)
			if err != nil {
				return err
			}
			if existing == nil {
				if supplierProduct != nil {
					remaining := supplierProduct.AvailableUnits - rollup.CurrentUnits
					status := supplierProduct.Status
					if remaining <= 0 {
						remaining = 0
						status = supplierdomain.StatusSoldOut
					}
					if err := s.supplierRepo.UpdateInventory(ctx, tx, supplierProduct.ID, remaining, status); err != nil {
						return err
					}
				}
				order := domain.SupplierConfirmedOrder{
					ID:                 s.genID.Generate().Int64(),
					SupplierBusinessID: *group.SupplierBusinessID,
					SupplierProductID:  group.SupplierProductID,
					GroupID:            group.ID,
					TotalUnits:         rollup.CurrentUnits,
					BusinessCount:      rollup.BusinessCount,
					Status:             domain.StatusConfirmed,
					CreatedAt:          now,
				}
				if err := s.repo.InsertConfirmedOrder(ctx, tx, &order); err != nil {
					if db.IsDuplicateKeyErr(err) {
						return nil
					}
					return err
				}
			}
		}

		confirmed = true
		return nil
	})
	if err != nil {
		s.obs.ObserveConfirmation(metrics.OutcomeRejected)
		return err
	}

	if confirmed {
		s.obs.ObserveConfirmation(metrics.OutcomeAccepted)
		s.log.Info("group confirmed", zap.String("group_id", snowflake.ID(groupID).String()))
		if s.notifier != nil {
			s.notifier.GroupConfirmed(groupID)
		}
	}
	return nil
}

// syncOnRead re-evaluates the state machine on fetch paths. Read endpoints
// stay non-failing: a confirmation error here is logged and swallowed.
func (s *Service) syncOnRead(ctx context.Context, groupID int64) {
	if err := s.maybeConfirm(ctx, groupID, false); err != nil {
		s.log.Debug("status sync on read failed",
			zap.String("group_id", snowflake.ID(groupID).String()),
			zap.Error(err),
		)
	}
}

func (s *Service) detail(ctx context.Context, groupID int64) (*domain.Detail, error) {
	group, err := s.repo.FindByID(ctx, s.db, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.ErrNotFound
	}

	rollups, err := s.repo.Rollups(ctx, s.db, []int64{group.ID})
	if err != nil {
		return nil, err
	}
	summary, err := s.buildSummary(ctx, group, rollups[group.ID], true)
	if err != nil {
		return nil, err
	}

	commitments, err := s.repo.FindCommitments(ctx, s.db, group.ID)
	if err != nil {
		return nil, err
	}
	views := make([]domain.CommitmentView, 0, len(commitments))
	for _, commitment := range commitments {
		views = append(views, domain.CommitmentView{
			ID:         snowflake.ID(commitment.ID).String(),
			BusinessID: snowflake.ID(commitment.BusinessID).String(),
			Units:      commitment.Units,
			CreatedAt:  commitment.CreatedAt,
		})
	}

	return &domain.Detail{
		Summary:             *summary,
		CreatedByBusinessID: snowflake.ID(group.CreatedByBusinessID).String(),
		Commitments:         views,
	}, nil
}

func (s *Service) buildSummary(ctx context.Context, group *domain.BuyingGroup, rollup domain.Rollup, full bool) (*domain.Summary, error) {
	product, err := s.catalogRepo.FindByID(ctx, s.db, group.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, catalogdomain.ErrNotFound
	}

	var supplierProduct *supplierdomain.SupplierProduct
	var supplierAvailable *int
	if group.SupplierProductID != nil {
		supplierProduct, err = s.supplierRepo.FindByID(ctx, s.db, *group.SupplierProductID)
		if err != nil {
			return nil, err
		}
		if supplierProduct != nil {
			available := supplierProduct.AvailableUnits
			supplierAvailable = &available
		}
	}

	maxCapacity := group.TargetUnits
	if supplierProduct != nil {
		capacity, err := s.effectiveCapacity(ctx, s.db, group, supplierProduct)
		if err != nil {
			return nil, err
		}
		maxCapacity = capacity
	}
	remaining := maxCapacity - rollup.CurrentUnits
	if remaining < 0 {
		remaining = 0
	}

	m := domain.CalculateMetrics(domain.ProductEconomics{
		RetailUnitPrice:         product.RetailUnitPrice,
		BulkUnitPrice:           product.BulkUnitPrice,
		CO2PerUnitKg:            product.CO2PerUnitKg,
		PlasticAvoidedPerUnitKg: product.PlasticAvoidedPerUnitKg,
	}, rollup.CurrentUnits, rollup.BusinessCount, group.TargetUnits, s.deliveryConstants())

	retail, _ := product.RetailUnitPrice.Float64()
	bulk, _ := product.BulkUnitPrice.Float64()
	view := domain.ProductView{
		ID:              snowflake.ID(product.ID).String(),
		Name:            product.Name,
		Category:        product.Category,
		RetailUnitPrice: retail,
		BulkUnitPrice:   bulk,
		MinBulkUnits:    product.MinBulkUnits,
	}
	if full {
		view.Material = product.Material
		view.Certifications = product.Certifications
	}

	summary := &domain.Summary{
		ID:                     snowflake.ID(group.ID).String(),
		Status:                 group.Status,
		RegionID:               snowflake.ID(group.RegionID).String(),
		SupplierAvailableUnits: supplierAvailable,
		MinBusinessesRequired:  group.MinBusinessesRequired,
		ConfirmedAt:            group.ConfirmedAt,
		Deadline:               group.Deadline,
		TargetUnits:            group.TargetUnits,
		RemainingUnits:         remaining,
		Product:                view,
		Metrics:                m,
	}
	if group.SupplierBusinessID != nil {
		id := snowflake.ID(*group.SupplierBusinessID).String()
		summary.SupplierBusinessID = &id
	}
	if group.SupplierProductID != nil {
		id := snowflake.ID(*group.SupplierProductID).String()
		summary.SupplierProductID = &id
	}
	return summary, nil
}

func parseID(value string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}

func round2(value float64) float64 {
	return float64(int64(value*100+0.5)) / 100
}
