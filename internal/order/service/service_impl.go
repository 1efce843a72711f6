package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/greensupply/greensupply/internal/clock"
	groupdomain "github.com/greensupply/greensupply/internal/group/domain"
	"github.com/greensupply/greensupply/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Repo      domain.Repository
	GroupRepo groupdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      domain.Repository
	groupRepo groupdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("order.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		groupRepo: p.GroupRepo,
	}
}

func (s *Service) ListSupplierOrders(ctx context.Context, supplierBusinessID string) ([]domain.SupplierOrderView, error) {
	var supplierID *int64
	if strings.TrimSpace(supplierBusinessID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(supplierBusinessID))
		if err != nil {
			return []domain.SupplierOrderView{}, nil
		}
		id := parsed.Int64()
		supplierID = &id
	}

	rows, err := s.repo.FindOrders(ctx, s.db, supplierID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.SupplierOrderView, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		view := domain.SupplierOrderView{
			ID:                 snowflake.ID(row.ID).String(),
			SupplierBusinessID: snowflake.ID(row.SupplierBusinessID).String(),
			GroupID:            snowflake.ID(row.GroupID).String(),
			TotalUnits:         row.TotalUnits,
			BusinessCount:      row.BusinessCount,
			Status:             row.Status,
			ScheduledStartAt:   row.ScheduledStartAt,
			EstimatedEndAt:     row.EstimatedEndAt,
			RouteTotalMiles:    row.RouteTotalMiles,
			RouteTotalMinutes:  row.RouteTotalMinutes,
			RoutePoints:        row.RoutePoints,
			GroupDisplayName:   displayName(row),
			ProductName:        row.DisplayProductName(),
			CreatedAt:          row.CreatedAt,
		}
		if row.SupplierProductID != nil {
			id := snowflake.ID(*row.SupplierProductID).String()
			view.SupplierProductID = &id
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) ListBusinessOrders(ctx context.Context, businessID string) ([]domain.BusinessOrderView, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(businessID))
	if err != nil {
		return []domain.BusinessOrderView{}, nil
	}
	id := parsed.Int64()

	rows, err := s.repo.FindOrdersForBusiness(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	s.reconcileCompleted(ctx, rows)

	views := make([]domain.BusinessOrderView, 0, len(rows))
	for i := range rows {
		row := &rows[i]

		yourUnits, err := s.repo.CommittedUnits(ctx, s.db, row.GroupID, id)
		if err != nil {
			return nil, err
		}

		participants, err := s.groupRepo.Participants(ctx, s.db, row.GroupID)
		if err != nil {
			return nil, err
		}
		participantViews := make([]domain.OrderParticipant, 0, len(participants))
		for _, participant := range participants {
			participantViews = append(participantViews, domain.OrderParticipant{
				BusinessID:      snowflake.ID(participant.BusinessID).String(),
				BusinessName:    participant.Name,
				BusinessAddress: participant.Address,
				Units:           participant.Units,
			})
		}

		views = append(views, domain.BusinessOrderView{
			ID:               snowflake.ID(row.ID).String(),
			GroupID:          snowflake.ID(row.GroupID).String(),
			GroupDisplayName: displayName(row),
			ProductName:      row.DisplayProductName(),
			Status:           row.Status,
			ScheduledStartAt: row.ScheduledStartAt,
			EstimatedEndAt:   row.EstimatedEndAt,
			TotalUnits:       row.TotalUnits,
			BusinessCount:    row.BusinessCount,
			YourUnits:        yourUnits,
			Participants:     participantViews,
			CreatedAt:        row.CreatedAt,
		})
	}
	return views, nil
}

// reconcileCompleted flips orders whose estimated delivery window has
// passed to completed, along with their groups. Best effort: a failed
// update keeps the stale status until the next fetch.
func (s *Service) reconcileCompleted(ctx context.Context, rows []domain.OrderRow) {
	now := s.clock.Now()
	for i := range rows {
		row := &rows[i]
		if row.Status != groupdomain.StatusConfirmed {
			continue
		}
		if row.EstimatedEndAt == nil || row.EstimatedEndAt.After(now) {
			continue
		}
		if err := s.repo.MarkCompleted(ctx, s.db, row.ID, row.GroupID); err != nil {
			s.log.Warn("order completion reconcile failed",
				zap.String("order_id", snowflake.ID(row.ID).String()),
				zap.Error(err),
			)
			continue
		}
		row.Status = groupdomain.StatusCompleted
	}
}

func displayName(row *domain.OrderRow) string {
	name := "Group Order"
	if productName := row.DisplayProductName(); productName != nil && *productName != "" {
		name = *productName
	}
	groupID := snowflake.ID(row.GroupID).String()
	if len(groupID) > 8 {
		groupID = groupID[:8]
	}
	return fmt.Sprintf("%s - %s", name, groupID)
}
