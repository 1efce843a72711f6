package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	businessdomain "github.com/greensupply/greensupply/internal/business/domain"
	"github.com/greensupply/greensupply/internal/clock"
	groupdomain "github.com/greensupply/greensupply/internal/group/domain"
	"github.com/greensupply/greensupply/internal/providers/directions"
	"github.com/greensupply/greensupply/internal/providers/email"
	"github.com/greensupply/greensupply/internal/route"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	queueSize   = 64
	taskTimeout = 60 * time.Second
)

type Params struct {
	fx.In

	Lifecycle    fx.Lifecycle
	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	GroupRepo    groupdomain.Repository
	BusinessRepo businessdomain.Repository
	Planner      *route.Planner
	Email        email.Provider
}

// Dispatcher runs post-commit confirmation side effects off the request
// path: route finalization, delivery scheduling and participant email.
// Failures here never touch the already-committed confirmation.
type Dispatcher struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	groupRepo    groupdomain.Repository
	businessRepo businessdomain.Repository
	planner      *route.Planner
	email        email.Provider

	queue chan int64
	wg    sync.WaitGroup
}

func New(p Params) groupdomain.ConfirmationNotifier {
	d := &Dispatcher{
		db:           p.DB,
		log:          p.Log.Named("notify.dispatcher"),
		clock:        p.Clock,
		groupRepo:    p.GroupRepo,
		businessRepo: p.BusinessRepo,
		planner:      p.Planner,
		email:        p.Email,
		queue:        make(chan int64, queueSize),
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			d.wg.Add(1)
			go d.run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(d.queue)
			done := make(chan struct{})
			go func() {
				d.wg.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
	return d
}

// GroupConfirmed enqueues the confirmation task without blocking the
// caller. A full queue drops the task with a warning; order views degrade
// gracefully without a route.
func (d *Dispatcher) GroupConfirmed(groupID int64) {
	select {
	case d.queue <- groupID:
	default:
		d.log.Warn("notification queue full, dropping task",
			zap.String("group_id", snowflake.ID(groupID).String()),
		)
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for groupID := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		d.process(ctx, groupID)
		cancel()
	}
}

func (d *Dispatcher) process(ctx context.Context, groupID int64) {
	log := d.log.With(zap.String("group_id", snowflake.ID(groupID).String()))

	group, err := d.groupRepo.FindByID(ctx, d.db, groupID)
	if err != nil || group == nil {
		log.Warn("confirmed group not loadable", zap.Error(err))
		return
	}

	participants, err := d.groupRepo.Participants(ctx, d.db, groupID)
	if err != nil {
		log.Warn("participants not loadable", zap.Error(err))
		return
	}

	if err := d.finalizeOrder(ctx, group, participants); err != nil {
		log.Warn("order schedule not finalized", zap.Error(err))
	}
	d.sendConfirmationEmail(ctx, group, participants, log)
}

// finalizeOrder computes the delivery route and writes schedule columns
// onto the confirmed-order row. The planner's fallback guarantees a route
// whenever the supplier has coordinates.
func (d *Dispatcher) finalizeOrder(ctx context.Context, group *groupdomain.BuyingGroup, participants []groupdomain.Participant) error {
	order, err := d.groupRepo.FindConfirmedOrderByGroup(ctx, d.db, group.ID)
	if err != nil {
		return err
	}
	if order == nil || order.ScheduledStartAt != nil {
		return nil
	}

	supplier, err := d.businessRepo.FindByID(ctx, d.db, order.SupplierBusinessID)
	if err != nil {
		return err
	}
	if supplier == nil || supplier.Latitude == nil || supplier.Longitude == nil {
		return nil
	}

	stops := make([]directions.Point, 0, len(participants))
	for _, participant := range participants {
		if participant.Latitude == nil || participant.Longitude == nil {
			continue
		}
		stops = append(stops, directions.Point{Lat: *participant.Latitude, Lng: *participant.Longitude})
	}

	plan := d.planner.Compute(ctx, directions.Point{Lat: *supplier.Latitude, Lng: *supplier.Longitude}, stops)
	start := route.NextBusinessDayStart(d.clock.Now())
	end := start.Add(time.Duration(plan.TotalMinutes * float64(time.Minute)))

	return d.groupRepo.UpdateOrderSchedule(ctx, d.db, order.ID, groupdomain.OrderSchedule{
		ScheduledStartAt:  start,
		EstimatedEndAt:    end,
		RouteTotalMiles:   plan.TotalMiles,
		RouteTotalMinutes: plan.TotalMinutes,
		RoutePoints:       plan.Points,
	})
}

func (d *Dispatcher) sendConfirmationEmail(ctx context.Context, group *groupdomain.BuyingGroup, participants []groupdomain.Participant, log *zap.Logger) {
	seen := make(map[string]struct{})
	recipients := make([]string, 0, len(participants))
	for _, participant := range participants {
		if participant.Email == nil || *participant.Email == "" {
			continue
		}
		if _, ok := seen[*participant.Email]; ok {
			continue
		}
		seen[*participant.Email] = struct{}{}
		recipients = append(recipients, *participant.Email)
	}
	if len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("GreenSupply Group Order Confirmed (%s)", snowflake.ID(group.ID).String())
	body := "Your group order has reached the confirmation threshold and is now confirmed. " +
		"Please check your dashboard for details."
	if err := d.email.Send(ctx, recipients, subject, body); err != nil {
		log.Warn("confirmation email not sent", zap.Error(err))
	}
}
