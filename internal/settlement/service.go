package settlement

import (
	"context"
	"strconv"

	"fitpass/internal/audit"
	"fitpass/internal/gym"
	"fitpass/internal/jobs"
	"fitpass/internal/logger"
	"fitpass/internal/metrics"
	"fitpass/internal/notification"
	"fitpass/internal/payment"
)

type Service interface {
	UnsettledSummary(ctx context.Context) ([]GymSummary, error)
	Create(ctx context.Context, gymID, actorID int) (*Settlement, error)
	Process(ctx context.Context, id int, transactionID, notes string, actorID int) (*Settlement, error)
	GetByID(ctx context.Context, id int) (*Settlement, error)
	ListAll(ctx context.Context) ([]Settlement, error)
}

type service struct {
	repo    Repository
	gymRepo gym.Repository
	queue   jobs.Enqueuer
}

func NewService(repo Repository, gymRepo gym.Repository, queue jobs.Enqueuer) Service {
	return &service{
		repo:    repo,
		gymRepo: gymRepo,
		queue:   queue,
	}
}

func (s *service) UnsettledSummary(ctx context.Context) ([]GymSummary, error) {
	return s.repo.UnsettledSummary(ctx)
}

func (s *service) Create(ctx context.Context, gymID, actorID int) (*Settlement, error) {
	g, err := s.gymRepo.GetGymByID(ctx, gymID)
	if err != nil {
		return nil, err
	}

	stl, err := s.repo.CreateForGym(ctx, gymID)
	if err != nil {
		return nil, err
	}

	metrics.RecordSettlement(stl.AmountCents)
	logger.Info("settlement created",
		"settlement_id", stl.ID, "gym_id", gymID, "amount_cents", stl.AmountCents)

	s.notify(ctx, jobs.NotificationJob{
		Event:  notification.EventSettlementCreated,
		UserID: g.OwnerID,
		Data: map[string]string{
			"gym":    g.Name,
			"amount": payment.FormatAmount(stl.AmountCents),
			"count":  strconv.Itoa(stl.PaymentCount),
		},
	})
	s.audit(ctx, jobs.AuditJob{
		Action:   audit.ActionCreateSettlement,
		Entity:   "settlement",
		EntityID: stl.ID,
		ActorID:  actorID,
		GymID:    gymID,
		Details: map[string]string{
			"amount_cents": strconv.FormatInt(stl.AmountCents, 10),
		},
	})

	return stl, nil
}

func (s *service) Process(ctx context.Context, id int, transactionID, notes string, actorID int) (*Settlement, error) {
	stl, err := s.repo.MarkProcessed(ctx, id, transactionID, notes)
	if err != nil {
		return nil, err
	}

	logger.Info("settlement processed",
		"settlement_id", stl.ID, "transaction_id", transactionID)

	if g, gymErr := s.gymRepo.GetGymByID(ctx, stl.GymID); gymErr == nil {
		s.notify(ctx, jobs.NotificationJob{
			Event:  notification.EventSettlementProcessed,
			UserID: g.OwnerID,
			Data: map[string]string{
				"gym":            g.Name,
				"transaction_id": transactionID,
			},
		})
	}
	s.audit(ctx, jobs.AuditJob{
		Action:   audit.ActionProcessSettlement,
		Entity:   "settlement",
		EntityID: stl.ID,
		ActorID:  actorID,
		GymID:    stl.GymID,
		Details: map[string]string{
			"transaction_id": transactionID,
		},
	})

	return stl, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Settlement, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListAll(ctx context.Context) ([]Settlement, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) notify(ctx context.Context, job jobs.NotificationJob) {
	if err := s.queue.Enqueue(ctx, jobs.QueueNotification, job); err != nil {
		logger.Error("enqueue notification", "event", job.Event, "error", err)
	}
}

func (s *service) audit(ctx context.Context, job jobs.AuditJob) {
	if err := s.queue.Enqueue(ctx, jobs.QueueAudit, job); err != nil {
		logger.Error("enqueue audit", "action", job.Action, "error", err)
	}
}
