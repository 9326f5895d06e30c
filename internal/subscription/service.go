package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fitpass/internal/audit"
	"fitpass/internal/gym"
	"fitpass/internal/jobs"
	"fitpass/internal/logger"
	"fitpass/internal/metrics"
	"fitpass/internal/notification"
	"fitpass/internal/payment"
	"fitpass/internal/plan"
	"fitpass/internal/user"
)

var (
	ErrAlreadyActive    = errors.New("user already has an active subscription for this gym")
	ErrPaymentService   = errors.New("payment service error")
	ErrInvalidSignature = errors.New("invalid payment signature")
)

type Service interface {
	Create(ctx context.Context, userID, planID, gymID int, source Source) (*Subscription, *payment.Order, error)
	ActivateOnPayment(ctx context.Context, orderID, paymentID, signature string, subscriptionHint int) (*Subscription, error)
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) error
	ManualActivate(ctx context.Context, subscriptionID, actorID int) (*Subscription, error)
	CreateConsole(ctx context.Context, userID, planID, gymID, actorID int) (*Subscription, error)
	GetByID(ctx context.Context, id int) (*Subscription, error)
	ListByUser(ctx context.Context, userID int) ([]Subscription, error)
}

type service struct {
	subRepo  Repository
	planRepo plan.Repository
	gymRepo  gym.Repository
	payRepo  payment.Repository
	userRepo user.Repository
	gateway  payment.Gateway
	queue    jobs.Enqueuer
}

func NewService(
	subRepo Repository,
	planRepo plan.Repository,
	gymRepo gym.Repository,
	payRepo payment.Repository,
	userRepo user.Repository,
	gateway payment.Gateway,
	queue jobs.Enqueuer,
) Service {
	return &service{
		subRepo:  subRepo,
		planRepo: planRepo,
		gymRepo:  gymRepo,
		payRepo:  payRepo,
		userRepo: userRepo,
		gateway:  gateway,
		queue:    queue,
	}
}

func (s *service) Create(ctx context.Context, userID, planID, gymID int, source Source) (*Subscription, *payment.Order, error) {
	pl, g, err := s.loadPlanAndGym(ctx, planID, gymID)
	if err != nil {
		return nil, nil, err
	}

	active, err := s.subRepo.HasActiveForUserAndGym(ctx, userID, gymID)
	if err != nil {
		return nil, nil, err
	}
	if active {
		return nil, nil, ErrAlreadyActive
	}

	code, err := newAccessCode(ctx, s.subRepo.AccessCodeExists)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	params := CreateParams{
		UserID:      userID,
		GymID:       gymID,
		PlanID:      planID,
		Source:      source,
		AccessCode:  code,
		StartDate:   now,
		EndDate:     pl.PeriodEnd(now),
		AmountCents: pl.PriceCents,
	}

	var order *payment.Order
	sub, _, err := s.subRepo.CreatePendingWithPayment(ctx, params, func(subscriptionID int, amountCents int64) (string, error) {
		o, orderErr := s.gateway.CreateOrder(ctx, amountCents, fmt.Sprintf("sub_%d", subscriptionID), "INR", map[string]string{
			"gym":  g.Name,
			"plan": pl.Name,
		})
		if orderErr != nil {
			return "", orderErr
		}
		order = o
		return o.ID, nil
	})
	if err != nil {
		if errors.Is(err, payment.ErrProviderUnavailable) {
			logger.Errorf("Gateway order creation failed for user %d: %v", userID, err)
			return nil, nil, ErrPaymentService
		}
		return nil, nil, err
	}

	s.notify(ctx, jobs.NotificationJob{
		Event:  notification.EventSubscriptionCreated,
		UserID: userID,
		Data:   map[string]string{"gym": g.Name, "plan": pl.Name},
	})
	s.notify(ctx, jobs.NotificationJob{
		Event:  notification.EventPaymentInitiated,
		UserID: userID,
		Data:   map[string]string{"gym": g.Name, "amount": payment.FormatAmount(pl.PriceCents)},
	})

	logger.Infof("Subscription %d created pending for user %d at gym %d", sub.ID, userID, gymID)
	metrics.RecordSubscriptionCreated(string(source))

	return sub, order, nil
}

// ActivateOnPayment is the client-side verify path: the caller supplies the
// per-payment signature issued by the provider after checkout.
func (s *service) ActivateOnPayment(ctx context.Context, orderID, paymentID, signature string, subscriptionHint int) (*Subscription, error) {
	return s.confirm(ctx, orderID, paymentID, signature, subscriptionHint, false)
}

type webhookEvent struct {
	Event          string `json:"event"`
	OrderID        string `json:"order_id"`
	PaymentID      string `json:"payment_id"`
	Signature      string `json:"signature"`
	SubscriptionID int    `json:"subscription_id"`
}

// HandleWebhook is the gateway-push path. The raw body HMAC is checked before
// any state is touched; the payload is trusted only after that check passes.
func (s *service) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	var evt webhookEvent
	parseErr := json.Unmarshal(rawBody, &evt)

	if !s.gateway.VerifyWebhookSignature(rawBody, signature) {
		if parseErr == nil {
			s.failResolvedPayment(ctx, evt.OrderID, evt.PaymentID, evt.SubscriptionID)
		}
		return ErrInvalidSignature
	}

	if parseErr != nil {
		return fmt.Errorf("malformed webhook payload: %w", parseErr)
	}

	switch evt.Event {
	case "payment.captured", "order.paid":
		_, err := s.confirm(ctx, evt.OrderID, evt.PaymentID, evt.Signature, evt.SubscriptionID, true)
		return err
	default:
		logger.Debugf("Ignored webhook event: %s", evt.Event)
		return nil
	}
}

// confirm is the single idempotent confirmation path shared by the webhook and
// client verify transports. sigChecked marks transports whose signature proof
// was already established (webhook body HMAC).
func (s *service) confirm(ctx context.Context, orderID, paymentID, signature string, subscriptionHint int, sigChecked bool) (*Subscription, error) {
	pay, err := s.payRepo.ResolveForConfirmation(ctx, orderID, paymentID, subscriptionHint)
	if err != nil {
		return nil, err
	}

	// Idempotent short-circuit: a completed payment is terminal. Re-delivery
	// returns the current state without touching dates or re-issuing jobs.
	if pay.Status == payment.StatusCompleted {
		logger.Infof("Duplicate confirmation for payment %d ignored", pay.ID)
		return s.subRepo.GetByID(ctx, pay.SubscriptionID)
	}

	if !sigChecked && !s.gateway.VerifySignature(orderID, paymentID, signature) {
		s.markPaymentFailed(ctx, pay)
		return nil, ErrInvalidSignature
	}

	sub, err := s.subRepo.GetByID(ctx, pay.SubscriptionID)
	if err != nil {
		return nil, err
	}

	pl, err := s.planRepo.GetByID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	// Activation resets the access window to the moment of confirmed payment.
	now := time.Now()
	completed, err := s.subRepo.ActivateWithPayment(ctx, sub.ID, pay.ID, ActivationUpdate{
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
		GatewaySignature: signature,
		StartDate:        now,
		EndDate:          pl.PeriodEnd(now),
	})
	if err != nil {
		return nil, err
	}
	if !completed {
		// Lost the race against a concurrent confirmation; the winner already
		// activated and enqueued the side effects.
		logger.Infof("Concurrent confirmation won for payment %d", pay.ID)
		return s.subRepo.GetByID(ctx, sub.ID)
	}

	updated, err := s.subRepo.GetByID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}

	s.enqueueActivationEffects(ctx, updated, pay, pl)

	logger.Infof("Subscription %d activated on payment %d", sub.ID, pay.ID)
	metrics.RecordSubscriptionActivated("gateway")
	metrics.RecordPaymentCompleted(string(payment.MethodGateway))

	return updated, nil
}

func (s *service) enqueueActivationEffects(ctx context.Context, sub *Subscription, pay *payment.Payment, pl *plan.Plan) {
	gymName := ""
	ownerID := 0
	if g, err := s.gymRepo.GetGymByID(ctx, sub.GymID); err == nil {
		gymName = g.Name
		ownerID = g.OwnerID
	} else {
		logger.Errorf("Failed to load gym %d for activation effects: %v", sub.GymID, err)
	}

	memberName := ""
	if u, err := s.userRepo.FindByID(ctx, sub.UserID); err == nil {
		memberName = u.Name
	}

	s.notify(ctx, jobs.NotificationJob{
		Event:  notification.EventPaymentCompleted,
		UserID: sub.UserID,
		Data:   map[string]string{"gym": gymName, "amount": payment.FormatAmount(pay.AmountCents)},
	})
	s.notify(ctx, jobs.NotificationJob{
		Event:  notification.EventSubscriptionActivated,
		UserID: sub.UserID,
		Data:   map[string]string{"gym": gymName, "end_date": sub.EndDate.Format("Jan 2, 2006")},
	})
	if ownerID > 0 {
		s.notify(ctx, jobs.NotificationJob{
			Event:  notification.EventMemberJoined,
			UserID: ownerID,
			Data:   map[string]string{"gym": gymName, "plan": pl.Name, "member": memberName},
		})
	}

	if err := s.queue.Enqueue(ctx, jobs.QueueInvoice, jobs.InvoiceJob{
		SubscriptionID: sub.ID,
		PaymentID:      pay.ID,
		UserID:         sub.UserID,
		GymName:        gymName,
		PlanName:       pl.Name,
		AmountCents:    pay.AmountCents,
		AccessCode:     sub.AccessCode,
		IssuedAt:       time.Now(),
	}); err != nil {
		logger.Errorf("Failed to enqueue invoice job for payment %d: %v", pay.ID, err)
	}
}

func (s *service) markPaymentFailed(ctx context.Context, pay *payment.Payment) {
	if err := s.payRepo.MarkFailed(ctx, pay.ID); err != nil {
		logger.Errorf("Failed to mark payment %d failed: %v", pay.ID, err)
	}
	metrics.RecordPaymentFailed()

	sub, err := s.subRepo.GetByID(ctx, pay.SubscriptionID)
	if err != nil {
		return
	}
	gymName := ""
	if g, gymErr := s.gymRepo.GetGymByID(ctx, sub.GymID); gymErr == nil {
		gymName = g.Name
	}
	s.notify(ctx, jobs.NotificationJob{
		Event:  notification.EventPaymentFailed,
		UserID: sub.UserID,
		Data:   map[string]string{"gym": gymName},
	})
}

func (s *service) failResolvedPayment(ctx context.Context, orderID, paymentID string, subscriptionHint int) {
	pay, err := s.payRepo.ResolveForConfirmation(ctx, orderID, paymentID, subscriptionHint)
	if err != nil {
		return
	}
	if pay.Status != payment.StatusPending {
		return
	}
	s.markPaymentFailed(ctx, pay)
}

func (s *service) ManualActivate(ctx context.Context, subscriptionID, actorID int) (*Subscription, error) {
	sub, err := s.subRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == StatusActive {
		return nil, ErrAlreadyActive
	}

	pl, err := s.planRepo.GetByID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.subRepo.ManualActivate(ctx, sub.ID, payment.MethodManual, now, pl.PeriodEnd(now)); err != nil {
		return nil, err
	}

	updated, err := s.subRepo.GetByID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}

	gymName := ""
	if g, gymErr := s.gymRepo.GetGymByID(ctx, sub.GymID); gymErr == nil {
		gymName = g.Name
	}
	s.notify(ctx, jobs.NotificationJob{
		Event:  notification.EventSubscriptionActivated,
		UserID: sub.UserID,
		Data:   map[string]string{"gym": gymName, "end_date": updated.EndDate.Format("Jan 2, 2006")},
	})
	s.audit(ctx, jobs.AuditJob{
		Action:   audit.ActionActivateSubscription,
		Entity:   "subscription",
		EntityID: sub.ID,
		ActorID:  actorID,
		GymID:    sub.GymID,
	})

	logger.Infof("Subscription %d manually activated by actor %d", sub.ID, actorID)
	metrics.RecordSubscriptionActivated("manual")
	metrics.RecordPaymentCompleted(string(payment.MethodManual))

	return updated, nil
}

func (s *service) CreateConsole(ctx context.Context, userID, planID, gymID, actorID int) (*Subscription, error) {
	pl, g, err := s.loadPlanAndGym(ctx, planID, gymID)
	if err != nil {
		return nil, err
	}

	active, err := s.subRepo.HasActiveForUserAndGym(ctx, userID, gymID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrAlreadyActive
	}

	code, err := newAccessCode(ctx, s.subRepo.AccessCodeExists)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub, _, err := s.subRepo.CreateActivePaid(ctx, CreateParams{
		UserID:      userID,
		GymID:       gymID,
		PlanID:      planID,
		Source:      SourceConsole,
		AccessCode:  code,
		StartDate:   now,
		EndDate:     pl.PeriodEnd(now),
		AmountCents: pl.PriceCents,
	})
	if err != nil {
		return nil, err
	}

	memberName := ""
	if u, userErr := s.userRepo.FindByID(ctx, userID); userErr == nil {
		memberName = u.Name
	}

	s.notify(ctx, jobs.NotificationJob{
		Event:  notification.EventMemberAdded,
		UserID: g.OwnerID,
		Data:   map[string]string{"gym": g.Name, "member": memberName},
	})
	s.notify(ctx, jobs.NotificationJob{
		Event:  notification.EventSubscriptionActivated,
		UserID: userID,
		Data:   map[string]string{"gym": g.Name, "end_date": sub.EndDate.Format("Jan 2, 2006")},
	})
	s.audit(ctx, jobs.AuditJob{
		Action:   audit.ActionCreateSubscription,
		Entity:   "subscription",
		EntityID: sub.ID,
		ActorID:  actorID,
		GymID:    gymID,
		Details:  map[string]string{"source": string(SourceConsole)},
	})

	logger.Infof("Console subscription %d created for user %d by actor %d", sub.ID, userID, actorID)
	metrics.RecordSubscriptionCreated(string(SourceConsole))
	metrics.RecordPaymentCompleted(string(payment.MethodConsole))

	return sub, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Subscription, error) {
	return s.subRepo.GetByID(ctx, id)
}

func (s *service) ListByUser(ctx context.Context, userID int) ([]Subscription, error) {
	return s.subRepo.ListByUser(ctx, userID)
}

func (s *service) loadPlanAndGym(ctx context.Context, planID, gymID int) (*plan.Plan, *gym.Gym, error) {
	pl, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	if !pl.IsActive {
		return nil, nil, plan.ErrPlanNotFound
	}
	if pl.GymID != gymID {
		return nil, nil, plan.ErrPlanNotFound
	}

	g, err := s.gymRepo.GetGymByID(ctx, gymID)
	if err != nil {
		return nil, nil, err
	}

	return pl, g, nil
}

// notify and audit are fire-and-forget: an enqueue failure is logged and never
// surfaced to the financial caller.
func (s *service) notify(ctx context.Context, job jobs.NotificationJob) {
	if err := s.queue.Enqueue(ctx, jobs.QueueNotification, job); err != nil {
		logger.Errorf("Failed to enqueue %s notification for user %d: %v", job.Event, job.UserID, err)
	}
}

func (s *service) audit(ctx context.Context, job jobs.AuditJob) {
	if err := s.queue.Enqueue(ctx, jobs.QueueAudit, job); err != nil {
		logger.Errorf("Failed to enqueue audit entry %s for entity %d: %v", job.Action, job.EntityID, err)
	}
}
