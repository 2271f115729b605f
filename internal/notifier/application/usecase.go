package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"pooja-supplies/internal/notifier/domain"
	"pooja-supplies/internal/notifier/ports"
	"pooja-supplies/pkg/events"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/metrics"
)

var tracer = otel.Tracer("pooja-supplies/notifier")

// NotifierUseCase registers devices and turns order events into pushes
type NotifierUseCase struct {
	tokens ports.TokenRepository
	sender ports.PushSender
	log    *logger.Logger
	now    func() time.Time
}

// NewNotifierUseCase creates a new notifier use case
func NewNotifierUseCase(tokens ports.TokenRepository, sender ports.PushSender, log *logger.Logger) *NotifierUseCase {
	return &NotifierUseCase{
		tokens: tokens,
		sender: sender,
		log:    log,
		now:    time.Now,
	}
}

// RegisterTokenInput represents the input for registering a device
type RegisterTokenInput struct {
	UserID string
	Admin  bool
	Token  string
}

// RegisterToken stores a device token for the caller
func (uc *NotifierUseCase) RegisterToken(ctx context.Context, input RegisterTokenInput) (*domain.PushToken, error) {
	token, err := domain.NewPushToken(input.UserID, input.Token, input.Admin, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.tokens.Upsert(ctx, token); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("push token registered",
		zap.String("user_id", token.UserID),
		zap.Bool("admin", token.Admin),
	)
	return token, nil
}

// RemoveToken unregisters one of the caller's devices
func (uc *NotifierUseCase) RemoveToken(ctx context.Context, userID, token string) error {
	if userID == "" {
		return domain.ErrUserIDRequired
	}
	if err := uc.tokens.Delete(ctx, userID, token); err != nil {
		return err
	}
	uc.log.WithContext(ctx).Info("push token removed", zap.String("user_id", userID))
	return nil
}

// HandleEvent decodes an order event from the broker and notifies
func (uc *NotifierUseCase) HandleEvent(ctx context.Context, body []byte) error {
	var event events.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to unmarshal order event: %w", err)
	}

	switch event.EventType {
	case events.RoutingKeyOrderPlaced:
		return uc.HandleOrderPlaced(ctx, event.Payload)
	case events.RoutingKeyOrderUpdated:
		return uc.HandleOrderStatusChanged(ctx, event.Payload)
	default:
		uc.log.WithContext(ctx).Debug("ignoring event", zap.String("event_type", event.EventType))
		return nil
	}
}

// HandleOrderPlaced tells admins about a new order
func (uc *NotifierUseCase) HandleOrderPlaced(ctx context.Context, p events.OrderPayload) error {
	return uc.notify(ctx, "order.placed", p, domain.OrderPlacedNotice(p))
}

// HandleOrderStatusChanged tells the buyer, or the admins for payments to
// review, about a lifecycle transition
func (uc *NotifierUseCase) HandleOrderStatusChanged(ctx context.Context, p events.OrderPayload) error {
	notice, ok := domain.OrderUpdatedNotice(p)
	if !ok {
		return nil
	}
	return uc.notify(ctx, "order.updated", p, notice)
}

func (uc *NotifierUseCase) notify(ctx context.Context, span string, p events.OrderPayload, notice domain.Notice) error {
	ctx, sp := tracer.Start(ctx, "notify "+span)
	defer sp.End()
	sp.SetAttributes(
		attribute.String("order.id", p.OrderID),
		attribute.String("order.transition", p.Transition),
		attribute.Bool("notify.admins", notice.ToAdmins),
	)

	var (
		tokens []*domain.PushToken
		err    error
	)
	if notice.ToAdmins {
		tokens, err = uc.tokens.ListAdmins(ctx)
	} else {
		tokens, err = uc.tokens.ListByUser(ctx, p.UserID)
	}
	if err != nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, "token lookup failed")
		return err
	}
	if len(tokens) == 0 {
		metrics.RecordPushNotification(metrics.OutcomeSkipped)
		return nil
	}

	messages := notice.Fanout(tokens, map[string]string{"order_id": p.OrderID, "status": p.Status})
	tickets, err := uc.sender.Send(ctx, messages)
	if err != nil {
		metrics.RecordPushNotification(metrics.OutcomeFailed)
		sp.RecordError(err)
		sp.SetStatus(codes.Error, "push failed")
		// A retry would push again to every device that already got it.
		if len(tickets) == 0 {
			return err
		}
		uc.log.WithContext(ctx).Warn("push partly delivered",
			zap.String("order_id", p.OrderID),
			zap.Int("delivered", len(tickets)),
			zap.Int("devices", len(messages)),
			zap.Error(err),
		)
	}

	var dead []string
	for _, t := range tickets {
		switch {
		case t.OK:
			metrics.RecordPushNotification(metrics.OutcomeApplied)
		case t.DeviceNotRegistered:
			metrics.RecordPushNotification(metrics.OutcomeRejected)
			dead = append(dead, t.Token)
		default:
			metrics.RecordPushNotification(metrics.OutcomeFailed)
			uc.log.WithContext(ctx).Warn("push rejected",
				zap.String("order_id", p.OrderID),
				zap.String("error", t.Error),
			)
		}
	}

	if len(dead) > 0 {
		if err := uc.tokens.DeleteTokens(ctx, dead); err != nil {
			uc.log.WithContext(ctx).Error("failed to drop unregistered tokens", zap.Error(err))
		}
	}

	uc.log.WithContext(ctx).Info("notification sent",
		zap.String("order_id", p.OrderID),
		zap.String("title", notice.Title),
		zap.Int("devices", len(messages)),
		zap.Int("unregistered", len(dead)),
	)
	return nil
}
