package application

import (
	"context"

	"go.uber.org/zap"

	"pooja-supplies/internal/orders/domain"
	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/events"
	"pooja-supplies/pkg/metrics"
)

var transitionNames = map[domain.OrderStatus]string{
	domain.OrderStatusShipped:   events.TransitionShipped,
	domain.OrderStatusDelivered: events.TransitionDelivered,
	domain.OrderStatusCancelled: events.TransitionCancelled,
}

// AdvanceStatusInput represents an admin status change
type AdvanceStatusInput struct {
	ID     string
	Status string
}

// AdvanceStatus moves an order forward. Only the request that wins the
// status compare-and-set to Delivered decrements stock.
func (uc *OrderUseCase) AdvanceStatus(ctx context.Context, input AdvanceStatusInput) (*OrderOutput, error) {
	to, err := domain.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, err
	}
	transition := transitionNames[to]
	if transition == "" {
		transition = string(to)
	}

	order, err := uc.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	check := func(o *domain.Order) error { return o.CheckTransition(to) }
	if err := uc.setStatus(ctx, order, to, transition, check); err != nil {
		return nil, err
	}

	output := &OrderOutput{Order: order}
	if to != domain.OrderStatusDelivered {
		return output, nil
	}

	if err := uc.applyStock(ctx, order); err != nil {
		// The delivery stands; ReconcileStock finishes the decrement.
		uc.log.WithContext(ctx).Warn("stock decrement deferred",
			zap.Error(err),
			zap.String("order_id", order.ID),
		)
		output.StockPending = true
	}

	if uc.codAutoPaid && order.PaymentMethod == domain.PaymentMethodCOD && order.PaymentStatus != domain.PaymentStatusPaid {
		if err := uc.setPaymentStatus(ctx, order, domain.PaymentStatusPaid, nil, events.TransitionPaid, (*domain.Order).CheckMarkPaid); err != nil {
			uc.log.WithContext(ctx).Warn("failed to mark delivered COD order paid",
				zap.Error(err),
				zap.String("order_id", order.ID),
			)
		}
	}

	return output, nil
}

// CancelOrderInput identifies an order and the caller cancelling it
type CancelOrderInput struct {
	ID     string
	UserID string
	Admin  bool
}

// CancelOrder cancels a Pending order. Stock is untouched.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, input CancelOrderInput) (*OrderOutput, error) {
	order, err := uc.visibleOrder(ctx, input.ID, input.UserID, input.Admin)
	if err != nil {
		return nil, err
	}

	if err := uc.setStatus(ctx, order, domain.OrderStatusCancelled, events.TransitionCancelled, (*domain.Order).CheckCancel); err != nil {
		return nil, err
	}
	return &OrderOutput{Order: order}, nil
}

// SubmitUTRInput carries the buyer's UPI transaction reference
type SubmitUTRInput struct {
	ID     string
	UserID string
	Admin  bool
	UTR    string
}

// SubmitUTR records a UTR and puts the payment under review
func (uc *OrderUseCase) SubmitUTR(ctx context.Context, input SubmitUTRInput) (*OrderOutput, error) {
	order, err := uc.visibleOrder(ctx, input.ID, input.UserID, input.Admin)
	if err != nil {
		return nil, err
	}

	utr := domain.NormalizeUTR(input.UTR)
	check := func(o *domain.Order) error { return o.CheckSubmitUTR(utr) }
	if err := uc.setPaymentStatus(ctx, order, domain.PaymentStatusUnderReview, &utr, events.TransitionUTRSubmitted, check); err != nil {
		return nil, err
	}
	return &OrderOutput{Order: order}, nil
}

// MarkPaid marks an order's payment as received
func (uc *OrderUseCase) MarkPaid(ctx context.Context, id string) (*OrderOutput, error) {
	order, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.setPaymentStatus(ctx, order, domain.PaymentStatusPaid, nil, events.TransitionPaid, (*domain.Order).CheckMarkPaid); err != nil {
		return nil, err
	}
	return &OrderOutput{Order: order}, nil
}

// ReconcileStock applies the delivery stock decrement of a Delivered order
// that did not finish. Repeating it never decrements twice.
func (uc *OrderUseCase) ReconcileStock(ctx context.Context, id string) (*OrderOutput, error) {
	order, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusDelivered {
		return nil, domain.NewNotDelivered(order)
	}
	if order.StockApplied() {
		return &OrderOutput{Order: order}, nil
	}

	if err := uc.applyStock(ctx, order); err != nil {
		return nil, err
	}
	return &OrderOutput{Order: order}, nil
}

// ReconcilePendingStock retries the stock decrement for up to limit
// Delivered orders and returns how many were completed
func (uc *OrderUseCase) ReconcilePendingStock(ctx context.Context, limit int) (int, error) {
	orders, err := uc.repo.ListStockPending(ctx, limit)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, order := range orders {
		if err := uc.applyStock(ctx, order); err != nil {
			uc.log.WithContext(ctx).Warn("stock reconciliation failed",
				zap.Error(err),
				zap.String("order_id", order.ID),
			)
			continue
		}
		done++
	}

	if len(orders) > 0 {
		uc.log.WithContext(ctx).Info("stock reconciliation finished",
			zap.Int("pending", len(orders)),
			zap.Int("applied", done),
		)
	}
	return done, nil
}

// setStatus compare-and-sets the order status and publishes the transition
func (uc *OrderUseCase) setStatus(ctx context.Context, order *domain.Order, to domain.OrderStatus, transition string, check func(*domain.Order) error) error {
	if err := check(order); err != nil {
		metrics.RecordTransition(transition, metrics.OutcomeRejected)
		return err
	}

	ok, err := uc.repo.CompareAndSetStatus(ctx, order.ID, order.Status, to)
	if err != nil {
		metrics.RecordTransition(transition, metrics.OutcomeFailed)
		return err
	}
	if !ok {
		metrics.RecordTransition(transition, metrics.OutcomeRejected)
		return uc.lostRace(ctx, order.ID, check)
	}

	from := order.Status
	order.Status = to
	order.UpdatedAt = uc.now()
	metrics.RecordTransition(transition, metrics.OutcomeApplied)

	uc.log.WithContext(ctx).Info("order status changed",
		zap.String("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	uc.publishUpdated(ctx, order, transition)
	return nil
}

// setPaymentStatus compare-and-sets the payment status and publishes the transition
func (uc *OrderUseCase) setPaymentStatus(ctx context.Context, order *domain.Order, to domain.PaymentStatus, utr *string, transition string, check func(*domain.Order) error) error {
	if err := check(order); err != nil {
		metrics.RecordTransition(transition, metrics.OutcomeRejected)
		return err
	}

	ok, err := uc.repo.CompareAndSetPaymentStatus(ctx, order.ID, order.PaymentStatus, to, utr)
	if err != nil {
		metrics.RecordTransition(transition, metrics.OutcomeFailed)
		return err
	}
	if !ok {
		metrics.RecordTransition(transition, metrics.OutcomeRejected)
		return uc.lostRace(ctx, order.ID, check)
	}

	from := order.PaymentStatus
	order.PaymentStatus = to
	if utr != nil {
		order.UPITransactionID = *utr
	}
	order.UpdatedAt = uc.now()
	metrics.RecordTransition(transition, metrics.OutcomeApplied)

	uc.log.WithContext(ctx).Info("payment status changed",
		zap.String("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	uc.publishUpdated(ctx, order, transition)
	return nil
}

// lostRace re-reads an order after a failed compare-and-set and reports
// why the transition no longer applies
func (uc *OrderUseCase) lostRace(ctx context.Context, id string, check func(*domain.Order) error) error {
	current, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := check(current); err != nil {
		return err
	}
	return domain.NewConcurrentUpdate(current)
}

// applyStock decrements stock for every line of a delivered order. The
// order ID is the idempotency reference, so a retry skips lines the
// catalog already applied.
func (uc *OrderUseCase) applyStock(ctx context.Context, order *domain.Order) error {
	for _, line := range order.Lines {
		stock, err := uc.catalog.DecrementStock(ctx, line.ProductID, line.Quantity, order.ID)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				// Deleted products have no stock left to track.
				metrics.RecordStockDecrement(metrics.OutcomeSkipped)
				uc.log.WithContext(ctx).Warn("product gone, stock decrement skipped",
					zap.String("order_id", order.ID),
					zap.String("product_id", line.ProductID),
				)
				continue
			}
			metrics.RecordStockDecrement(metrics.OutcomeFailed)
			return err
		}
		metrics.RecordStockDecrement(metrics.OutcomeApplied)
		uc.log.WithContext(ctx).Debug("stock decremented",
			zap.String("order_id", order.ID),
			zap.String("product_id", line.ProductID),
			zap.Int("quantity", line.Quantity),
			zap.Int("stock", stock),
		)
	}

	at := uc.now()
	if err := uc.repo.MarkStockApplied(ctx, order.ID, at); err != nil {
		return err
	}
	order.StockAppliedAt = &at
	return nil
}

func (uc *OrderUseCase) publishUpdated(ctx context.Context, order *domain.Order, transition string) {
	err := uc.publish(ctx, func(ctx context.Context) error {
		return uc.publisher.PublishOrderUpdated(ctx, order, transition)
	})
	if err != nil {
		uc.log.WithContext(ctx).Error("failed to publish order updated event",
			zap.Error(err),
			zap.String("order_id", order.ID),
			zap.String("transition", transition),
		)
	}
}
