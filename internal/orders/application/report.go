package application

import (
	"context"
	"sort"
	"time"

	"pooja-supplies/internal/orders/domain"
	"pooja-supplies/internal/orders/ports"
	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/money"
)

// SalesReportInput bounds the report. Zero times leave that side open.
type SalesReportInput struct {
	From time.Time
	To   time.Time
}

// MonthlySales is revenue for one calendar month in the store time zone
type MonthlySales struct {
	Month   string      `json:"month"`
	Orders  int         `json:"orders"`
	Revenue money.Money `json:"revenue"`
}

// SalesReport summarises orders for the admin dashboard. Cancelled orders
// are counted by status but earn no revenue.
type SalesReport struct {
	TotalOrders   int                        `json:"total_orders"`
	TotalRevenue  money.Money                `json:"total_revenue"`
	StatusCounts  map[domain.OrderStatus]int `json:"status_counts"`
	PendingReview int                        `json:"payments_under_review"`
	Monthly       []MonthlySales             `json:"monthly"`
}

// SalesReport aggregates revenue by month and counts orders per status
func (uc *OrderUseCase) SalesReport(ctx context.Context, input SalesReportInput) (*SalesReport, error) {
	if !input.From.IsZero() && !input.To.IsZero() && input.To.Before(input.From) {
		return nil, errors.NewValidation("'to' must not be before 'from'", nil)
	}

	orders, err := uc.repo.List(ctx, ports.OrderFilter{From: input.From, To: input.To})
	if err != nil {
		return nil, err
	}

	report := &SalesReport{
		StatusCounts: map[domain.OrderStatus]int{
			domain.OrderStatusPending:   0,
			domain.OrderStatusShipped:   0,
			domain.OrderStatusDelivered: 0,
			domain.OrderStatusCancelled: 0,
		},
	}
	months := map[string]*MonthlySales{}

	for _, o := range orders {
		report.TotalOrders++
		report.StatusCounts[o.Status]++
		if o.PaymentStatus == domain.PaymentStatusUnderReview {
			report.PendingReview++
		}
		if o.Status == domain.OrderStatusCancelled {
			continue
		}

		key := o.PlacedAt.In(uc.loc).Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &MonthlySales{Month: key}
			months[key] = m
		}
		m.Orders++
		if m.Revenue, err = m.Revenue.Add(o.TotalAmount); err != nil {
			return nil, errors.NewInternal("revenue out of range", err)
		}
		if report.TotalRevenue, err = report.TotalRevenue.Add(o.TotalAmount); err != nil {
			return nil, errors.NewInternal("revenue out of range", err)
		}
	}

	report.Monthly = make([]MonthlySales, 0, len(months))
	for _, m := range months {
		report.Monthly = append(report.Monthly, *m)
	}
	sort.Slice(report.Monthly, func(i, j int) bool {
		return report.Monthly[i].Month < report.Monthly[j].Month
	})

	return report, nil
}
