package api

import (
	"context"
	"fmt"

	"pergola/internal/store"
)

// ListDeliveries returns the delivery pipeline's records.
func (s *Service) ListDeliveries(ctx context.Context) ([]DeliveryOpportunity, error) {
	pipeline, err := s.store.GetPipelineBySlug(ctx, store.PipelineDelivery)
	if err != nil {
		return nil, err
	}
	deliveries, err := s.store.ListDeliveryOpportunities(ctx, pipeline.ID)
	if err != nil {
		return nil, err
	}
	return FromDeliveries(deliveries), nil
}

// GetDelivery fetches one delivery record.
func (s *Service) GetDelivery(ctx context.Context, id string) (*DeliveryOpportunity, error) {
	delivery, err := s.store.GetDeliveryOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromDelivery(delivery)
	return &dto, nil
}

// SetBillingStatus updates a delivery's billing state.
func (s *Service) SetBillingStatus(ctx context.Context, id, status string) (*DeliveryOpportunity, error) {
	switch status {
	case store.BillingPending, store.BillingInvoiced, store.BillingPaid:
	default:
		return nil, fmt.Errorf("%w: invalid billing status %q", ErrValidation, status)
	}
	if err := s.store.SetBillingStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.GetDelivery(ctx, id)
}

// ListPayments returns every derived payment instruction.
func (s *Service) ListPayments(ctx context.Context) ([]PaymentInstruction, error) {
	payments, err := s.store.ListPaymentInstructions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentInstruction, 0, len(payments))
	for _, payment := range payments {
		out = append(out, FromPayment(payment))
	}
	return out, nil
}

// Forecast computes the commercial forecast report.
func (s *Service) Forecast(ctx context.Context) (*ReportSummary, error) {
	summary, err := s.store.ForecastReport(ctx)
	if err != nil {
		return nil, err
	}
	dto := FromReport(summary)
	return &dto, nil
}
