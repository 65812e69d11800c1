package workflow

import (
	"context"
	"fmt"
	"time"

	"pergola/internal/logging"
	"pergola/internal/store"
)

// Result reports what a stage transition did. Exactly one of Opportunity and
// Delivery is set, matching the pipeline the move happened in.
type Result struct {
	Opportunity *store.Opportunity
	Delivery    *store.DeliveryOpportunity
	Stage       *store.Stage

	// DerivedDelivery is the delivery opportunity spawned by a closed_won
	// move. Set even when the record already existed; DeliveryCreated tells
	// the two cases apart.
	DerivedDelivery *store.DeliveryOpportunity
	DeliveryCreated bool

	// DerivedPayment is the payment instruction spawned by a completed
	// delivery move, with PaymentCreated distinguishing replays.
	DerivedPayment *store.PaymentInstruction
	PaymentCreated bool
}

// UpdateOpportunityStage moves a record to a new stage within its pipeline
// and applies the stage's side effects. pipelineSlug selects which kind of
// record opportunityID names: "commercial" moves a sales opportunity,
// "delivery" moves a fulfillment record.
//
// Transitions are unrestricted: any stage of the record's pipeline is a legal
// target. Side effects key off the target stage's slug alone.
func (e *Engine) UpdateOpportunityStage(ctx context.Context, opportunityID, stageID, pipelineSlug string) (*Result, error) {
	switch pipelineSlug {
	case store.PipelineCommercial:
		return e.moveCommercial(ctx, opportunityID, stageID)
	case store.PipelineDelivery:
		return e.moveDelivery(ctx, opportunityID, stageID)
	default:
		return nil, fmt.Errorf("pipeline %q: %w", pipelineSlug, ErrUnknownPipeline)
	}
}

func (e *Engine) moveCommercial(ctx context.Context, opportunityID, stageID string) (*Result, error) {
	opp, err := e.store.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	stage, err := e.resolveStage(ctx, opp.PipelineID, stageID)
	if err != nil {
		return nil, err
	}

	if err := e.store.SetOpportunityStage(ctx, opp.ID, stage.ID); err != nil {
		return nil, err
	}
	if err := e.store.AppendStageHistory(ctx, opp.ID, stage.ID); err != nil {
		return nil, fmt.Errorf("record stage history: %w", err)
	}

	e.logger.Info("opportunity moved",
		logging.String(logging.FieldOpportunityID, opp.ID),
		logging.String(logging.FieldPipeline, store.PipelineCommercial),
		logging.String(logging.FieldStage, stage.Slug))

	result := &Result{Stage: stage}

	switch stage.Slug {
	case store.StageClosedWon:
		if err := e.store.MarkOpportunityClosed(ctx, opp.ID, time.Now()); err != nil {
			return nil, err
		}
		if err := e.deriveDelivery(ctx, opp, result); err != nil {
			return nil, err
		}
	case store.StageClosedLost:
		if err := e.store.MarkOpportunityClosed(ctx, opp.ID, time.Now()); err != nil {
			return nil, err
		}
	}

	moved, err := e.store.GetOpportunity(ctx, opp.ID)
	if err != nil {
		return nil, err
	}
	result.Opportunity = moved
	return result, nil
}

// deriveDelivery creates the fulfillment record for a won deal. The store's
// unique index on commercial_opportunity_id makes replays return the existing
// record instead of duplicating it.
func (e *Engine) deriveDelivery(ctx context.Context, opp *store.Opportunity, result *Result) error {
	pipeline, err := e.store.GetPipelineBySlug(ctx, store.PipelineDelivery)
	if err != nil {
		return fmt.Errorf("resolve delivery pipeline: %w", err)
	}
	firstStage, err := e.store.GetStageBySlug(ctx, pipeline.ID, store.StageMeasurementScheduling)
	if err != nil {
		return fmt.Errorf("resolve delivery entry stage: %w", err)
	}

	amount := opp.AmountFinal
	if amount <= 0 {
		amount = opp.AmountOffered
	}

	delivery, created, err := e.store.CreateDeliveryOpportunity(ctx, &store.DeliveryOpportunity{
		CommercialOpportunityID: opp.ID,
		Title:                   opp.Title,
		OwnerID:                 opp.OwnerID,
		AmountFinal:             amount,
		StageID:                 firstStage.ID,
		PipelineID:              pipeline.ID,
		BillingStatus:           store.BillingPending,
	})
	if err != nil {
		return fmt.Errorf("derive delivery opportunity: %w", err)
	}
	result.DerivedDelivery = delivery
	result.DeliveryCreated = created

	if created {
		e.logger.Info("delivery opportunity derived",
			logging.String(logging.FieldOpportunityID, opp.ID),
			logging.String("delivery_id", delivery.ID),
			logging.Float64("amount", amount))
		e.notify("deal_won", e.notifier.NotifyDealWon(ctx, opp.Title, amount))
	}
	return nil
}

func (e *Engine) moveDelivery(ctx context.Context, deliveryID, stageID string) (*Result, error) {
	delivery, err := e.store.GetDeliveryOpportunity(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	stage, err := e.resolveStage(ctx, delivery.PipelineID, stageID)
	if err != nil {
		return nil, err
	}

	if err := e.store.SetDeliveryStage(ctx, delivery.ID, stage.ID); err != nil {
		return nil, err
	}

	e.logger.Info("delivery moved",
		logging.String(logging.FieldOpportunityID, delivery.ID),
		logging.String(logging.FieldPipeline, store.PipelineDelivery),
		logging.String(logging.FieldStage, stage.Slug))

	result := &Result{Stage: stage}

	if stage.Slug == store.StageCompleted {
		if err := e.derivePayment(ctx, delivery, result); err != nil {
			return nil, err
		}
	}

	moved, err := e.store.GetDeliveryOpportunity(ctx, delivery.ID)
	if err != nil {
		return nil, err
	}
	result.Delivery = moved
	return result, nil
}

// derivePayment creates the payment instruction for a completed delivery.
// Idempotent for the same reason deriveDelivery is: a unique index on
// delivery_opportunity_id turns replays into no-ops.
func (e *Engine) derivePayment(ctx context.Context, delivery *store.DeliveryOpportunity, result *Result) error {
	split := DerivePaymentSplit(delivery.AmountFinal)
	payment, created, err := e.store.CreatePaymentInstruction(ctx, &store.PaymentInstruction{
		CommercialOpportunityID: delivery.CommercialOpportunityID,
		DeliveryOpportunityID:   delivery.ID,
		SellerAmount:            split.Seller,
		SupplierAmount:          split.Supplier,
		InstallerAmount:         split.Installer,
		TotalAmount:             split.Total,
		Status:                  store.PaymentStatusPending,
	})
	if err != nil {
		return fmt.Errorf("derive payment instruction: %w", err)
	}
	result.DerivedPayment = payment
	result.PaymentCreated = created

	e.notify("delivery_completed", e.notifier.NotifyDeliveryCompleted(ctx, delivery.Title))
	if created {
		e.logger.Info("payment instruction derived",
			logging.String("delivery_id", delivery.ID),
			logging.Float64("total", split.Total))
		e.notify("payment_created", e.notifier.NotifyPaymentCreated(ctx, delivery.Title, split.Total))
	}
	return nil
}
