package api

import (
	"time"

	"pergola/internal/store"
	"pergola/internal/workflow"
)

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(dateTimeFormat)
}

func formatTimePtr(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return formatTime(*ts)
}

// FromStage converts a stage record to its API representation.
func FromStage(stage *store.Stage) Stage {
	if stage == nil {
		return Stage{}
	}
	return Stage{
		ID:          stage.ID,
		Name:        stage.Name,
		Slug:        stage.Slug,
		Position:    stage.Position,
		Probability: stage.Probability,
	}
}

// FromPipeline converts a pipeline and its stages.
func FromPipeline(pipeline *store.Pipeline, stages []*store.Stage) Pipeline {
	dto := Pipeline{Stages: []Stage{}}
	if pipeline != nil {
		dto.ID = pipeline.ID
		dto.Name = pipeline.Name
		dto.Slug = pipeline.Slug
	}
	for _, stage := range stages {
		dto.Stages = append(dto.Stages, FromStage(stage))
	}
	return dto
}

// FromOpportunity converts an opportunity record to its API representation.
func FromOpportunity(opp *store.Opportunity) Opportunity {
	if opp == nil {
		return Opportunity{}
	}
	return Opportunity{
		ID:                  opp.ID,
		Title:               opp.Title,
		Description:         opp.Description,
		AmountEstimated:     opp.AmountEstimated,
		AmountOffered:       opp.AmountOffered,
		AmountFinal:         opp.AmountFinal,
		StageID:             opp.StageID,
		PipelineID:          opp.PipelineID,
		OwnerID:             opp.OwnerID,
		OriginOpportunityID: opp.OriginOpportunityID,
		Briefing:            opp.Briefing,
		MeasurementData:     opp.MeasurementData,
		Priority:            opp.Priority,
		Source:              opp.Source,
		CreatedAt:           formatTime(opp.CreatedAt),
		UpdatedAt:           formatTime(opp.UpdatedAt),
		ClosedAt:            formatTimePtr(opp.ClosedAt),
		ProposalSentAt:      formatTimePtr(opp.ProposalSentAt),
	}
}

// FromOpportunities converts a slice of opportunity records.
func FromOpportunities(opps []*store.Opportunity) []Opportunity {
	out := make([]Opportunity, 0, len(opps))
	for _, opp := range opps {
		out = append(out, FromOpportunity(opp))
	}
	return out
}

// FromDelivery converts a delivery opportunity record.
func FromDelivery(delivery *store.DeliveryOpportunity) DeliveryOpportunity {
	if delivery == nil {
		return DeliveryOpportunity{}
	}
	return DeliveryOpportunity{
		ID:                      delivery.ID,
		CommercialOpportunityID: delivery.CommercialOpportunityID,
		Title:                   delivery.Title,
		OwnerID:                 delivery.OwnerID,
		AmountFinal:             delivery.AmountFinal,
		ExpectedInstallAt:       formatTimePtr(delivery.ExpectedInstallAt),
		StageID:                 delivery.StageID,
		PipelineID:              delivery.PipelineID,
		BillingStatus:           delivery.BillingStatus,
		CreatedAt:               formatTime(delivery.CreatedAt),
		UpdatedAt:               formatTime(delivery.UpdatedAt),
	}
}

// FromDeliveries converts a slice of delivery records.
func FromDeliveries(deliveries []*store.DeliveryOpportunity) []DeliveryOpportunity {
	out := make([]DeliveryOpportunity, 0, len(deliveries))
	for _, delivery := range deliveries {
		out = append(out, FromDelivery(delivery))
	}
	return out
}

// FromHistoryEntry converts a stage history record.
func FromHistoryEntry(entry *store.StageHistoryEntry) StageHistoryEntry {
	if entry == nil {
		return StageHistoryEntry{}
	}
	return StageHistoryEntry{
		ID:        entry.ID,
		StageID:   entry.StageID,
		EnteredAt: formatTime(entry.EnteredAt),
		ExitedAt:  formatTimePtr(entry.ExitedAt),
	}
}

// FromPayment converts a payment instruction record.
func FromPayment(payment *store.PaymentInstruction) PaymentInstruction {
	if payment == nil {
		return PaymentInstruction{}
	}
	return PaymentInstruction{
		ID:                      payment.ID,
		CommercialOpportunityID: payment.CommercialOpportunityID,
		DeliveryOpportunityID:   payment.DeliveryOpportunityID,
		SellerAmount:            payment.SellerAmount,
		SupplierAmount:          payment.SupplierAmount,
		InstallerAmount:         payment.InstallerAmount,
		TotalAmount:             payment.TotalAmount,
		Status:                  payment.Status,
		CreatedAt:               formatTime(payment.CreatedAt),
	}
}

// FromActivity converts an activity record.
func FromActivity(activity *store.Activity) Activity {
	if activity == nil {
		return Activity{}
	}
	return Activity{
		ID:                    activity.ID,
		OpportunityID:         activity.OpportunityID,
		DeliveryOpportunityID: activity.DeliveryOpportunityID,
		Title:                 activity.Title,
		Description:           activity.Description,
		Type:                  activity.Type,
		DueAt:                 formatTime(activity.DueAt),
		DoneAt:                formatTimePtr(activity.DoneAt),
		CreatedBy:             activity.CreatedBy,
		CreatedAt:             formatTime(activity.CreatedAt),
	}
}

// FromProposal converts a proposal record. The blob key stays server-side.
func FromProposal(proposal *store.Proposal) Proposal {
	if proposal == nil {
		return Proposal{}
	}
	return Proposal{
		ID:            proposal.ID,
		OpportunityID: proposal.OpportunityID,
		Version:       proposal.Version,
		TotalAmount:   proposal.TotalAmount,
		Status:        proposal.Status,
		FileName:      proposal.FileName,
		SentAt:        formatTimePtr(proposal.SentAt),
		CreatedAt:     formatTime(proposal.CreatedAt),
	}
}

// FromUser converts a user record, omitting the password hash.
func FromUser(user *store.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		InvitedAt: formatTimePtr(user.InvitedAt),
		CreatedAt: formatTime(user.CreatedAt),
	}
}

// FromReport converts a forecast summary.
func FromReport(summary *store.ReportSummary) ReportSummary {
	dto := ReportSummary{ByStage: []ForecastLine{}, ByOwner: []ForecastLine{}}
	if summary == nil {
		return dto
	}
	for _, line := range summary.ByStage {
		dto.ByStage = append(dto.ByStage, ForecastLine{Name: line.Name, Value: line.Value})
	}
	for _, line := range summary.ByOwner {
		dto.ByOwner = append(dto.ByOwner, ForecastLine{Name: line.Name, Value: line.Value})
	}
	dto.TotalForecast = summary.TotalForecast
	dto.ActiveDeals = summary.ActiveDeals
	return dto
}

// FromMoveResult converts a workflow transition result.
func FromMoveResult(result *workflow.Result) MoveResult {
	if result == nil {
		return MoveResult{}
	}
	dto := MoveResult{
		Stage:           FromStage(result.Stage),
		DeliveryCreated: result.DeliveryCreated,
		PaymentCreated:  result.PaymentCreated,
	}
	if result.Opportunity != nil {
		opp := FromOpportunity(result.Opportunity)
		dto.Opportunity = &opp
	}
	if result.Delivery != nil {
		delivery := FromDelivery(result.Delivery)
		dto.Delivery = &delivery
	}
	if result.DerivedDelivery != nil {
		derived := FromDelivery(result.DerivedDelivery)
		dto.DerivedDelivery = &derived
	}
	if result.DerivedPayment != nil {
		payment := FromPayment(result.DerivedPayment)
		dto.DerivedPayment = &payment
	}
	return dto
}
