package store_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"pergola/internal/store"
	"pergola/internal/testsupport"
)

func TestOpenSeedsDefaultPipelines(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	pipelines, err := st.ListPipelines(ctx)
	if err != nil {
		t.Fatalf("list pipelines: %v", err)
	}
	if len(pipelines) != 2 {
		t.Fatalf("expected 2 seeded pipelines, got %d", len(pipelines))
	}

	commercial, err := st.GetPipelineBySlug(ctx, store.PipelineCommercial)
	if err != nil {
		t.Fatalf("commercial pipeline: %v", err)
	}
	stages, err := st.ListStages(ctx, commercial.ID)
	if err != nil {
		t.Fatalf("list commercial stages: %v", err)
	}
	wantSlugs := []string{"new", "briefing", "proposal_sent", "negotiation", store.StageClosedWon, store.StageClosedLost}
	wantProbs := []int{10, 25, 50, 75, 100, 0}
	if len(stages) != len(wantSlugs) {
		t.Fatalf("expected %d commercial stages, got %d", len(wantSlugs), len(stages))
	}
	for i, stage := range stages {
		if stage.Slug != wantSlugs[i] {
			t.Errorf("stage %d slug = %q, want %q", i, stage.Slug, wantSlugs[i])
		}
		if stage.Probability != wantProbs[i] {
			t.Errorf("stage %s probability = %d, want %d", stage.Slug, stage.Probability, wantProbs[i])
		}
		if stage.Position != i+1 {
			t.Errorf("stage %s position = %d, want %d", stage.Slug, stage.Position, i+1)
		}
	}

	delivery, err := st.GetPipelineBySlug(ctx, store.PipelineDelivery)
	if err != nil {
		t.Fatalf("delivery pipeline: %v", err)
	}
	deliveryStages, err := st.ListStages(ctx, delivery.ID)
	if err != nil {
		t.Fatalf("list delivery stages: %v", err)
	}
	if len(deliveryStages) != 5 {
		t.Fatalf("expected 5 delivery stages, got %d", len(deliveryStages))
	}
	if deliveryStages[0].Slug != store.StageMeasurementScheduling {
		t.Errorf("first delivery stage = %q, want %q", deliveryStages[0].Slug, store.StageMeasurementScheduling)
	}
	if deliveryStages[4].Slug != store.StageCompleted {
		t.Errorf("last delivery stage = %q, want %q", deliveryStages[4].Slug, store.StageCompleted)
	}
}

func TestReopenKeepsSeedData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewOpportunity(t, st, nil)
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	pipelines, err := reopened.ListPipelines(ctx)
	if err != nil {
		t.Fatalf("list pipelines after reopen: %v", err)
	}
	if len(pipelines) != 2 {
		t.Fatalf("expected seed data to survive reopen, got %d pipelines", len(pipelines))
	}
	commercial, err := reopened.GetPipelineBySlug(ctx, store.PipelineCommercial)
	if err != nil {
		t.Fatalf("commercial pipeline: %v", err)
	}
	opps, err := reopened.ListOpportunities(ctx, commercial.ID)
	if err != nil {
		t.Fatalf("list opportunities after reopen: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity after reopen, got %d", len(opps))
	}
}

func TestOpportunityLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	opp := testsupport.NewOpportunity(t, st, func(o *store.Opportunity) {
		o.Title = "Pergola for patio"
		o.AmountEstimated = 18000
	})
	if opp.ID == "" {
		t.Fatal("expected generated opportunity id")
	}
	if opp.Priority != store.PriorityMedium {
		t.Fatalf("priority = %q, want %q", opp.Priority, store.PriorityMedium)
	}

	opp.AmountOffered = 17500
	opp.Briefing = `{"structure":"wood","covering":"glass"}`
	if err := st.UpdateOpportunity(ctx, opp); err != nil {
		t.Fatalf("update opportunity: %v", err)
	}

	fetched, err := st.GetOpportunity(ctx, opp.ID)
	if err != nil {
		t.Fatalf("get opportunity: %v", err)
	}
	if fetched.AmountOffered != 17500 {
		t.Errorf("amount offered = %v, want 17500", fetched.AmountOffered)
	}
	if fetched.Briefing != opp.Briefing {
		t.Errorf("briefing = %q, want %q", fetched.Briefing, opp.Briefing)
	}
	if !fetched.UpdatedAt.After(fetched.CreatedAt) && !fetched.UpdatedAt.Equal(fetched.CreatedAt) {
		t.Errorf("updated_at %v precedes created_at %v", fetched.UpdatedAt, fetched.CreatedAt)
	}

	negotiation := testsupport.MustStage(t, st, store.PipelineCommercial, "negotiation")
	if err := st.SetOpportunityStage(ctx, opp.ID, negotiation.ID); err != nil {
		t.Fatalf("set stage: %v", err)
	}
	moved, err := st.GetOpportunity(ctx, opp.ID)
	if err != nil {
		t.Fatalf("get after move: %v", err)
	}
	if moved.StageID != negotiation.ID {
		t.Errorf("stage id = %q, want %q", moved.StageID, negotiation.ID)
	}

	if err := st.DeleteOpportunity(ctx, opp.ID); err != nil {
		t.Fatalf("delete opportunity: %v", err)
	}
	if _, err := st.GetOpportunity(ctx, opp.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGetOpportunityMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if _, err := st.GetOpportunity(context.Background(), "no-such-id"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateDeliveryOpportunityIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	opp := testsupport.NewOpportunity(t, st, func(o *store.Opportunity) {
		o.AmountFinal = 21000
	})
	deliveryPipeline, err := st.GetPipelineBySlug(ctx, store.PipelineDelivery)
	if err != nil {
		t.Fatalf("delivery pipeline: %v", err)
	}
	firstStage := testsupport.MustStage(t, st, store.PipelineDelivery, store.StageMeasurementScheduling)

	delivery, created, err := st.CreateDeliveryOpportunity(ctx, &store.DeliveryOpportunity{
		CommercialOpportunityID: opp.ID,
		Title:                   opp.Title,
		AmountFinal:             opp.AmountFinal,
		StageID:                 firstStage.ID,
		PipelineID:              deliveryPipeline.ID,
	})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	if !created {
		t.Fatal("expected first create to report created=true")
	}
	if delivery.BillingStatus != store.BillingPending {
		t.Errorf("billing status = %q, want %q", delivery.BillingStatus, store.BillingPending)
	}

	again, created, err := st.CreateDeliveryOpportunity(ctx, &store.DeliveryOpportunity{
		CommercialOpportunityID: opp.ID,
		Title:                   "duplicate attempt",
		AmountFinal:             99999,
		StageID:                 firstStage.ID,
		PipelineID:              deliveryPipeline.ID,
	})
	if err != nil {
		t.Fatalf("second create delivery: %v", err)
	}
	if created {
		t.Fatal("expected second create to report created=false")
	}
	if again.ID != delivery.ID {
		t.Errorf("duplicate create returned id %q, want existing %q", again.ID, delivery.ID)
	}
	if again.AmountFinal != 21000 {
		t.Errorf("duplicate create overwrote amount: %v", again.AmountFinal)
	}

	byCommercial, err := st.GetDeliveryByCommercialID(ctx, opp.ID)
	if err != nil {
		t.Fatalf("get by commercial id: %v", err)
	}
	if byCommercial.ID != delivery.ID {
		t.Errorf("lookup by commercial id = %q, want %q", byCommercial.ID, delivery.ID)
	}
}

func TestCreatePaymentInstructionIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	opp := testsupport.NewOpportunity(t, st, func(o *store.Opportunity) {
		o.AmountFinal = 10000
	})
	deliveryPipeline, err := st.GetPipelineBySlug(ctx, store.PipelineDelivery)
	if err != nil {
		t.Fatalf("delivery pipeline: %v", err)
	}
	stage := testsupport.MustStage(t, st, store.PipelineDelivery, store.StageCompleted)
	delivery, _, err := st.CreateDeliveryOpportunity(ctx, &store.DeliveryOpportunity{
		CommercialOpportunityID: opp.ID,
		Title:                   opp.Title,
		AmountFinal:             opp.AmountFinal,
		StageID:                 stage.ID,
		PipelineID:              deliveryPipeline.ID,
	})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}

	payment, created, err := st.CreatePaymentInstruction(ctx, &store.PaymentInstruction{
		CommercialOpportunityID: opp.ID,
		DeliveryOpportunityID:   delivery.ID,
		SellerAmount:            500,
		SupplierAmount:          4000,
		InstallerAmount:         150,
		TotalAmount:             4650,
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if !created {
		t.Fatal("expected first payment create to report created=true")
	}
	if payment.Status != store.PaymentStatusPending {
		t.Errorf("payment status = %q, want %q", payment.Status, store.PaymentStatusPending)
	}

	again, created, err := st.CreatePaymentInstruction(ctx, &store.PaymentInstruction{
		DeliveryOpportunityID: delivery.ID,
		SellerAmount:          1,
	})
	if err != nil {
		t.Fatalf("second create payment: %v", err)
	}
	if created {
		t.Fatal("expected second payment create to report created=false")
	}
	if again.ID != payment.ID || again.SellerAmount != 500 {
		t.Errorf("duplicate create changed payment: id=%q seller=%v", again.ID, again.SellerAmount)
	}

	all, err := st.ListPaymentInstructions(ctx)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 payment instruction, got %d", len(all))
	}
}

func TestStageHistoryClosesPreviousEntry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	opp := testsupport.NewOpportunity(t, st, nil)
	first := testsupport.MustStage(t, st, store.PipelineCommercial, "new")
	second := testsupport.MustStage(t, st, store.PipelineCommercial, "briefing")

	if err := st.AppendStageHistory(ctx, opp.ID, first.ID); err != nil {
		t.Fatalf("append first entry: %v", err)
	}
	if err := st.AppendStageHistory(ctx, opp.ID, second.ID); err != nil {
		t.Fatalf("append second entry: %v", err)
	}

	history, err := st.ListStageHistory(ctx, opp.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].StageID != first.ID {
		t.Errorf("first entry stage = %q, want %q", history[0].StageID, first.ID)
	}
	if history[0].ExitedAt == nil {
		t.Error("expected first entry to be closed when second stage entered")
	}
	if history[1].StageID != second.ID {
		t.Errorf("second entry stage = %q, want %q", history[1].StageID, second.ID)
	}
	if history[1].ExitedAt != nil {
		t.Error("expected current entry to remain open")
	}
}

func TestActivityRequiresExactlyOneParent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	due := time.Now().Add(24 * time.Hour)
	if _, err := st.CreateActivity(ctx, &store.Activity{Title: "orphan", DueAt: due}); err == nil {
		t.Fatal("expected error for activity with no parent")
	}
	if _, err := st.CreateActivity(ctx, &store.Activity{
		Title:                 "double parent",
		OpportunityID:         "a",
		DeliveryOpportunityID: "b",
		DueAt:                 due,
	}); err == nil {
		t.Fatal("expected error for activity with two parents")
	}
}

func TestActivityListingAndCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	opp := testsupport.NewOpportunity(t, st, nil)
	due := time.Now().Add(48 * time.Hour)

	call, err := st.CreateActivity(ctx, &store.Activity{
		OpportunityID: opp.ID,
		Title:         "Call customer",
		Type:          "call",
		DueAt:         due,
	})
	if err != nil {
		t.Fatalf("create call activity: %v", err)
	}
	visit, err := st.CreateActivity(ctx, &store.Activity{
		OpportunityID: opp.ID,
		Title:         "Site visit",
		DueAt:         due.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("create visit activity: %v", err)
	}
	if visit.Type != "task" {
		t.Errorf("default activity type = %q, want task", visit.Type)
	}

	pending, err := st.ListActivities(ctx, store.ActivityFilter{OpportunityID: opp.ID, Pending: true})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending activities, got %d", len(pending))
	}
	if pending[0].ID != visit.ID {
		t.Errorf("expected due-date ordering, first = %q", pending[0].Title)
	}

	if err := st.CompleteActivity(ctx, call.ID); err != nil {
		t.Fatalf("complete activity: %v", err)
	}
	done, err := st.GetActivity(ctx, call.ID)
	if err != nil {
		t.Fatalf("get completed activity: %v", err)
	}
	if done.DoneAt == nil {
		t.Fatal("expected done_at to be stamped")
	}

	pending, err = st.ListActivities(ctx, store.ActivityFilter{OpportunityID: opp.ID, Pending: true})
	if err != nil {
		t.Fatalf("list pending after completion: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending activity, got %d", len(pending))
	}
}

func TestProposalVersioningAndSend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	opp := testsupport.NewOpportunity(t, st, nil)

	v1, err := st.CreateProposal(ctx, &store.Proposal{
		OpportunityID: opp.ID,
		TotalAmount:   15000,
		FileKey:       "proposals/" + opp.ID + "/v1.pdf",
		FileName:      "proposal.pdf",
	})
	if err != nil {
		t.Fatalf("create proposal v1: %v", err)
	}
	if v1.Version != 1 {
		t.Fatalf("first proposal version = %d, want 1", v1.Version)
	}
	if v1.Status != "draft" {
		t.Errorf("default status = %q, want draft", v1.Status)
	}

	v2, err := st.CreateProposal(ctx, &store.Proposal{
		OpportunityID: opp.ID,
		TotalAmount:   14500,
	})
	if err != nil {
		t.Fatalf("create proposal v2: %v", err)
	}
	if v2.Version != 2 {
		t.Fatalf("second proposal version = %d, want 2", v2.Version)
	}

	proposals, err := st.ListProposals(ctx, opp.ID)
	if err != nil {
		t.Fatalf("list proposals: %v", err)
	}
	if len(proposals) != 2 || proposals[0].Version != 2 {
		t.Fatalf("expected newest-first listing, got %+v", proposals)
	}

	if err := st.MarkProposalSent(ctx, v2.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	sent, err := st.GetProposal(ctx, v2.ID)
	if err != nil {
		t.Fatalf("get sent proposal: %v", err)
	}
	if sent.Status != "sent" || sent.SentAt == nil {
		t.Errorf("proposal not marked sent: status=%q sent_at=%v", sent.Status, sent.SentAt)
	}
	stamped, err := st.GetOpportunity(ctx, opp.ID)
	if err != nil {
		t.Fatalf("get opportunity: %v", err)
	}
	if stamped.ProposalSentAt == nil {
		t.Error("expected proposal_sent_at mirrored onto opportunity")
	}

	if _, err := st.CreateProposal(ctx, &store.Proposal{OpportunityID: "missing"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing opportunity, got %v", err)
	}
}

func TestUserUniqueEmail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewUser(t, st, "ana@example.com", store.RoleAdmin)
	_, err := st.CreateUser(ctx, &store.User{
		Email:        "ana@example.com",
		FullName:     "Duplicate",
		Role:         store.RoleUser,
		PasswordHash: "y",
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}

	byEmail, err := st.GetUserByEmail(ctx, "ANA@Example.COM")
	if err != nil {
		t.Fatalf("lookup by mixed-case email: %v", err)
	}
	if byEmail.Email != "ana@example.com" {
		t.Errorf("stored email = %q, want lowercase", byEmail.Email)
	}
}

func TestUserRoleAndPasswordUpdates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	user := testsupport.NewUser(t, st, "rep@example.com", store.RoleUser)
	if err := st.SetUserRole(ctx, user.ID, store.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if err := st.SetUserPassword(ctx, user.ID, "new-hash"); err != nil {
		t.Fatalf("set password: %v", err)
	}

	updated, err := st.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if updated.Role != store.RoleAdmin {
		t.Errorf("role = %q, want admin", updated.Role)
	}
	if updated.PasswordHash != "new-hash" {
		t.Errorf("password hash not updated")
	}

	if err := st.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := st.GetUser(ctx, user.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestForecastReport(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	owner := testsupport.NewUser(t, st, "owner@example.com", store.RoleUser)

	// 10000 estimated in "new" (10%) weighs 1000.
	testsupport.NewOpportunity(t, st, func(o *store.Opportunity) {
		o.AmountEstimated = 10000
		o.OwnerID = owner.ID
	})

	// Offered amount beats estimated: 8000 at negotiation (75%) weighs 6000.
	negotiation := testsupport.MustStage(t, st, store.PipelineCommercial, "negotiation")
	testsupport.NewOpportunity(t, st, func(o *store.Opportunity) {
		o.StageID = negotiation.ID
		o.AmountEstimated = 5000
		o.AmountOffered = 8000
		o.OwnerID = owner.ID
	})

	// Closed-lost deals weigh zero and do not count as active.
	closedLost := testsupport.MustStage(t, st, store.PipelineCommercial, store.StageClosedLost)
	testsupport.NewOpportunity(t, st, func(o *store.Opportunity) {
		o.StageID = closedLost.ID
		o.AmountEstimated = 99999
	})

	report, err := st.ForecastReport(ctx)
	if err != nil {
		t.Fatalf("forecast report: %v", err)
	}
	if math.Abs(report.TotalForecast-7000) > 0.001 {
		t.Errorf("total forecast = %v, want 7000", report.TotalForecast)
	}
	if report.ActiveDeals != 2 {
		t.Errorf("active deals = %d, want 2", report.ActiveDeals)
	}

	var ownerTotal float64
	for _, line := range report.ByOwner {
		if line.Name == "Test User" {
			ownerTotal = line.Value
		}
	}
	if math.Abs(ownerTotal-7000) > 0.001 {
		t.Errorf("owner forecast = %v, want 7000", ownerTotal)
	}
}
