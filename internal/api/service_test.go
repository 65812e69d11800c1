package api_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"pergola/internal/api"
	"pergola/internal/auth"
	"pergola/internal/blob"
	"pergola/internal/store"
	"pergola/internal/testsupport"
	"pergola/internal/workflow"
)

func newService(t *testing.T) (*api.Service, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	blobs, err := blob.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open blob store: %v", err)
	}
	engine := workflow.NewEngine(st, nil, nil)
	authSvc := auth.NewService(st, cfg)
	return api.NewService(st, engine, blobs, authSvc), st
}

func TestListPipelinesIncludesStages(t *testing.T) {
	svc, _ := newService(t)
	pipelines, err := svc.ListPipelines(context.Background())
	if err != nil {
		t.Fatalf("list pipelines: %v", err)
	}
	if len(pipelines) != 2 {
		t.Fatalf("expected 2 pipelines, got %d", len(pipelines))
	}
	for _, pipeline := range pipelines {
		if len(pipeline.Stages) == 0 {
			t.Errorf("pipeline %s has no stages", pipeline.Slug)
		}
	}
}

func TestCreateOpportunityDefaultsAndHistory(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	opp, err := svc.CreateOpportunity(ctx, api.CreateOpportunityRequest{
		Title:           "Rooftop pergola",
		AmountEstimated: 12000,
		Source:          "instagram",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if opp.Priority != store.PriorityMedium {
		t.Errorf("priority = %q, want default medium", opp.Priority)
	}

	first := testsupport.MustStage(t, st, store.PipelineCommercial, "new")
	if opp.StageID != first.ID {
		t.Errorf("stage = %q, want first commercial stage", opp.StageID)
	}

	history, err := svc.ListStageHistory(ctx, opp.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected initial history entry, got %d", len(history))
	}
}

func TestCreateOpportunityValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.CreateOpportunity(ctx, api.CreateOpportunityRequest{}); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("missing title: expected ErrValidation, got %v", err)
	}
	if _, err := svc.CreateOpportunity(ctx, api.CreateOpportunityRequest{
		Title:    "x",
		Priority: "urgent",
	}); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("bad priority: expected ErrValidation, got %v", err)
	}
	if _, err := svc.CreateOpportunity(ctx, api.CreateOpportunityRequest{
		Title:           "x",
		AmountEstimated: -1,
	}); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("negative amount: expected ErrValidation, got %v", err)
	}
}

func TestUpdateOpportunityPartialEdit(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	opp, err := svc.CreateOpportunity(ctx, api.CreateOpportunityRequest{Title: "Deal", AmountEstimated: 1000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	offered := 950.0
	briefing := `{"covering":"polycarbonate"}`
	updated, err := svc.UpdateOpportunity(ctx, opp.ID, api.UpdateOpportunityRequest{
		AmountOffered: &offered,
		Briefing:      &briefing,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AmountOffered != 950 {
		t.Errorf("offered = %v, want 950", updated.AmountOffered)
	}
	if updated.Briefing != briefing {
		t.Errorf("briefing = %q", updated.Briefing)
	}
	if updated.Title != "Deal" || updated.AmountEstimated != 1000 {
		t.Error("untouched fields must survive partial update")
	}

	empty := " "
	if _, err := svc.UpdateOpportunity(ctx, opp.ID, api.UpdateOpportunityRequest{Title: &empty}); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("blank title: expected ErrValidation, got %v", err)
	}
}

func TestMoveOpportunityEndToEnd(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	opp, err := svc.CreateOpportunity(ctx, api.CreateOpportunityRequest{Title: "Deal", AmountEstimated: 10000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	final := 10000.0
	if _, err := svc.UpdateOpportunity(ctx, opp.ID, api.UpdateOpportunityRequest{AmountFinal: &final}); err != nil {
		t.Fatalf("set final amount: %v", err)
	}

	closedWon := testsupport.MustStage(t, st, store.PipelineCommercial, store.StageClosedWon)
	result, err := svc.MoveOpportunity(ctx, opp.ID, api.MoveRequest{StageID: closedWon.ID})
	if err != nil {
		t.Fatalf("move to closed_won: %v", err)
	}
	if !result.DeliveryCreated || result.DerivedDelivery == nil {
		t.Fatal("expected derived delivery in move result")
	}

	completed := testsupport.MustStage(t, st, store.PipelineDelivery, store.StageCompleted)
	deliveryResult, err := svc.MoveOpportunity(ctx, result.DerivedDelivery.ID, api.MoveRequest{
		StageID:  completed.ID,
		Pipeline: store.PipelineDelivery,
	})
	if err != nil {
		t.Fatalf("complete delivery: %v", err)
	}
	if !deliveryResult.PaymentCreated || deliveryResult.DerivedPayment == nil {
		t.Fatal("expected derived payment in move result")
	}
	if deliveryResult.DerivedPayment.TotalAmount != 4650 {
		t.Errorf("payment total = %v, want 4650", deliveryResult.DerivedPayment.TotalAmount)
	}

	payments, err := svc.ListPayments(ctx)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
}

func TestMoveOpportunityRequiresStage(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.MoveOpportunity(context.Background(), "id", api.MoveRequest{}); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProposalUploadAndDownload(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	opp, err := svc.CreateOpportunity(ctx, api.CreateOpportunityRequest{Title: "Deal"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	proposal, err := svc.UploadProposal(ctx, opp.ID, "proposal-v1.pdf", "application/pdf",
		strings.NewReader("%PDF content"), 15000)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if proposal.Version != 1 {
		t.Errorf("version = %d, want 1", proposal.Version)
	}
	if proposal.FileName != "proposal-v1.pdf" {
		t.Errorf("file name = %q", proposal.FileName)
	}

	body, contentType, fileName, err := svc.OpenProposalDocument(ctx, proposal.ID)
	if err != nil {
		t.Fatalf("open document: %v", err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if string(data) != "%PDF content" {
		t.Errorf("document body = %q", data)
	}
	if contentType != "application/pdf" || fileName != "proposal-v1.pdf" {
		t.Errorf("contentType=%q fileName=%q", contentType, fileName)
	}

	sent, err := svc.SendProposal(ctx, proposal.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.Status != "sent" || sent.SentAt == "" {
		t.Errorf("proposal not marked sent: %+v", sent)
	}
	stamped, err := svc.GetOpportunity(ctx, opp.ID)
	if err != nil {
		t.Fatalf("get opportunity: %v", err)
	}
	if stamped.ProposalSentAt == "" {
		t.Error("expected proposalSentAt on opportunity")
	}
}

func TestActivityLifecycleThroughService(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	opp, err := svc.CreateOpportunity(ctx, api.CreateOpportunityRequest{Title: "Deal"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	due := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	activity, err := svc.CreateActivity(ctx, api.CreateActivityRequest{
		OpportunityID: opp.ID,
		Title:         "Call customer",
		Type:          "call",
		DueAt:         due,
	}, "user-1")
	if err != nil {
		t.Fatalf("create activity: %v", err)
	}
	if activity.CreatedBy != "user-1" {
		t.Errorf("createdBy = %q", activity.CreatedBy)
	}

	if _, err := svc.CreateActivity(ctx, api.CreateActivityRequest{
		Title: "orphan",
		DueAt: due,
	}, ""); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("orphan activity: expected ErrValidation, got %v", err)
	}
	if _, err := svc.CreateActivity(ctx, api.CreateActivityRequest{
		OpportunityID: opp.ID,
		Title:         "bad due",
		DueAt:         "tomorrow",
	}, ""); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("bad due date: expected ErrValidation, got %v", err)
	}

	done, err := svc.CompleteActivity(ctx, activity.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.DoneAt == "" {
		t.Error("expected doneAt after completion")
	}
}

func TestUserManagementThroughService(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	token, err := svc.InviteUser(ctx, api.InviteRequest{Email: "rep@example.com"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	user, err := svc.AcceptInvite(ctx, api.AcceptInviteRequest{
		Token:    token,
		FullName: "Rep Example",
		Password: "a strong password",
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if user.Role != store.RoleUser {
		t.Errorf("role = %q, want default user", user.Role)
	}

	// Inviting an existing email conflicts.
	if _, err := svc.InviteUser(ctx, api.InviteRequest{Email: "rep@example.com"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	promoted, err := svc.SetUserRole(ctx, user.ID, store.RoleAdmin)
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if promoted.Role != store.RoleAdmin {
		t.Errorf("role = %q, want admin", promoted.Role)
	}

	if err := svc.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no users after delete, got %d", len(users))
	}
}
