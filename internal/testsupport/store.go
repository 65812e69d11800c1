package testsupport

import (
	"context"
	"testing"

	"pergola/internal/config"
	"pergola/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MustStage looks up a stage by pipeline and slug, failing the test on error.
func MustStage(t testing.TB, st *store.Store, pipelineSlug, stageSlug string) *store.Stage {
	t.Helper()
	ctx := context.Background()
	pipeline, err := st.GetPipelineBySlug(ctx, pipelineSlug)
	if err != nil {
		t.Fatalf("pipeline %s: %v", pipelineSlug, err)
	}
	stage, err := st.GetStageBySlug(ctx, pipeline.ID, stageSlug)
	if err != nil {
		t.Fatalf("stage %s/%s: %v", pipelineSlug, stageSlug, err)
	}
	return stage
}

// NewOpportunity persists a commercial opportunity in its pipeline's first
// stage and returns it. Fields can be adjusted via the mutate callback before
// insertion.
func NewOpportunity(t testing.TB, st *store.Store, mutate func(*store.Opportunity)) *store.Opportunity {
	t.Helper()
	ctx := context.Background()
	pipeline, err := st.GetPipelineBySlug(ctx, store.PipelineCommercial)
	if err != nil {
		t.Fatalf("commercial pipeline: %v", err)
	}
	stages, err := st.ListStages(ctx, pipeline.ID)
	if err != nil {
		t.Fatalf("list stages: %v", err)
	}
	if len(stages) == 0 {
		t.Fatal("commercial pipeline has no stages")
	}
	opp := &store.Opportunity{
		PipelineID:      pipeline.ID,
		StageID:         stages[0].ID,
		Title:           "Test Deal",
		Description:     "fixture deal",
		AmountEstimated: 1000,
		Priority:        store.PriorityMedium,
		Source:          "referral",
	}
	if mutate != nil {
		mutate(opp)
	}
	created, err := st.CreateOpportunity(ctx, opp)
	if err != nil {
		t.Fatalf("create opportunity: %v", err)
	}
	return created
}

// NewUser persists a user record for tests.
func NewUser(t testing.TB, st *store.Store, email, role string) *store.User {
	t.Helper()
	user, err := st.CreateUser(context.Background(), &store.User{
		Email:        email,
		FullName:     "Test User",
		Role:         role,
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
