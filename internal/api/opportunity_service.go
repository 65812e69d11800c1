package api

import (
	"context"
	"fmt"
	"strings"

	"pergola/internal/store"
)

// ListPipelines returns both pipelines with their ordered stages.
func (s *Service) ListPipelines(ctx context.Context) ([]Pipeline, error) {
	pipelines, err := s.store.ListPipelines(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Pipeline, 0, len(pipelines))
	for _, pipeline := range pipelines {
		stages, err := s.store.ListStages(ctx, pipeline.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, FromPipeline(pipeline, stages))
	}
	return out, nil
}

// ListOpportunities returns the commercial pipeline's deals.
func (s *Service) ListOpportunities(ctx context.Context) ([]Opportunity, error) {
	pipeline, err := s.store.GetPipelineBySlug(ctx, store.PipelineCommercial)
	if err != nil {
		return nil, err
	}
	opps, err := s.store.ListOpportunities(ctx, pipeline.ID)
	if err != nil {
		return nil, err
	}
	return FromOpportunities(opps), nil
}

// GetOpportunity fetches one deal.
func (s *Service) GetOpportunity(ctx context.Context, id string) (*Opportunity, error) {
	opp, err := s.store.GetOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromOpportunity(opp)
	return &dto, nil
}

// CreateOpportunity creates a deal in the commercial pipeline's first stage.
func (s *Service) CreateOpportunity(ctx context.Context, req CreateOpportunityRequest) (*Opportunity, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.Priority != "" && !store.ValidPriority(req.Priority) {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, req.Priority)
	}
	if req.AmountEstimated < 0 {
		return nil, fmt.Errorf("%w: estimated amount cannot be negative", ErrValidation)
	}

	pipeline, err := s.store.GetPipelineBySlug(ctx, store.PipelineCommercial)
	if err != nil {
		return nil, err
	}
	stages, err := s.store.ListStages(ctx, pipeline.ID)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("commercial pipeline has no stages")
	}

	opp, err := s.store.CreateOpportunity(ctx, &store.Opportunity{
		Title:           req.Title,
		Description:     req.Description,
		AmountEstimated: req.AmountEstimated,
		Priority:        req.Priority,
		Source:          req.Source,
		OwnerID:         req.OwnerID,
		PipelineID:      pipeline.ID,
		StageID:         stages[0].ID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.AppendStageHistory(ctx, opp.ID, opp.StageID); err != nil {
		return nil, fmt.Errorf("record initial stage: %w", err)
	}

	dto := FromOpportunity(opp)
	return &dto, nil
}

// UpdateOpportunity applies partial edits to a deal.
func (s *Service) UpdateOpportunity(ctx context.Context, id string, req UpdateOpportunityRequest) (*Opportunity, error) {
	opp, err := s.store.GetOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		opp.Title = *req.Title
	}
	if req.Description != nil {
		opp.Description = *req.Description
	}
	if req.AmountEstimated != nil {
		opp.AmountEstimated = *req.AmountEstimated
	}
	if req.AmountOffered != nil {
		opp.AmountOffered = *req.AmountOffered
	}
	if req.AmountFinal != nil {
		opp.AmountFinal = *req.AmountFinal
	}
	if req.Priority != nil {
		if !store.ValidPriority(*req.Priority) {
			return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, *req.Priority)
		}
		opp.Priority = *req.Priority
	}
	if req.Source != nil {
		opp.Source = *req.Source
	}
	if req.OwnerID != nil {
		opp.OwnerID = *req.OwnerID
	}
	if req.Briefing != nil {
		opp.Briefing = *req.Briefing
	}
	if req.MeasurementData != nil {
		opp.MeasurementData = *req.MeasurementData
	}

	if err := s.store.UpdateOpportunity(ctx, opp); err != nil {
		return nil, err
	}
	updated, err := s.store.GetOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromOpportunity(updated)
	return &dto, nil
}

// DeleteOpportunity removes a deal and everything hanging off it.
func (s *Service) DeleteOpportunity(ctx context.Context, id string) error {
	return s.store.DeleteOpportunity(ctx, id)
}

// MoveOpportunity runs a stage transition through the workflow engine.
func (s *Service) MoveOpportunity(ctx context.Context, id string, req MoveRequest) (*MoveResult, error) {
	if strings.TrimSpace(req.StageID) == "" {
		return nil, fmt.Errorf("%w: stageId is required", ErrValidation)
	}
	pipeline := req.Pipeline
	if pipeline == "" {
		pipeline = store.PipelineCommercial
	}
	result, err := s.engine.UpdateOpportunityStage(ctx, id, req.StageID, pipeline)
	if err != nil {
		return nil, err
	}
	dto := FromMoveResult(result)
	return &dto, nil
}

// ListStageHistory returns a deal's stage history, oldest first.
func (s *Service) ListStageHistory(ctx context.Context, opportunityID string) ([]StageHistoryEntry, error) {
	if _, err := s.store.GetOpportunity(ctx, opportunityID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListStageHistory(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	out := make([]StageHistoryEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromHistoryEntry(entry))
	}
	return out, nil
}
