package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pergola/internal/store"
)

// CreateActivity records a task against a deal or delivery. createdBy names
// the session user.
func (s *Service) CreateActivity(ctx context.Context, req CreateActivityRequest, createdBy string) (*Activity, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	hasOpp := req.OpportunityID != ""
	hasDelivery := req.DeliveryOpportunityID != ""
	if hasOpp == hasDelivery {
		return nil, fmt.Errorf("%w: exactly one of opportunityId and deliveryOpportunityId is required", ErrValidation)
	}
	dueAt, err := time.Parse(time.RFC3339, req.DueAt)
	if err != nil {
		return nil, fmt.Errorf("%w: dueAt must be RFC3339", ErrValidation)
	}

	if hasOpp {
		if _, err := s.store.GetOpportunity(ctx, req.OpportunityID); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.store.GetDeliveryOpportunity(ctx, req.DeliveryOpportunityID); err != nil {
			return nil, err
		}
	}

	activity, err := s.store.CreateActivity(ctx, &store.Activity{
		OpportunityID:         req.OpportunityID,
		DeliveryOpportunityID: req.DeliveryOpportunityID,
		Title:                 req.Title,
		Description:           req.Description,
		Type:                  req.Type,
		DueAt:                 dueAt,
		CreatedBy:             createdBy,
	})
	if err != nil {
		return nil, err
	}
	dto := FromActivity(activity)
	return &dto, nil
}

// ListActivities returns activities matching the filter.
func (s *Service) ListActivities(ctx context.Context, filter store.ActivityFilter) ([]Activity, error) {
	activities, err := s.store.ListActivities(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]Activity, 0, len(activities))
	for _, activity := range activities {
		out = append(out, FromActivity(activity))
	}
	return out, nil
}

// CompleteActivity stamps an activity done.
func (s *Service) CompleteActivity(ctx context.Context, id string) (*Activity, error) {
	if err := s.store.CompleteActivity(ctx, id); err != nil {
		return nil, err
	}
	activity, err := s.store.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromActivity(activity)
	return &dto, nil
}
