package api

import (
	"errors"

	"pergola/internal/auth"
	"pergola/internal/blob"
	"pergola/internal/store"
	"pergola/internal/workflow"
)

// ErrValidation marks client errors: missing fields, malformed values, bad
// enum members. Transports map it to 400.
var ErrValidation = errors.New("validation failed")

// Service exposes the CRM operations behind the HTTP API.
type Service struct {
	store  *store.Store
	engine *workflow.Engine
	blobs  blob.Store
	auth   *auth.Service
}

// NewService wires the service layer.
func NewService(st *store.Store, engine *workflow.Engine, blobs blob.Store, authSvc *auth.Service) *Service {
	return &Service{store: st, engine: engine, blobs: blobs, auth: authSvc}
}

// Auth exposes the credential service for the transport's login handler.
func (s *Service) Auth() *auth.Service {
	return s.auth
}
