package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/psgpraveen/PolicyPilot/internal/store"
	"github.com/psgpraveen/PolicyPilot/pkg/metrics"
)

type ClientInput struct {
	Name  string
	Email string
	Phone string
}

// ClientService provides owner-scoped CRUD over clients. Every mutation
// verifies the caller owns the record before touching it.
type ClientService struct {
	clients store.ClientStore
	logger  *zap.Logger
	metrics *metrics.MetricsCollector
}

func NewClientService(clients store.ClientStore, logger *zap.Logger, metricsCollector *metrics.MetricsCollector) *ClientService {
	return &ClientService{
		clients: clients,
		logger:  logger.With(zap.String("service", "clients")),
		metrics: metricsCollector,
	}
}

func validateClient(input ClientInput) error {
	var v violations
	if !minLength(input.Name, 2) {
		v.add("name", "Name must be at least 2 characters")
	}
	if !validEmail(input.Email) {
		v.add("email", "Invalid email address")
	}
	if !minLength(input.Phone, 10) {
		v.add("phone", "Phone number must be at least 10 characters")
	}
	return v.err()
}

func (s *ClientService) Create(ctx context.Context, ownerID string, input ClientInput) (string, error) {
	if err := validateClient(input); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	client := &store.Client{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.clients.CreateClient(ctx, client); err != nil {
		return "", err
	}

	s.metrics.IncrementCounter("clients.created", nil)
	return client.ID, nil
}

func (s *ClientService) List(ctx context.Context, ownerID string) ([]store.Client, error) {
	return s.clients.ClientsByOwner(ctx, ownerID)
}

// Update checks existence before ownership so a missing record surfaces as
// not-found rather than forbidden. Reports whether anything was persisted.
func (s *ClientService) Update(ctx context.Context, id, ownerID string, input ClientInput) (bool, error) {
	existing, err := s.clients.ClientByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing.OwnerID != ownerID {
		s.logger.Warn("Cross-owner client update blocked",
			zap.String("client_id", id),
			zap.String("caller_id", ownerID))
		return false, ErrForbidden
	}
	if err := validateClient(input); err != nil {
		return false, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Email = strings.TrimSpace(input.Email)
	existing.Phone = strings.TrimSpace(input.Phone)
	existing.UpdatedAt = time.Now().UTC()

	changed, err := s.clients.UpdateClient(ctx, existing)
	if err != nil {
		return false, err
	}
	s.metrics.IncrementCounter("clients.updated", nil)
	return changed, nil
}

func (s *ClientService) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	existing, err := s.clients.ClientByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing.OwnerID != ownerID {
		s.logger.Warn("Cross-owner client delete blocked",
			zap.String("client_id", id),
			zap.String("caller_id", ownerID))
		return false, ErrForbidden
	}

	removed, err := s.clients.DeleteClient(ctx, id)
	if err != nil {
		return false, err
	}
	s.metrics.IncrementCounter("clients.deleted", nil)
	return removed, nil
}
