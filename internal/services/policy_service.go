package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/psgpraveen/PolicyPilot/internal/attachment"
	"github.com/psgpraveen/PolicyPilot/internal/store"
	"github.com/psgpraveen/PolicyPilot/pkg/metrics"
)

// PolicyInput carries the multipart text fields as received; dates and
// amount are parsed and validated here, not at the transport layer.
type PolicyInput struct {
	ClientID   string
	CategoryID string
	PolicyName string
	IssueDate  string
	ExpiryDate string
	Amount     string
}

// Upload is a gated file received alongside a policy create or update.
type Upload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// AttachmentContent is the decoded retrieval result.
type AttachmentContent struct {
	Data        []byte
	ContentType string
	Filename    string
}

type PolicyService struct {
	policies store.PolicyStore
	logger   *zap.Logger
	metrics  *metrics.MetricsCollector
}

func NewPolicyService(policies store.PolicyStore, logger *zap.Logger, metricsCollector *metrics.MetricsCollector) *PolicyService {
	return &PolicyService{
		policies: policies,
		logger:   logger.With(zap.String("service", "policies")),
		metrics:  metricsCollector,
	}
}

type parsedPolicy struct {
	issueDate  time.Time
	expiryDate time.Time
	amount     float64
}

// validatePolicy collects every violated constraint, including the
// cross-field expiry-after-issue rule when both dates parse.
func validatePolicy(input PolicyInput) (parsedPolicy, error) {
	var v violations
	var parsed parsedPolicy

	if strings.TrimSpace(input.ClientID) == "" {
		v.add("clientId", "Client is required")
	}
	if strings.TrimSpace(input.CategoryID) == "" {
		v.add("categoryId", "Category is required")
	}
	if !minLength(input.PolicyName, 3) {
		v.add("policyName", "Policy name must be at least 3 characters")
	}

	issueDate, issueErr := parseDate(input.IssueDate)
	if issueErr != nil {
		v.add("issueDate", "Valid issue date is required")
	}
	expiryDate, expiryErr := parseDate(input.ExpiryDate)
	if expiryErr != nil {
		v.add("expiryDate", "Valid expiry date is required")
	}
	if issueErr == nil && expiryErr == nil && !expiryDate.After(issueDate) {
		v.add("expiryDate", "Expiry date must be after issue date")
	}

	// ParseFloat accepts "NaN" and "Inf"; neither is a positive amount, and
	// a persisted non-finite value cannot be marshaled back out as JSON.
	amount, amountErr := strconv.ParseFloat(strings.TrimSpace(input.Amount), 64)
	if amountErr != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		v.add("amount", "Amount must be a positive number")
	}

	if err := v.err(); err != nil {
		return parsedPolicy{}, err
	}

	parsed.issueDate = issueDate
	parsed.expiryDate = expiryDate
	parsed.amount = amount
	return parsed, nil
}

// parseDate accepts ISO-8601 dates with or without a time component; the
// zone offset is optional.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// Create validates the fields, gates the optional upload through the
// attachment codec and persists the policy stamped with the owner. The
// upload is rejected before anything is written.
func (s *PolicyService) Create(ctx context.Context, ownerID string, input PolicyInput, upload *Upload) (string, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveLatency("policies.create", time.Since(start))
	}()

	parsed, err := validatePolicy(input)
	if err != nil {
		return "", err
	}

	var embedded *store.Attachment
	if upload != nil {
		embedded, err = attachment.Accept(upload.Data, upload.ContentType, upload.Filename)
		if err != nil {
			return "", err
		}
		s.metrics.ObserveSize("policies.attachment_bytes", float64(embedded.Size))
	}

	now := time.Now().UTC()
	policy := &store.Policy{
		ID:         uuid.New().String(),
		ClientID:   strings.TrimSpace(input.ClientID),
		CategoryID: strings.TrimSpace(input.CategoryID),
		PolicyName: strings.TrimSpace(input.PolicyName),
		IssueDate:  parsed.issueDate,
		ExpiryDate: parsed.expiryDate,
		Amount:     parsed.amount,
		Attachment: embedded,
		OwnerID:    ownerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.policies.CreatePolicy(ctx, policy); err != nil {
		return "", err
	}

	s.metrics.IncrementCounter("policies.created", nil)
	return policy.ID, nil
}

func (s *PolicyService) List(ctx context.Context, ownerID string) ([]store.Policy, error) {
	return s.policies.PoliciesByOwner(ctx, ownerID)
}

// Update replaces the attachment only when a new upload arrives; otherwise
// the stored one is carried forward untouched.
func (s *PolicyService) Update(ctx context.Context, id, ownerID string, input PolicyInput, upload *Upload) (bool, error) {
	existing, err := s.policies.PolicyByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing.OwnerID != ownerID {
		s.logger.Warn("Cross-owner policy update blocked",
			zap.String("policy_id", id),
			zap.String("caller_id", ownerID))
		return false, ErrForbidden
	}

	parsed, err := validatePolicy(input)
	if err != nil {
		return false, err
	}

	embedded := existing.Attachment
	if upload != nil {
		embedded, err = attachment.Accept(upload.Data, upload.ContentType, upload.Filename)
		if err != nil {
			return false, err
		}
		s.metrics.ObserveSize("policies.attachment_bytes", float64(embedded.Size))
	}

	existing.ClientID = strings.TrimSpace(input.ClientID)
	existing.CategoryID = strings.TrimSpace(input.CategoryID)
	existing.PolicyName = strings.TrimSpace(input.PolicyName)
	existing.IssueDate = parsed.issueDate
	existing.ExpiryDate = parsed.expiryDate
	existing.Amount = parsed.amount
	existing.Attachment = embedded
	existing.UpdatedAt = time.Now().UTC()

	changed, err := s.policies.UpdatePolicy(ctx, existing)
	if err != nil {
		return false, err
	}
	s.metrics.IncrementCounter("policies.updated", nil)
	return changed, nil
}

func (s *PolicyService) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	existing, err := s.policies.PolicyByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing.OwnerID != ownerID {
		s.logger.Warn("Cross-owner policy delete blocked",
			zap.String("policy_id", id),
			zap.String("caller_id", ownerID))
		return false, ErrForbidden
	}

	removed, err := s.policies.DeletePolicy(ctx, id)
	if err != nil {
		return false, err
	}
	s.metrics.IncrementCounter("policies.deleted", nil)
	return removed, nil
}

// GetAttachment runs the usual existence and ownership checks, then
// decodes the embedded content for streaming.
func (s *PolicyService) GetAttachment(ctx context.Context, id, ownerID string) (*AttachmentContent, error) {
	policy, err := s.policies.PolicyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if policy.OwnerID != ownerID {
		s.logger.Warn("Cross-owner attachment fetch blocked",
			zap.String("policy_id", id),
			zap.String("caller_id", ownerID))
		return nil, ErrForbidden
	}
	if policy.Attachment == nil || policy.Attachment.Data == "" {
		return nil, ErrNoAttachment
	}

	data, err := attachment.Decode(policy.Attachment.Data)
	if err != nil {
		return nil, err
	}
	return &AttachmentContent{
		Data:        data,
		ContentType: policy.Attachment.ContentType,
		Filename:    policy.Attachment.Filename,
	}, nil
}
