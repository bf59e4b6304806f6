package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/psgpraveen/PolicyPilot/internal/api/middleware"
	"github.com/psgpraveen/PolicyPilot/internal/attachment"
	"github.com/psgpraveen/PolicyPilot/internal/services"
)

type PolicyHandler struct {
	policyService *services.PolicyService
	logger        *zap.Logger
}

func NewPolicyHandler(policyService *services.PolicyService, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{
		policyService: policyService,
		logger:        logger.With(zap.String("handler", "policies")),
	}
}

type policyResponse struct {
	ID            string  `json:"id"`
	ClientID      string  `json:"clientId"`
	CategoryID    string  `json:"categoryId"`
	PolicyName    string  `json:"policyName"`
	IssueDate     string  `json:"issueDate"`
	ExpiryDate    string  `json:"expiryDate"`
	Amount        float64 `json:"amount"`
	HasAttachment bool    `json:"hasAttachment"`
	AttachmentURL *string `json:"attachmentUrl"`
}

func attachmentURL(policyID string) string {
	return fmt.Sprintf("/api/policies/%s/attachment", policyID)
}

func (h *PolicyHandler) List(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)

	policies, err := h.policyService.List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	response := make([]policyResponse, len(policies))
	for i, policy := range policies {
		item := policyResponse{
			ID:            policy.ID,
			ClientID:      policy.ClientID,
			CategoryID:    policy.CategoryID,
			PolicyName:    policy.PolicyName,
			IssueDate:     policy.IssueDate.Format(time.RFC3339),
			ExpiryDate:    policy.ExpiryDate.Format(time.RFC3339),
			Amount:        policy.Amount,
			HasAttachment: policy.Attachment != nil,
		}
		if policy.Attachment != nil {
			url := attachmentURL(policy.ID)
			item.AttachmentURL = &url
		}
		response[i] = item
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"policies": response,
	})
}

// policyInput reads the multipart text fields; parsing and validation
// happen in the service.
func policyInput(c *gin.Context) services.PolicyInput {
	return services.PolicyInput{
		ClientID:   c.PostForm("clientId"),
		CategoryID: c.PostForm("categoryId"),
		PolicyName: c.PostForm("policyName"),
		IssueDate:  c.PostForm("issueDate"),
		ExpiryDate: c.PostForm("expiryDate"),
		Amount:     c.PostForm("amount"),
	}
}

// errMalformedForm marks a request body that could not be parsed as
// multipart form data.
var errMalformedForm = errors.New("malformed multipart form")

// readUpload extracts the optional attachment file field. Only a missing
// file means no upload; any other form error is a bad request. The declared
// size is checked before the content is read so an oversized upload never
// lands in memory.
func (h *PolicyHandler) readUpload(c *gin.Context) (*services.Upload, error) {
	fileHeader, err := c.FormFile("attachment")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", errMalformedForm, err)
	}
	if fileHeader.Size > attachment.MaxSize {
		return nil, attachment.ErrFileTooLarge
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}

	return &services.Upload{
		Data:        data,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Filename:    fileHeader.Filename,
	}, nil
}

func (h *PolicyHandler) Create(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)

	upload, err := h.readUpload(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	policyID, err := h.policyService.Create(c.Request.Context(), ownerID, policyInput(c), upload)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	response := gin.H{
		"success":  true,
		"message":  "Policy created successfully",
		"policyId": policyID,
	}
	if upload != nil {
		response["fileUrl"] = attachmentURL(policyID)
	} else {
		response["fileUrl"] = nil
	}
	c.JSON(http.StatusCreated, response)
}

func (h *PolicyHandler) Update(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)
	id := c.Param("id")

	upload, err := h.readUpload(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	changed, err := h.policyService.Update(c.Request.Context(), id, ownerID, policyInput(c), upload)
	if err != nil {
		respondError(c, h.logger, err, "Policy not found")
		return
	}
	if !changed {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update policy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Policy updated successfully",
	})
}

func (h *PolicyHandler) Delete(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)
	id := c.Param("id")

	removed, err := h.policyService.Delete(c.Request.Context(), id, ownerID)
	if err != nil {
		respondError(c, h.logger, err, "Policy not found")
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Policy not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Policy deleted successfully",
	})
}

// GetAttachment streams the decoded bytes with the stored content type and
// filename.
func (h *PolicyHandler) GetAttachment(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)
	id := c.Param("id")

	content, err := h.policyService.GetAttachment(c.Request.Context(), id, ownerID)
	if err != nil {
		respondError(c, h.logger, err, "Policy not found")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", content.Filename))
	c.Header("Content-Length", fmt.Sprintf("%d", len(content.Data)))
	c.Data(http.StatusOK, content.ContentType, content.Data)
}
