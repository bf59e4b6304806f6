package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/psgpraveen/PolicyPilot/internal/api/middleware"
	"github.com/psgpraveen/PolicyPilot/internal/services"
)

type ClientHandler struct {
	clientService *services.ClientService
	logger        *zap.Logger
}

func NewClientHandler(clientService *services.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger.With(zap.String("handler", "clients")),
	}
}

type clientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type clientResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *ClientHandler) List(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)

	clients, err := h.clientService.List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	response := make([]clientResponse, len(clients))
	for i, client := range clients {
		response[i] = clientResponse{
			ID:    client.ID,
			Name:  client.Name,
			Email: client.Email,
			Phone: client.Phone,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"clients": response,
	})
}

func (h *ClientHandler) Create(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)

	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	clientID, err := h.clientService.Create(c.Request.Context(), ownerID, services.ClientInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Client created successfully",
		"clientId": clientID,
	})
}

func (h *ClientHandler) Update(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)
	id := c.Param("id")

	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	changed, err := h.clientService.Update(c.Request.Context(), id, ownerID, services.ClientInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, h.logger, err, "Client not found")
		return
	}
	if !changed {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Client updated successfully",
	})
}

func (h *ClientHandler) Delete(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)
	id := c.Param("id")

	removed, err := h.clientService.Delete(c.Request.Context(), id, ownerID)
	if err != nil {
		respondError(c, h.logger, err, "Client not found")
		return
	}
	if !removed {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Client deleted successfully",
	})
}
