package controllers

import (
	"net/http"
	"strings"

	"barberqueue-backend/services"
	"barberqueue-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QueueController struct {
	Queue *services.QueueService
}

type AddToQueueInput struct {
	ClientName    string    `json:"clientName"`
	HaircutTypeID uuid.UUID `json:"haircutTypeId"`
}

// AddClientInput is the body accepted by the legacy enrollment endpoint.
type AddClientInput struct {
	Name        string           `json:"name"`
	HaircutType string           `json:"haircutType"`
	Cost        *decimal.Decimal `json:"cost"`
}

func (qc *QueueController) List(c *gin.Context) {
	items, err := qc.Queue.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to load queue")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (qc *QueueController) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := qc.Queue.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to load queue entry")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (qc *QueueController) Add(c *gin.Context) {
	var input AddToQueueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	item, err := qc.Queue.Add(c.Request.Context(), input.ClientName, input.HaircutTypeID)
	if err != nil {
		respondServiceError(c, err, "Failed to add client")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (qc *QueueController) Start(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, changed, err := qc.Queue.Start(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to start service")
		return
	}
	resp := gin.H{"changed": changed}
	if changed {
		resp["item"] = item
	}
	c.JSON(http.StatusOK, resp)
}

func (qc *QueueController) Finish(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	appt, changed, err := qc.Queue.Finish(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to finish service")
		return
	}
	resp := gin.H{"changed": changed}
	if changed {
		resp["appointment"] = appt
	}
	c.JSON(http.StatusOK, resp)
}

func (qc *QueueController) Remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	removed, err := qc.Queue.Remove(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to remove client")
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": removed})
}

// Clear requires ?confirm=true.
func (qc *QueueController) Clear(c *gin.Context) {
	if c.Query("confirm") != "true" {
		utils.RespondWithError(c, http.StatusBadRequest, "Clearing the queue requires confirm=true")
		return
	}
	n, err := qc.Queue.Clear(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to clear queue")
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": n > 0, "removed": n})
}

// AddClient is the legacy enrollment endpoint. The haircut type may be given
// by id or name; the recorded price always comes from the catalog.
func (qc *QueueController) AddClient(c *gin.Context) {
	var input AddClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.HaircutType) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "name and haircutType are required")
		return
	}
	if err := services.ValidateLegacyCost(input.Cost); err != nil {
		respondServiceError(c, err, "Failed to add client")
		return
	}

	item, err := qc.Queue.AddByReference(c.Request.Context(), input.Name, input.HaircutType)
	if err != nil {
		respondServiceError(c, err, "Failed to add client")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Client added to queue",
		"client":  item,
	})
}
