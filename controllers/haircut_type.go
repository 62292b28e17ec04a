package controllers

import (
	"net/http"

	"barberqueue-backend/services"
	"barberqueue-backend/utils"

	"github.com/gin-gonic/gin"
)

type HaircutTypeController struct {
	Catalog *services.CatalogService
}

// ListActive is the public catalog used for enrollment.
func (hc *HaircutTypeController) ListActive(c *gin.Context) {
	types, err := hc.Catalog.List(c.Request.Context(), false)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve haircut types")
		return
	}
	c.JSON(http.StatusOK, types)
}

// ListAll includes deactivated entries.
func (hc *HaircutTypeController) ListAll(c *gin.Context) {
	types, err := hc.Catalog.List(c.Request.Context(), c.Query("active") != "true")
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve haircut types")
		return
	}
	c.JSON(http.StatusOK, types)
}

func (hc *HaircutTypeController) Create(c *gin.Context) {
	var input services.CreateHaircutTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ht, err := hc.Catalog.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "Failed to create haircut type")
		return
	}
	c.JSON(http.StatusCreated, ht)
}

func (hc *HaircutTypeController) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input services.UpdateHaircutTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ht, err := hc.Catalog.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err, "Failed to update haircut type")
		return
	}
	c.JSON(http.StatusOK, ht)
}

// Deactivate soft deletes a haircut type.
func (hc *HaircutTypeController) Deactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := hc.Catalog.Deactivate(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to deactivate haircut type")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Haircut type deactivated"})
}
