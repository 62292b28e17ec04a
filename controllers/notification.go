package controllers

import (
	"net/http"
	"strconv"

	"barberqueue-backend/store"
	"barberqueue-backend/utils"

	"github.com/gin-gonic/gin"
)

// NotificationController lists recent delivery attempts.
type NotificationController struct {
	Logs *store.NotificationLogs
}

func (nc *NotificationController) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	logs, err := nc.Logs.Recent(c.Request.Context(), limit)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}
	c.JSON(http.StatusOK, logs)
}
