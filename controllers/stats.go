package controllers

import (
	"net/http"

	"barberqueue-backend/services"
	"barberqueue-backend/utils"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	Queue *services.QueueService
}

// Stats answers scope=today (default), scope=all, or an explicit from/to range.
func (sc *StatsController) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("from") != "" || c.Query("to") != "" {
		r, ok := parseRange(c, sc.Queue.Location())
		if !ok {
			return
		}
		stats, err := sc.Queue.Stats(ctx, r)
		if err != nil {
			respondServiceError(c, err, "Failed to compute statistics")
			return
		}
		c.JSON(http.StatusOK, stats)
		return
	}

	switch c.DefaultQuery("scope", "today") {
	case "today":
		stats, err := sc.Queue.TodayStats(ctx)
		if err != nil {
			respondServiceError(c, err, "Failed to compute statistics")
			return
		}
		c.JSON(http.StatusOK, stats)
	case "all":
		stats, err := sc.Queue.Stats(ctx, services.AllTime)
		if err != nil {
			respondServiceError(c, err, "Failed to compute statistics")
			return
		}
		c.JSON(http.StatusOK, stats)
	default:
		utils.RespondWithError(c, http.StatusBadRequest, "scope must be today or all")
	}
}

// Dashboard combines today's and all-time figures with the current queue size.
func (sc *StatsController) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	today, err := sc.Queue.TodayStats(ctx)
	if err != nil {
		respondServiceError(c, err, "Failed to compute statistics")
		return
	}
	all, err := sc.Queue.Stats(ctx, services.AllTime)
	if err != nil {
		respondServiceError(c, err, "Failed to compute statistics")
		return
	}
	items, err := sc.Queue.List(ctx)
	if err != nil {
		respondServiceError(c, err, "Failed to load queue")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"today":   today,
		"allTime": all,
		"inQueue": len(items),
	})
}

func (sc *StatsController) Appointments(c *gin.Context) {
	r, ok := parseRange(c, sc.Queue.Location())
	if !ok {
		return
	}
	appts, err := sc.Queue.Appointments(c.Request.Context(), r)
	if err != nil {
		respondServiceError(c, err, "Failed to list appointments")
		return
	}
	c.JSON(http.StatusOK, appts)
}
