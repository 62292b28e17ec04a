package controllers

import (
	"errors"
	"net/http"
	"time"

	"barberqueue-backend/queue"
	"barberqueue-backend/services"
	"barberqueue-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondServiceError maps domain errors to status codes. Anything unknown is
// a persistence failure and answers with the generic message.
func respondServiceError(c *gin.Context, err error, fallback string) {
	var ve queue.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.RespondWithError(c, http.StatusBadRequest, ve.Message)
	case errors.Is(err, queue.ErrValidation):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, queue.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Queue entry not found")
	case errors.Is(err, services.ErrHaircutTypeNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Haircut type not found")
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// parseRange reads from/to as YYYY-MM-DD local dates or RFC3339 instants.
// A date-only "to" is inclusive of that whole day.
func parseRange(c *gin.Context, loc *time.Location) (queue.Range, bool) {
	var r queue.Range
	for _, p := range []struct {
		key string
		dst *time.Time
		end bool
	}{
		{"from", &r.From, false},
		{"to", &r.To, true},
	} {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			*p.dst = t
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+p.key+" date, use YYYY-MM-DD")
			return queue.Range{}, false
		}
		if p.end {
			t = t.AddDate(0, 0, 1)
		}
		*p.dst = t
	}
	if !r.From.IsZero() && !r.To.IsZero() && !r.From.Before(r.To) {
		utils.RespondWithError(c, http.StatusBadRequest, "from must be before to")
		return queue.Range{}, false
	}
	return r, true
}
