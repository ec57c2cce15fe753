package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"solarweather/internal/repository"
	"solarweather/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List raw readings
// @Description  Stored values of one metric as [epoch, value] pairs. Dates accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' covers that whole day. Defaults to the last 24 hours; at most 31 days.
// @Tags         readings
// @Produce      json
// @Param        metric  query   string  true   "Metric name"  example(outdoor_temp)
// @Param        from    query   string  false  "Start of range"  example(2024-07-01)
// @Param        to      query   string  false  "End of range. Date-only treated as end of day."  example(2024-07-02)
// @Success      200   {object}  map[string]interface{}  "metric, count, points"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/readings [get]
// @Security     BearerAuth
func (h *Handler) getReadings(c *gin.Context) {
	var (
		from, to time.Time
		metric   = c.Query("metric")
		err      error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24 * time.Hour).UTC()
		}
	}

	points, err := h.services.List(c.Request.Context(), service.ReadingFilter{Metric: metric, From: from, To: to})
	switch {
	case errors.Is(err, repository.ErrUnknownMetric),
		errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrRangeTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadReadings, "readings_list_failed", err,
			"metric", metric, "from", from, "to", to)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"metric": strings.ToLower(strings.TrimSpace(metric)),
		"count":  len(points),
		"points": points,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
