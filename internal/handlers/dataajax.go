package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"solarweather/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Dashboard snapshot
// @Description  Latest values, extremes, accumulated energy and the daily trend of every metric on a dashboard. With history=1 the snapshot is built for the day containing timestamp.
// @Tags         dashboard
// @Produce      json
// @Param        dashboard  query   string  false  "Dashboard"  Enums(weather,solar)
// @Param        history    query   string  false  "Set to 1 for a past day"
// @Param        timestamp  query   int     false  "Epoch seconds inside the requested day (history only)"
// @Success      200  {object}  models.Snapshot
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /dataajax/ [get]
func (h *Handler) getSnapshot(c *gin.Context) {
	q := service.SnapshotQuery{
		Dashboard: c.Query("dashboard"),
		History:   c.Query("history") == "1",
	}
	if ts := c.Query("timestamp"); ts != "" {
		v, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidTimestamp.Error()})
			return
		}
		q.Timestamp = v
	}

	snap, err := h.services.Snapshot(c.Request.Context(), q)
	switch {
	case errors.Is(err, service.ErrInvalidTimestamp), errors.Is(err, service.ErrUnknownDashboard):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadSnapshot, "snapshot_failed", err,
			"dashboard", q.Dashboard, "history", q.History, "timestamp", q.Timestamp)
		return
	}
	c.JSON(http.StatusOK, snap)
}
