package handlers

import (
	"errors"
	"net/http"

	"solarweather/internal/metrics"
	"solarweather/internal/service"

	"github.com/gin-gonic/gin"
)

// stationAck is the plain-text body the station firmware expects.
const stationAck = "success"

// @Summary      Weather station upload
// @Description  Wunderground-protocol upload (imperial units). Values are converted to metric and stored.
// @Tags         station
// @Produce      plain
// @Param        ID        query  string  false  "Station ID"
// @Param        PASSWORD  query  string  false  "Station password"
// @Param        dateutc   query  string  true   "'YYYY-MM-DD HH:MM:SS' in UTC or 'now'"
// @Param        tempf     query  number  true   "Outdoor temperature (F)"
// @Success      200  {string}  string  "success"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /weatherstation/updateweatherstation.php [get]
func (h *Handler) uploadWeather(c *gin.Context) {
	id, err := h.services.Ingest(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		h.metrics.Upload(metrics.ResultError)
		switch {
		case errors.Is(err, service.ErrBadUpload):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrStationRejected):
			if h.log != nil {
				h.log.Infow("station_rejected", "station", c.Query("ID"), "ip", c.ClientIP())
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, "failed to store upload", "station_upload_failed", err)
		}
		return
	}

	h.metrics.Upload(metrics.ResultOK)
	if h.log != nil {
		h.log.Debugw("station_upload_stored", "id", id)
	}
	c.String(http.StatusOK, stationAck)
}
