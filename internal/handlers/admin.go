package handlers

import (
	"errors"
	"net/http"

	"solarweather/internal/repository/db"

	"github.com/gin-gonic/gin"
)

type backupRequest struct {
	Path string `json:"path" binding:"required"`
}

// BackupRequest is an exported model for Swagger docs of the backup payload.
type BackupRequest struct {
	// Destination file on the server. Must not exist yet.
	Path string `json:"path" example:"/var/backups/solarweather.db"`
}

// @Summary      Rebuild caches
// @Description  Clears the cache and recomputes extremes and latest values from the database.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  service.RebuildResult
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/admin/cache/rebuild [post]
// @Security     BearerAuth
func (h *Handler) rebuildCache(c *gin.Context) {
	res, err := h.services.RebuildCache(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errRebuildCache, "cache_rebuild_failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Back up database
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body   BackupRequest  true  "Backup target"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/admin/backup [post]
// @Security     BearerAuth
func (h *Handler) backup(c *gin.Context) {
	var req backupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Backup(c.Request.Context(), req.Path); err != nil {
		if errors.Is(err, db.ErrBackupUnsupported) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errBackup, "backup_failed", err, "path", req.Path)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK, "path": req.Path})
}
