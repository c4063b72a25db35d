package api

import (
	"fmt"
	"net/http"
	"strconv"

	"afiliados-api/internal/response"
	"afiliados-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// TriggerSync runs one reconciliation pass against the provider.
// POST /api/sync/cobrancas
func (a *API) TriggerSync(c *gin.Context) {
	result, err := a.syncJob.Run(c.Request.Context())
	if err != nil {
		logging.Errorf("Sync run aborted: %v", err)
		response.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"message": fmt.Sprintf("%d cobranças sincronizadas", result.Count),
		"count":   result.Count,
		"run_id":  result.RunID,
		"error":   result.Error,
	})
}

// RecentCobrancas returns the most recent mirrored charge rows, for
// verifying a sync pass.
// GET /api/sync/cobrancas?limit=N
func (a *API) RecentCobrancas(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	cobrancas, err := a.store.RecentCobrancas(limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "failed to load cobrancas")
		return
	}
	response.OK(c, cobrancas)
}
