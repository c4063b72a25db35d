package api

import (
	"net/http"

	"afiliados-api/internal/response"
	"afiliados-api/internal/services"
	"afiliados-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns one affiliate's aggregated numbers, plus the monthly
// goal readout when the affiliate has a goal set.
// GET /api/dashboard?afiliadoId=<id>
func (a *API) GetDashboard(c *gin.Context) {
	afiliadoID := c.Query("afiliadoId")
	if afiliadoID == "" {
		response.Fail(c, http.StatusBadRequest, "afiliadoId is required")
		return
	}

	metrics, err := a.dashboard.ComputeReceivables(c.Request.Context(), afiliadoID)
	if err != nil {
		logging.Errorf("Dashboard aggregation failed for %s: %v", afiliadoID, err)
		response.Fail(c, http.StatusInternalServerError, "failed to aggregate dashboard")
		return
	}

	body := gin.H{
		"total_clientes":         metrics.TotalClientes,
		"pagamentos_a_receber":   metrics.PagamentosAReceber,
		"mensalidades_a_receber": metrics.MensalidadesAReceber,
		"total_a_receber":        metrics.TotalAReceber,
		"detalhes":               metrics.Detalhes,
	}

	if afiliado, err := a.store.GetAfiliado(afiliadoID); err == nil && afiliado.MonthlyGoal > 0 {
		body["meta"] = services.ComputeGoalProgress(
			afiliado.MonthlyGoal,
			metrics.MensalidadesAReceber,
			metrics.PagamentosAReceber,
		)
	}

	c.JSON(http.StatusOK, body)
}

// GetDashboardAll aggregates every affiliate. A failed affiliate fetch is
// excluded without affecting the others.
// GET /api/dashboard/all
func (a *API) GetDashboardAll(c *gin.Context) {
	metrics, err := a.dashboard.ComputeAllAffiliates(c.Request.Context())
	if err != nil {
		logging.Errorf("All-affiliates aggregation failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "failed to aggregate affiliates")
		return
	}
	response.OK(c, metrics)
}

// GetChurnRisk returns the affiliates flagged by the external churn view.
// GET /api/dashboard/churn
func (a *API) GetChurnRisk(c *gin.Context) {
	rows, err := a.dashboard.ChurnRisk(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "failed to load churn classification")
		return
	}
	response.OK(c, rows)
}
