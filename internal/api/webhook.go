package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"afiliados-api/internal/response"
	"afiliados-api/internal/services"
	"afiliados-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// HandleWebhook ingests one provider event envelope.
// POST /api/webhooks/asaas
//
// Every classifiable event — including unknown kinds, duplicates, and
// events whose handler failed — is acknowledged with 200 {"received":true}
// so the provider never enters a redelivery storm. Failures are logged and
// queued for out-of-band replay. Only an unreadable or unparseable body
// gets a 500.
func (a *API) HandleWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		logging.Errorf("Failed to read webhook body: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read request body"})
		return
	}

	var envelope services.EventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		logging.Errorf("Failed to parse webhook body: %v, length: %d", err, len(body))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid webhook payload"})
		return
	}

	outcome := a.processor.Process(c.Request.Context(), &envelope, body)
	logging.Infof("Webhook event %s (%s): %s", envelope.Event, envelope.ID, outcome)

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// ListFailedWebhooks returns queued failed envelopes for replay tooling.
// GET /api/webhooks/asaas/failed?limit=N
func (a *API) ListFailedWebhooks(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit < 1 {
		limit = 50
	}

	events, err := a.events.FailedEvents(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	response.OK(c, events)
}
