package api

import (
	"errors"
	"net/http"

	"afiliados-api/internal/asaas"
	"afiliados-api/internal/response"
	"afiliados-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// providerStatus maps provider client errors to HTTP statuses.
func providerStatus(err error) int {
	switch {
	case errors.Is(err, asaas.ErrRejected),
		errors.Is(err, asaas.ErrTokenizationFailed),
		errors.Is(err, asaas.ErrInvalidSplitConfig):
		return http.StatusBadRequest
	case errors.Is(err, asaas.ErrNotConfigured):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// CreatePagamentoRequest is the inbound shape for a single charge.
type CreatePagamentoRequest struct {
	Customer          string  `json:"customer" binding:"required"`
	BillingType       string  `json:"billingType" binding:"required"`
	Value             float64 `json:"value" binding:"required,gt=0"`
	DueDate           string  `json:"dueDate" binding:"required"`
	Description       string  `json:"description"`
	ExternalReference string  `json:"externalReference"`
}

// CreatePagamento creates a charge with the provider and mirrors it.
// POST /api/pagamentos
func (a *API) CreatePagamento(c *gin.Context) {
	var req CreatePagamentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	payment, err := a.client.CreatePayment(c.Request.Context(), asaas.PaymentRequest{
		Customer:          req.Customer,
		BillingType:       req.BillingType,
		Value:             req.Value,
		DueDate:           req.DueDate,
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		response.Fail(c, providerStatus(err), err.Error())
		return
	}

	if err := a.persistence.SavePagamento(payment, req.ExternalReference); err != nil {
		logging.Errorf("Failed to mirror new pagamento %s: %v", payment.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": payment})
}

// CreateAssinaturaRequest is the inbound shape for a recurring agreement.
// The affiliate's wallet for the commission split comes from the afiliado
// record, never from the request.
type CreateAssinaturaRequest struct {
	Customer    string  `json:"customer" binding:"required"`
	BillingType string  `json:"billingType" binding:"required"`
	Value       float64 `json:"value" binding:"required,gt=0"`
	NextDueDate string  `json:"nextDueDate" binding:"required"`
	Cycle       string  `json:"cycle" binding:"required"`
	Description string  `json:"description"`
	AfiliadoID  string  `json:"afiliadoId" binding:"required"`
}

// CreateAssinatura creates a subscription with the platform/affiliate
// commission split and mirrors it.
// POST /api/assinaturas
func (a *API) CreateAssinatura(c *gin.Context) {
	var req CreateAssinaturaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	afiliado, err := a.store.GetAfiliado(req.AfiliadoID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "afiliado not found: "+req.AfiliadoID)
		return
	}

	subscription, err := a.client.CreateSubscriptionWithSplit(c.Request.Context(), asaas.SubscriptionRequest{
		Customer:          req.Customer,
		BillingType:       req.BillingType,
		Value:             req.Value,
		NextDueDate:       req.NextDueDate,
		Cycle:             req.Cycle,
		Description:       req.Description,
		ExternalReference: req.AfiliadoID,
	}, afiliado.WalletID)
	if err != nil {
		response.Fail(c, providerStatus(err), err.Error())
		return
	}

	if err := a.persistence.SaveAssinatura(subscription, req.AfiliadoID); err != nil {
		logging.Errorf("Failed to mirror new assinatura %s: %v", subscription.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": subscription})
}

// TokenizeCardRequest carries card data straight through to the provider's
// tokenizer.
type TokenizeCardRequest struct {
	Customer   string                `json:"customer" binding:"required"`
	CreditCard asaas.CreditCard      `json:"creditCard" binding:"required"`
	HolderInfo *asaas.CardHolderInfo `json:"creditCardHolderInfo"`
	RemoteIP   string                `json:"remoteIp"`
}

// TokenizeCard exchanges card data for an opaque token. Only the token and
// the brand/last4 echo leave this handler; the raw number and CCV are
// never stored or logged.
// POST /api/cartoes/tokenizar
func (a *API) TokenizeCard(c *gin.Context) {
	var req TokenizeCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := a.client.TokenizeCard(c.Request.Context(), asaas.CardTokenRequest{
		Customer:   req.Customer,
		CreditCard: req.CreditCard,
		HolderInfo: req.HolderInfo,
		RemoteIP:   req.RemoteIP,
	})
	if err != nil {
		logging.Errorf("Card tokenization failed for customer %s: %v", req.Customer, err)
		response.Fail(c, providerStatus(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"creditCardToken":  token.Token,
			"creditCardBrand":  token.Brand,
			"creditCardNumber": token.Last4,
		},
	})
}
