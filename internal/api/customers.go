package api

import (
	"net/http"

	"afiliados-api/internal/asaas"
	"afiliados-api/internal/models"
	"afiliados-api/internal/response"
	"afiliados-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// ListClientes returns the customers owned by an affiliate. The provider
// is the preferred source; when it is unreachable or unconfigured the
// local mirror answers instead, annotated through the source field.
// GET /api/clientes?externalReference=<afiliadoId>
func (a *API) ListClientes(c *gin.Context) {
	externalReference := c.Query("externalReference")
	if externalReference == "" {
		response.Fail(c, http.StatusBadRequest, "externalReference is required")
		return
	}

	if a.client.Configured() {
		customers, err := a.client.ListCustomers(c.Request.Context(), externalReference)
		if err == nil {
			normalized := make([]models.Cliente, 0, len(customers))
			for i := range customers {
				normalized = append(normalized, normalizeCustomer(&customers[i]))
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "source": "asaas", "data": normalized})
			return
		}
		logging.Errorf("Provider customer lookup failed for %s, serving mirror: %v", externalReference, err)
	}

	clientes, err := a.store.ListClientesByAfiliado(externalReference)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "failed to load clientes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "source": "local", "data": clientes})
}

// normalizeCustomer renames the provider shape to the local record shape
// without persisting it.
func normalizeCustomer(customer *asaas.Customer) models.Cliente {
	return models.Cliente{
		AsaasID:           customer.ID,
		Name:              customer.Name,
		Email:             customer.Email,
		Phone:             customer.Phone,
		MobilePhone:       customer.MobilePhone,
		CpfCnpj:           customer.CpfCnpj,
		PostalCode:        customer.PostalCode,
		Address:           customer.Address,
		AddressNumber:     customer.AddressNumber,
		Province:          customer.Province,
		City:              customer.City,
		State:             customer.State,
		ExternalReference: customer.ExternalReference,
		Deleted:           customer.Deleted,
	}
}

// CreateClienteRequest is the inbound shape for registering a customer.
type CreateClienteRequest struct {
	Name              string `json:"name" binding:"required"`
	Email             string `json:"email" binding:"omitempty,email"`
	Phone             string `json:"phone"`
	MobilePhone       string `json:"mobilePhone"`
	CpfCnpj           string `json:"cpfCnpj" binding:"required"`
	PostalCode        string `json:"postalCode"`
	Address           string `json:"address"`
	AddressNumber     string `json:"addressNumber"`
	Province          string `json:"province"`
	City              string `json:"city"`
	State             string `json:"state"`
	ExternalReference string `json:"externalReference" binding:"required"`
}

// CreateCliente registers the customer with the provider and mirrors it
// locally. The provider stays the source of truth: a mirror write failure
// is logged for the next sync pass, not surfaced as a request failure.
// POST /api/clientes
func (a *API) CreateCliente(c *gin.Context) {
	var req CreateClienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	customer, err := a.client.CreateCustomer(c.Request.Context(), asaas.CustomerRequest{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		MobilePhone:       req.MobilePhone,
		CpfCnpj:           req.CpfCnpj,
		PostalCode:        req.PostalCode,
		Address:           req.Address,
		AddressNumber:     req.AddressNumber,
		Province:          req.Province,
		City:              req.City,
		State:             req.State,
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		response.Fail(c, providerStatus(err), err.Error())
		return
	}

	if err := a.persistence.SaveCliente(customer, req.ExternalReference); err != nil {
		logging.Errorf("Failed to mirror new cliente %s: %v", customer.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": customer})
}
