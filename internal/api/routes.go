package api

import (
	"afiliados-api/internal/asaas"
	"afiliados-api/internal/config"
	"afiliados-api/internal/database"
	"afiliados-api/internal/middleware"
	"afiliados-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// API holds the wired handler dependencies. Everything is constructed once
// at startup and injected, so tests can swap the provider client's base
// URL and the store's database.
type API struct {
	cfg         *config.Config
	client      *asaas.Client
	store       *database.Store
	persistence *services.PersistenceService
	processor   *services.WebhookProcessor
	syncJob     *services.SyncService
	dashboard   *services.DashboardService
	events      *services.EventLog
}

func New(cfg *config.Config, client *asaas.Client, store *database.Store, cache *redis.Client) *API {
	persistence := services.NewPersistenceService(store)
	events := services.NewEventLog(cache)

	return &API{
		cfg:         cfg,
		client:      client,
		store:       store,
		persistence: persistence,
		processor:   services.NewWebhookProcessor(persistence, events),
		syncJob:     services.NewSyncService(client, store, cfg.SyncConcurrency),
		dashboard:   services.NewDashboardService(client, store, cache, cfg.MensalidadeRatePercent, cfg.SyncConcurrency),
		events:      events,
	}
}

// SetupRoutes registers all routes.
func (a *API) SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		// Provider webhooks (Asaas calls these)
		webhooks := api.Group("/webhooks")
		webhooks.Use(middleware.WebhookAuthMiddleware(a.cfg.WebhookAuthToken))
		{
			webhooks.POST("/asaas", a.HandleWebhook)
			webhooks.GET("/asaas/failed", a.ListFailedWebhooks)
		}

		// Reconciliation sync job
		sync := api.Group("/sync")
		{
			sync.POST("/cobrancas", a.TriggerSync)
			sync.GET("/cobrancas", a.RecentCobrancas)
		}

		// Affiliate dashboard
		dashboard := api.Group("/dashboard")
		{
			dashboard.GET("", a.GetDashboard)
			dashboard.GET("/all", a.GetDashboardAll)
			dashboard.GET("/churn", a.GetChurnRisk)
		}

		// Customer lookup and provider proxy operations
		api.GET("/clientes", a.ListClientes)
		api.POST("/clientes", a.CreateCliente)
		api.POST("/pagamentos", a.CreatePagamento)
		api.POST("/assinaturas", a.CreateAssinatura)
		api.POST("/cartoes/tokenizar", a.TokenizeCard)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "afiliados-api",
		})
	})
}
