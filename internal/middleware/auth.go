package middleware

import (
	"net/http"

	"afiliados-api/internal/response"

	"github.com/gin-gonic/gin"
)

// WebhookAuthMiddleware validates the provider's webhook access token.
// Asaas sends it in the asaas-access-token header. When no token is
// configured the check is disabled, which matches providers set up without
// webhook authentication.
func WebhookAuthMiddleware(expectedToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expectedToken == "" {
			c.Next()
			return
		}

		token := c.GetHeader("asaas-access-token")
		if token == "" {
			token = c.Query("access_token")
		}

		if token != expectedToken {
			response.Fail(c, http.StatusUnauthorized, "invalid webhook access token")
			c.Abort()
			return
		}

		c.Next()
	}
}
