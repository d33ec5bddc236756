package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartshelf/internal/utils"
)

const ClaimsKey = "claims"

// JWTAuth gates every protected route. The token comes from the
// Authorization header or, for redirects from the portal, a token query
// parameter. Verification walks the verifier's secret list in order.
func JWTAuth(verifier *utils.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				token = parts[1]
			}
		}
		if token == "" {
			token = c.Query("token")
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Access denied. No token provided.",
			})
			return
		}

		claims, issuer, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Invalid or expired token.",
			})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set("token_issuer", issuer)
		c.Next()
	}
}

// Claims returns the verified claims set by JWTAuth, or nil outside it.
func Claims(c *gin.Context) *utils.Claims {
	value, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*utils.Claims)
	return claims
}
