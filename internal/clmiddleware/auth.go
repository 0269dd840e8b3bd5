package clmiddleware

import (
	"net/http"
	"strings"

	"littlefolio/internal/handlers/clrespond"
	"littlefolio/internal/models/clauth"

	"github.com/gin-gonic/gin"
)

// RequireAdmin protège les routes d'administration : token bearer absent
// ou invalide -> 401, token valide sans rôle admin -> 403
func RequireAdmin(auth *clauth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			clrespond.Fail(c, http.StatusUnauthorized, "token manquant")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := auth.ValidateToken(token)
		if err != nil {
			clrespond.Fail(c, http.StatusUnauthorized, "token invalide ou expiré")
			c.Abort()
			return
		}

		if clauth.Role(claims) != "admin" {
			clrespond.Fail(c, http.StatusForbidden, "rôle insuffisant")
			c.Abort()
			return
		}

		c.Set("username", claims["sub"])
		c.Next()
	}
}
