package middleware

import (
	"net/http"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/internal/session"
	"clinical-records-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the signed session token
const SessionCookieName = "token"

// Context keys populated by SessionAuth for downstream handlers
const (
	ContextSubjectID = "subjectID"
	ContextRole      = "role"
)

// The one message every verification failure returns. Expired, forged,
// malformed, revoked and missing tokens are indistinguishable to clients.
const unauthorizedMessage = "authentication required"

// SessionAuth validates the session cookie on every protected request and
// injects the verified identity into the request context.
func SessionAuth(tokens *utils.TokenManager, revoker session.Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookieName)
		if err != nil || cookie == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, unauthorizedMessage)
			c.Abort()
			return
		}

		claims, err := tokens.Validate(cookie)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, unauthorizedMessage)
			c.Abort()
			return
		}

		role, err := models.ParseRole(claims.Role)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, unauthorizedMessage)
			c.Abort()
			return
		}

		// Fail closed: if the deny-list cannot be consulted, the session
		// is not accepted.
		revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil || revoked {
			utils.ErrorResponse(c, http.StatusUnauthorized, unauthorizedMessage)
			c.Abort()
			return
		}

		c.Set(ContextSubjectID, claims.SubjectID)
		c.Set(ContextRole, role)

		c.Next()
	}
}

// RequireRole allows only the listed roles past. Runs after SessionAuth.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, unauthorizedMessage)
			c.Abort()
			return
		}

		for _, want := range allowed {
			if role.(models.Role) == want {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "access denied")
		c.Abort()
	}
}

// PatientSelfScope confines patient sessions to their own patient id: the
// :patientId path parameter must equal the token subject. Hospital and
// authority sessions pass through; RequireRole decides whether they belong
// on the route at all.
func PatientSelfScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, unauthorizedMessage)
			c.Abort()
			return
		}

		if role.(models.Role) == models.RolePatient {
			subjectID, _ := c.Get(ContextSubjectID)
			if c.Param("patientId") != subjectID.(string) {
				utils.ErrorResponse(c, http.StatusForbidden, "access denied")
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
