package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greensupply/greensupply/internal/providers/identity"
)

// Me resolves the caller's bearer token and, when the email maps to a
// registered business, attaches its profile.
func (s *Server) Me(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		AbortWithError(c, identity.ErrUnauthorized)
		return
	}

	user, err := s.identity.Verify(c.Request.Context(), token)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload := gin.H{
		"user_id": user.UserID,
		"email":   user.Email,
		"role":    user.Role,
	}

	if user.Email != "" {
		if business, err := s.businessSvc.GetByEmail(c.Request.Context(), user.Email); err == nil && business != nil {
			payload["business"] = business
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": payload})
}
