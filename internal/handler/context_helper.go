package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/absensi-sd/absensi-api/internal/middleware"
	"github.com/absensi-sd/absensi-api/internal/service"
)

// currentClaims extracts the authenticated user's claims from the context.
func currentClaims(c *gin.Context) *service.Claims {
	v, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := v.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}
