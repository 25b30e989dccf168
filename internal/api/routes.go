package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gramhealth/assistant/internal/telemetry"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, handler *Handler, provider *telemetry.Provider) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	if provider != nil {
		router.GET("/metrics", gin.WrapH(provider.Handler()))
	}

	// Assistant endpoints
	router.POST("/chat", handler.Chat)                         // POST /chat
	router.GET("/schemes", handler.SchemeLookup)               // GET /schemes?q=...&language=...
	router.GET("/diseases/search", handler.DiseaseSearch)      // GET /diseases/search?q=...&limit=...
	router.GET("/hospitals/nearest", handler.HospitalsNearest) // GET /hospitals/nearest?pincode=...&limit=...
}
