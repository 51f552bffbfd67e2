package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"receiptserver/docs"
)

// registerRoutes mounts the API surface on the router.
func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "receiptserver",
			"version": Version,
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	router.GET("/health/detailed", gin.WrapF(s.health.HTTPHandler()))
	router.GET("/health/live", gin.WrapF(s.health.LivenessHandler()))
	router.GET("/health/ready", gin.WrapF(s.health.ReadinessHandler()))

	api := router.Group("/api/v1")

	receiptsAPI := api.Group("/receipts")
	{
		receiptsAPI.POST("/process", s.HandleProcessReceipt)
		receiptsAPI.GET("", s.HandleListReceipts)
		receiptsAPI.GET("/:id", s.HandleGetReceipt)
		receiptsAPI.DELETE("/:id", s.HandleDeleteReceipt)
	}

	aliasesAPI := api.Group("/aliases")
	{
		aliasesAPI.GET("", s.HandleListAliases)
		aliasesAPI.POST("", s.HandleCreateAlias)
		aliasesAPI.DELETE("/:id", s.HandleDeleteAlias)
	}

	confirmationsAPI := api.Group("/confirmations")
	{
		confirmationsAPI.GET("", s.HandlePendingConfirmations)
		confirmationsAPI.POST("/:id/resolve", s.HandleResolveConfirmation)
	}

	exportAPI := api.Group("/export")
	{
		exportAPI.GET("/receipts", s.HandleExportReceipts)
	}

	api.GET("/stats", s.HandleStats)
	api.GET("/metrics", s.HandleMetrics)
}

// registerSwaggerRoutes mounts the swagger UI over the generated spec.
func (s *Server) registerSwaggerRoutes(router *gin.Engine) {
	docs.SwaggerInfo.Host = "localhost:" + s.cfg.Port
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
}
