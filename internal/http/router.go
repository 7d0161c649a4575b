package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.POST("/auth/login", handler.login)

	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		protected.POST("/disposals", handler.createDisposal)
		protected.GET("/disposals", handler.listDisposals)

		protected.GET("/bins", handler.listBins)
		protected.POST("/bins/:id/full", handler.reportBinFull)
		protected.GET("/bins/suggest", handler.suggestBin)

		protected.POST("/complaints", handler.createComplaint)
		protected.GET("/complaints", handler.listComplaints)
		protected.GET("/complaints/:id", handler.getComplaint)
		protected.POST("/complaints/:id/cleanup", handler.submitCleanup)
		protected.POST("/complaints/:id/verify", handler.verifyCleanup)

		protected.GET("/wallet", handler.getWallet)
		protected.GET("/rewards", handler.listRewards)
		protected.POST("/rewards/:id/redeem", handler.redeemReward)
		protected.GET("/rewards/redemptions", handler.listRedemptions)

		protected.GET("/analytics/summary", handler.analyticsSummary)

		protected.GET("/fraud/alerts", handler.listFraudAlerts)
		protected.POST("/fraud/alerts/:id/review", handler.reviewFraudAlert)
	}

	return router
}
