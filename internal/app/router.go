package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"tripbroker/internal/domain"
	"tripbroker/internal/handler"
	"tripbroker/internal/middleware"
	"tripbroker/internal/ws"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler    *handler.TripHandler
	OfferHandler   *handler.OfferHandler
	AdminHandler   *handler.AdminHandler
	BillingHandler *handler.BillingHandler
	UserHandler    *handler.UserHandler
	WSHandler      *ws.Handler
	AuthMiddleware *middleware.AuthMiddleware
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := deps.AuthMiddleware.Auth()

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.Use(auth)
	{
		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("", deps.TripHandler.ListMyTrips)
			trips.POST("/scheduled", deps.AuthMiddleware.RequireRole(domain.RoleCarrier), deps.TripHandler.ScheduleTrip)
			trips.GET("/opportunities", deps.AuthMiddleware.RequireRole(domain.RoleCarrier), deps.TripHandler.ListOpportunities)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("/:id/confirm", deps.AuthMiddleware.RequireRole(domain.RoleCarrier), deps.TripHandler.ConfirmTrip)
			trips.POST("/:id/decline", deps.AuthMiddleware.RequireRole(domain.RoleCarrier), deps.TripHandler.DeclineTrip)
			trips.POST("/:id/start", deps.AuthMiddleware.RequireRole(domain.RoleCarrier), deps.TripHandler.StartTrip)
			trips.POST("/:id/complete", deps.AuthMiddleware.RequireRole(domain.RoleCarrier), deps.TripHandler.CompleteTrip)
			trips.POST("/:id/cancel", deps.TripHandler.CancelTrip)

			// Offer routes.
			trips.POST("/:id/offers", deps.AuthMiddleware.RequireRole(domain.RoleCarrier), deps.OfferHandler.SubmitOffer)
			trips.GET("/:id/offers", deps.OfferHandler.ListOffers)
			trips.POST("/:id/offers/:offerId/accept", deps.OfferHandler.AcceptOffer)
		}

		// Profile routes.
		users := v1.Group("/users")
		{
			users.GET("/me", deps.UserHandler.GetMe)
			users.GET("/me/subscription", deps.UserHandler.GetSubscription)
		}

		// Billing routes.
		v1.POST("/topups", deps.BillingHandler.RequestTopUp)
		v1.GET("/topups", deps.BillingHandler.ListTopUps)
		v1.GET("/topups/:id", deps.BillingHandler.GetTopUp)
		v1.GET("/pricing/:country", deps.BillingHandler.GetPricing)

		// Realtime push.
		v1.GET("/ws", deps.WSHandler.Serve)

		// Admin routes. Role claims gate routing; services re-validate against
		// the store before acting.
		admin := v1.Group("/admin")
		admin.Use(deps.AuthMiddleware.RequireAdmin())
		{
			admin.POST("/freeze", deps.AdminHandler.Freeze)
			admin.POST("/unfreeze", deps.AdminHandler.Unfreeze)
			admin.GET("/logs", deps.AdminHandler.ListLogs)
			admin.POST("/trips/:id/transfer", deps.TripHandler.TransferTrip)
			admin.POST("/topups/:id/review", deps.BillingHandler.ReviewTopUp)
		}
	}

	return router
}
