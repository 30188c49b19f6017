package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hasanRafi2002/asgn-12-server/internal/api/handlers"
	"github.com/hasanRafi2002/asgn-12-server/internal/api/middleware"
	"github.com/hasanRafi2002/asgn-12-server/internal/cache"
	"github.com/hasanRafi2002/asgn-12-server/internal/config"
	"github.com/hasanRafi2002/asgn-12-server/internal/identity"
	"github.com/hasanRafi2002/asgn-12-server/internal/payment"
	"github.com/hasanRafi2002/asgn-12-server/internal/services"
	"github.com/hasanRafi2002/asgn-12-server/internal/storage"
)

// Dependencies are the services and clients the public API is built from.
// Storage, Denylist and Idempotency may be nil.
type Dependencies struct {
	Config      *config.Config
	Users       services.IUserService
	Properties  services.IPropertyService
	Offers      services.IOfferService
	Reviews     services.IReviewService
	Wishlists   services.IWishlistService
	Identity    identity.IProvider
	Gateway     payment.IGateway
	Storage     storage.IS3Storage
	Denylist    cache.ITokenDenylist
	Idempotency cache.IIdempotencyStore
	Readiness   map[string]handlers.ReadinessCheck
}

// SetupRouter configures and returns the main Gin engine. The returned rate
// limiter must be stopped on shutdown.
func SetupRouter(deps Dependencies) (*gin.Engine, *middleware.RateLimiterMiddleware) {
	cfg := deps.Config

	r := gin.New()
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// Apply global middleware first (order matters)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(rateLimiter.Limit())

	authHandler := handlers.NewAuthHandler(deps.Identity, deps.Denylist, cfg.JwtSecret, cfg.JwtTTL)
	userHandler := handlers.NewUserHandler(deps.Users)
	propertyHandler := handlers.NewPropertyHandler(deps.Properties)
	offerHandler := handlers.NewOfferHandler(deps.Offers)
	reviewHandler := handlers.NewReviewHandler(deps.Reviews)
	wishlistHandler := handlers.NewWishlistHandler(deps.Wishlists)
	paymentHandler := handlers.NewPaymentHandler(deps.Gateway, deps.Offers, deps.Idempotency, cfg.WebhookDedupTTL)
	uploadHandler := handlers.NewUploadHandler(deps.Storage)
	healthHandler := handlers.NewHealthHandler(deps.Readiness)

	requireAuth := middleware.AuthMiddleware(cfg.JwtSecret, deps.Denylist)

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)

	r.POST("/create-payment-intent", paymentHandler.CreatePaymentIntent)
	r.POST("/webhooks/stripe", paymentHandler.StripeWebhook)

	apiGroup := r.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/profile", requireAuth, authHandler.Profile)
			authGroup.POST("/storeUserData", userHandler.StoreUserData)
		}

		apiGroup.GET("/users", userHandler.ListUsers)
		apiGroup.GET("/user/:id", userHandler.GetUserByEmail)
		apiGroup.PUT("/user/:id/role", userHandler.UpdateRole)
		apiGroup.PUT("/user/:id/fraud", userHandler.MarkFraud)
		apiGroup.DELETE("/user/:id", userHandler.DeleteUser)

		properties := apiGroup.Group("/properties")
		{
			properties.POST("", propertyHandler.CreateProperty)
			properties.GET("", propertyHandler.ListProperties)
			properties.GET("/:id", propertyHandler.ListAgentProperties)
			properties.PUT("/:id", propertyHandler.UpdateProperty)
			properties.DELETE("/:id", propertyHandler.DeleteProperty)
			properties.GET("/status/:status", propertyHandler.ListPropertiesByStatus)
			properties.GET("/by-propertyid/:id", propertyHandler.GetByPropertyID)
			properties.DELETE("/by-propertyid/:id", propertyHandler.DeleteByPropertyID)
			properties.PUT("/verify/:id", propertyHandler.VerifyProperty)
			properties.PUT("/reject/:id", propertyHandler.RejectProperty)
			properties.POST("/:id/reviews", reviewHandler.AddReview)
			properties.GET("/:id/reviews", reviewHandler.ListPropertyReviews)
		}

		offers := apiGroup.Group("/offers")
		{
			offers.POST("", offerHandler.CreateOffer)
			offers.GET("/:id", offerHandler.ListBuyerOffers)
			offers.PUT("/:id/payment", offerHandler.RecordPayment)
		}

		agent := apiGroup.Group("/agent")
		{
			agent.GET("/offers/:id", offerHandler.ListAgentOffers)
			agent.PUT("/offers/:id/accept", requireAuth, offerHandler.AcceptOffer)
			agent.PUT("/offers/:id/reject", requireAuth, offerHandler.RejectOffer)
			agent.GET("/sold/:agentEmail", offerHandler.ListSoldProperties)
		}

		reviews := apiGroup.Group("/reviews")
		{
			reviews.GET("", reviewHandler.ListReviews)
			reviews.GET("/:id", reviewHandler.ListReviewerReviews)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
		}

		wishlist := apiGroup.Group("/wishlist")
		{
			wishlist.POST("", wishlistHandler.AddToWishlist)
			wishlist.GET("/:id", wishlistHandler.ListWishlist)
			wishlist.DELETE("/:id", wishlistHandler.RemovePropertyFromWishlists)
			wishlist.DELETE("/:id/:propertyId", wishlistHandler.RemoveFromWishlist)
		}

		apiGroup.POST("/uploads/property-image", uploadHandler.PropertyImageURL)
	}

	return r, rateLimiter
}

// SetupServiceRouter configures and returns the service Gin engine.
func SetupServiceRouter(rdb redis.Cmdable, templates services.IEmailTemplateService, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	serviceHandler := handlers.NewServiceAPIHandler(rdb, templates, shutdownChan)
	r.POST("/api", serviceHandler.HandleRequest)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
