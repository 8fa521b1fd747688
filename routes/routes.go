package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"shaaban-furniture-backend/controllers"
	"shaaban-furniture-backend/services"
)

// Setup builds the gin engine with every route of the API.
func Setup(ctrl *controllers.Controller, env string, origins []string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		services.UseJSONNames(v)
	}
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = origins
	if len(origins) == 0 {
		config.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control"}
	r.Use(cors.New(config))

	api := r.Group("/api")
	api.Use(ctrl.Authenticate())
	{
		api.GET("/health", ctrl.HealthCheck)
		api.GET("/stats", ctrl.RequireAdmin, ctrl.GetStats)
		api.GET("/catalog", ctrl.GetCatalog)

		authGroup := api.Group("/auth")
		authGroup.POST("/signup", ctrl.SignUp)
		authGroup.POST("/signin", ctrl.SignIn)
		authGroup.POST("/google", ctrl.SignInWithGoogle)
		authGroup.POST("/anonymous", ctrl.SignInAnonymously)
		authGroup.POST("/signout", ctrl.SignOut)
		authGroup.GET("/me", ctrl.Me)

		api.GET("/products", ctrl.GetProducts)
		api.GET("/products/stream", ctrl.StreamProducts)
		api.GET("/products/:id", ctrl.GetProduct)
		api.POST("/products", ctrl.RequireAdmin, ctrl.CreateProduct)
		api.PUT("/products/:id", ctrl.RequireAdmin, ctrl.UpdateProduct)
		api.DELETE("/products/:id", ctrl.RequireAdmin, ctrl.DeleteProduct)

		api.GET("/reviews", ctrl.GetPublicReviews)
		api.POST("/contact", ctrl.Contact)
		api.POST("/newsletter", ctrl.Subscribe)
		api.POST("/chat", ctrl.Chat)
		api.POST("/recommendations", ctrl.Recommendations)

		shopper := api.Group("", controllers.RequireIdentity)
		shopper.GET("/cart", ctrl.GetCart)
		shopper.POST("/cart/items", ctrl.AddCartItem)
		shopper.PUT("/cart/items/:productId", ctrl.UpdateCartItem)
		shopper.DELETE("/cart/items/:productId", ctrl.RemoveCartItem)
		shopper.DELETE("/cart", ctrl.ClearCart)
		shopper.POST("/checkout", ctrl.Checkout)
		shopper.GET("/orders", ctrl.GetOrders)
		shopper.GET("/orders/stream", ctrl.StreamOrders)
		shopper.GET("/orders/:id", ctrl.GetOrder)
		shopper.POST("/orders/:id/cancel", ctrl.CancelOrder)
		shopper.POST("/reviews", ctrl.SubmitReview)
		shopper.GET("/account/profile", ctrl.GetProfile)
		shopper.PUT("/account/profile", ctrl.UpdateProfile)

		admin := api.Group("/admin", ctrl.RequireAdmin)
		admin.PUT("/orders/:id/status", ctrl.SetOrderStatus)
		admin.POST("/orders/:id/payment", ctrl.RecordPayment)
		admin.POST("/direct-sale", ctrl.DirectSale)
		admin.GET("/reviews", ctrl.GetModerationReviews)
		admin.GET("/reviews/stream", ctrl.StreamModerationReviews)
		admin.POST("/reviews/:id/approve", ctrl.ApproveReview)
		admin.POST("/reviews/:id/reject", ctrl.RejectReview)
		admin.DELETE("/reviews/:id", ctrl.DeleteReview)
		admin.GET("/users", ctrl.GetUsers)
		admin.PUT("/users/:id/admin", ctrl.SetUserAdmin)
		admin.DELETE("/users/:id", ctrl.DeleteUser)
		admin.GET("/messages", ctrl.GetMessages)
		admin.PUT("/messages/:id/read", ctrl.ToggleMessageRead)
		admin.DELETE("/messages/:id", ctrl.DeleteMessage)
		admin.GET("/subscribers", ctrl.GetSubscribers)
		admin.DELETE("/subscribers/:id", ctrl.DeleteSubscriber)
		admin.GET("/carts", ctrl.GetActiveCarts)
		admin.GET("/reports", ctrl.GetReport)
		admin.GET("/reports/export.xlsx", ctrl.ExportReport)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
	return r
}
