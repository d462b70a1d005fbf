// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/bakery-storefront/internal/domain/auth"
	"github.com/your-org/bakery-storefront/internal/domain/catalog"
	"github.com/your-org/bakery-storefront/internal/domain/checkout"
	"github.com/your-org/bakery-storefront/internal/domain/order"
	"github.com/your-org/bakery-storefront/internal/domain/payment"
	"github.com/your-org/bakery-storefront/internal/domain/review"
	"github.com/your-org/bakery-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/bakery-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/bakery-storefront/internal/pkg/pdf"
	"github.com/your-org/bakery-storefront/internal/session"
)

// Services bundles the domain services behind the routes
type Services struct {
	Auth     *auth.Service
	Catalog  *catalog.Service
	Orders   *order.Service
	Checkout *checkout.Service
	Payments *payment.Service
	Reviews  *review.Service
	PDF      *pdf.Service
}

// SetupAuthRoutes sets up sign-in and session routes
func SetupAuthRoutes(rg *gin.RouterGroup, svc *Services, guard gin.HandlerFunc) {
	authHandler := handlers.NewAuthHandler(svc.Auth)

	rg.GET("/session", authHandler.Session)
	rg.POST("/session/reset", authHandler.Reset)

	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/password/confirm", authHandler.ConfirmPassword)
		authGroup.POST("/:actor/login", guard, authHandler.Login)
		authGroup.POST("/:actor/logout", authHandler.Logout)
		authGroup.GET("/:actor/me", authHandler.Me)
	}
}

// SetupCatalogRoutes sets up the public product and category routes
func SetupCatalogRoutes(rg *gin.RouterGroup, svc *Services) {
	productHandler := handlers.NewProductHandler(svc.Catalog)
	categoryHandler := handlers.NewCategoryHandler(svc.Catalog)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}

	rg.GET("/categories", categoryHandler.GetCategories)
}

// SetupCustomerRoutes sets up routes that need a signed-in customer
func SetupCustomerRoutes(rg *gin.RouterGroup, svc *Services, guard gin.HandlerFunc) {
	cartHandler := handlers.NewCartHandler(svc.Catalog)
	checkoutHandler := handlers.NewCheckoutHandler(svc.Checkout, svc.Catalog)
	orderHandler := handlers.NewOrderHandler(svc.Orders, svc.Reviews, svc.PDF)
	paymentHandler := handlers.NewPaymentHandler(svc.Payments, svc.Orders)
	reviewHandler := handlers.NewReviewHandler(svc.Reviews)

	customer := rg.Group("")
	customer.Use(middleware.RequireActor(session.ActorCustomer))

	cart := customer.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", guard, cartHandler.AddToCart)
		cart.PUT("/items/:id", guard, cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", guard, cartHandler.RemoveFromCart)
		cart.DELETE("", guard, cartHandler.ClearCart)
	}

	checkoutGroup := customer.Group("/checkout")
	{
		checkoutGroup.POST("", guard, checkoutHandler.Checkout)
		checkoutGroup.POST("/buy-now", guard, checkoutHandler.BuyNow)
	}

	orders := customer.Group("/orders")
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/reviewable", orderHandler.GetReviewable)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/receipt", orderHandler.DownloadReceipt)
		orders.POST("/:id/cancel", guard, orderHandler.CancelOrder)
		orders.POST("/:id/pay", guard, paymentHandler.PayOrder)
	}

	reviews := customer.Group("/reviews")
	{
		reviews.GET("", reviewHandler.GetMyReviews)
		reviews.POST("", guard, reviewHandler.CreateReview)
	}
}

// SetupPaymentRoutes sets up the gateway widget relay routes
func SetupPaymentRoutes(rg *gin.RouterGroup, svc *Services) {
	paymentHandler := handlers.NewPaymentHandler(svc.Payments, svc.Orders)

	gateway := rg.Group("/payments/gateway")
	{
		gateway.POST("/:orderId/callback", paymentHandler.Callback)
		gateway.GET("/:orderId/status", paymentHandler.GatewayStatus)
		gateway.DELETE("/:orderId", paymentHandler.Abandon)
	}
}

// SetupChatRoutes sets up the polling chat routes, open to either actor
func SetupChatRoutes(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	chatHandler := handlers.NewChatHandler()

	chat := rg.Group("/chat")
	{
		chat.GET("/users", chatHandler.GetUsers)
		chat.PUT("/conversation/:userId", chatHandler.SelectConversation)
		chat.DELETE("/conversation", chatHandler.CloseConversation)
		chat.GET("/messages", chatHandler.GetMessages)
		chat.POST("/messages", guard, chatHandler.SendMessage)
		chat.DELETE("", chatHandler.Leave)
	}
}

// SetupAdminRoutes sets up staff back-office routes
func SetupAdminRoutes(rg *gin.RouterGroup, svc *Services, guard gin.HandlerFunc) {
	productHandler := handlers.NewProductHandler(svc.Catalog)
	categoryHandler := handlers.NewCategoryHandler(svc.Catalog)
	orderHandler := handlers.NewOrderHandler(svc.Orders, svc.Reviews, svc.PDF)
	checkoutHandler := handlers.NewCheckoutHandler(svc.Checkout, svc.Catalog)
	paymentHandler := handlers.NewPaymentHandler(svc.Payments, svc.Orders)
	reviewHandler := handlers.NewReviewHandler(svc.Reviews)

	admin := rg.Group("/admin")
	admin.Use(middleware.RequireActor(session.ActorStaff))

	products := admin.Group("/products")
	{
		products.POST("", guard, productHandler.AdminCreateProduct)
		products.PUT("/:id", guard, productHandler.AdminUpdateProduct)
		products.DELETE("/:id", guard, productHandler.AdminDeleteProduct)
		products.PUT("/:id/stock", guard, productHandler.AdminUpdateStock)
	}

	categories := admin.Group("/categories")
	{
		categories.POST("", guard, categoryHandler.AdminCreateCategory)
		categories.PUT("/:id", guard, categoryHandler.AdminUpdateCategory)
		categories.DELETE("/:id", guard, categoryHandler.AdminDeleteCategory)
	}

	orders := admin.Group("/orders")
	{
		orders.GET("", orderHandler.AdminGetOrders)
		orders.POST("", guard, checkoutHandler.AdminPlaceOrder)
		orders.PUT("/:id", guard, orderHandler.AdminUpdateOrder)
		orders.PATCH("/:id/advance", guard, orderHandler.AdminAdvanceOrder)
		orders.POST("/:id/cash-paid", guard, paymentHandler.AdminCashPaid)
		orders.GET("/:id/receipt", orderHandler.DownloadReceipt)
	}

	admin.GET("/payments", paymentHandler.AdminGetPayments)
	admin.GET("/checkout-runs", checkoutHandler.AdminRuns)

	reviews := admin.Group("/reviews")
	{
		reviews.GET("", reviewHandler.AdminGetReviews)
		reviews.POST("/:id/reply", guard, reviewHandler.AdminReply)
		reviews.DELETE("/:id", guard, reviewHandler.AdminDeleteReview)
	}
}

// SetupRoutes sets up all API routes. guard is applied to every mutation that
// must not run twice concurrently for the same device.
func SetupRoutes(rg *gin.RouterGroup, svc *Services, guard gin.HandlerFunc) {
	rg.GET("/notifications", handlers.GetNotifications)

	SetupAuthRoutes(rg, svc, guard)
	SetupCatalogRoutes(rg, svc)
	SetupCustomerRoutes(rg, svc, guard)
	SetupPaymentRoutes(rg, svc)
	SetupChatRoutes(rg, guard)
	SetupAdminRoutes(rg, svc, guard)
}
