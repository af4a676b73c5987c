package routes

import (
	"github.com/gin-gonic/gin"

	"genpay/internal/handlers"
	"genpay/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	clientHandler *handlers.ClientHandler,
	paymentHandler *handlers.PaymentHandler,
	receiptHandler *handlers.ReceiptHandler,
	settingsHandler *handlers.SettingsHandler,
) *gin.Engine {

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())

	// ---- public
	api.GET("/health", handlers.Health)
	api.GET("/settings", settingsHandler.Get)

	auth := api.Group("/auth")
	{
		auth.GET("/check", authHandler.Check)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// ---- protected
	users := api.Group("/users", middleware.RequireAdmin())
	{
		users.POST("/create", userHandler.Create)
		users.GET("/list", userHandler.List)
	}

	clients := api.Group("/clients")
	{
		clients.GET("", clientHandler.List)
		clients.GET("/search", clientHandler.Search)
		clients.GET("/:name", clientHandler.GetByName)
	}

	payments := api.Group("/payments")
	{
		payments.POST("/process", paymentHandler.Process)
		payments.GET("", paymentHandler.List)
		payments.GET("/total-last", paymentHandler.TotalLast)
	}

	receipts := api.Group("/receipt")
	{
		receipts.GET("/by-id/:payment_id", receiptHandler.GetByPaymentID)
		receipts.GET("/by-id/:payment_id/pdf", receiptHandler.GetPDF)
		receipts.POST("/by-id/:payment_id/email", receiptHandler.Email)
	}

	return r
}
