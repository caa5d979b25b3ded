package handler

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"crosspay_back/models"
	"crosspay_back/pkg/middleware"
	"crosspay_back/pkg/service"
)

type Handler struct {
	service *service.Service
}

func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) InitRoute(allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-User-ID", "X-Team-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.GET("/me", middleware.AuthMiddleware(), h.GetMe)
	}

	api := router.Group("/api", middleware.AuthMiddleware())
	{
		wallet := api.Group("/wallet")
		{
			wallet.GET("/", h.GetWallet)
			wallet.POST("/create", h.CreateWallet)
			wallet.POST("/deposit", h.Deposit)
			wallet.PATCH("/display-currency", h.SetDisplayCurrency)
			wallet.POST("/convert", h.ConvertToStablecoin)
		}

		chain := api.Group("/chain-wallets")
		{
			chain.POST("/", h.CreateChainWallet)
			chain.POST("/multisig", h.CreateMultisigWallet)
			chain.GET("/", h.ListChainWallets)
			chain.GET("/:id", h.GetChainWallet)
			chain.PATCH("/:id/active", h.SetChainWalletActive)
			chain.GET("/:id/transactions", h.ListTransactions)
		}

		transfers := api.Group("/transfers")
		{
			transfers.POST("/", h.Transfer)
			transfers.POST("/reconcile", h.Reconcile)
		}

		trades := api.Group("/trades")
		{
			trades.POST("/", h.RecordTrade)
			trades.GET("/", h.ListTrades)
		}
	}
	return router
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(middleware.UserIDKey)
}

// currentScope — пользователь и команда из доверенных заголовков,
// проставленных AuthMiddleware; из тела или query скоуп не расширяется
func currentScope(c *gin.Context) models.Scope {
	scope := models.Scope{UserID: currentUserID(c)}
	if raw, ok := c.Get(middleware.TeamIDKey); ok {
		if teamID, ok := raw.(int64); ok {
			scope.TeamID = &teamID
		}
	}
	return scope
}
