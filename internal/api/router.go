package api

import (
	"net/http"

	"order_system/internal/auth"
	"order_system/internal/metrics"
	"order_system/internal/middleware"
	"order_system/internal/policy"
	"order_system/internal/service"
	"order_system/internal/store"

	"github.com/gin-gonic/gin"
)

// Deps are the services the routes are wired to
type Deps struct {
	Gate        *auth.Gate
	Accounts    *service.AccountService
	Orders      *store.OrderStore
	Aggregation *service.AggregationService
}

// NewRouter builds the gin engine with every route and its permission
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.LoggerMiddleware(), metrics.Middleware())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/metrics", metrics.Handler())

	// Public routes
	r.POST("/accounts-token", LoginHandler(d.Gate))
	r.POST("/signup", SignupHandler(d.Accounts))

	// Everything below resolves the token first; the permission middleware turns a missing caller into 401
	authed := r.Group("", middleware.TokenAuthMiddleware(d.Gate))
	permit := middleware.PermissionMiddleware

	accounts := authed.Group("/accounts")
	accounts.GET("", permit(policy.AccountList), ListAccountsHandler(d.Accounts))
	accounts.POST("", permit(policy.AccountCreate), CreateAccountHandler(d.Accounts))
	accounts.GET("/:id", permit(policy.AccountRead), GetAccountHandler(d.Accounts))
	accounts.PATCH("/:id", permit(policy.AccountUpdate), UpdateAccountHandler(d.Accounts))
	accounts.DELETE("/:id", permit(policy.AccountDelete), DeleteAccountHandler(d.Accounts))

	orders := authed.Group("/orders")
	orders.GET("", permit(policy.OrderList), ListOrdersHandler(d.Orders))
	orders.POST("", permit(policy.OrderCreate), CreateOrderHandler(d.Orders))
	orders.GET("/:id", permit(policy.OrderRead), GetOrderHandler(d.Orders))
	orders.PATCH("/:id", permit(policy.OrderUpdate), UpdateOrderHandler(d.Orders))
	orders.DELETE("/:id", permit(policy.OrderDelete), DeleteOrderHandler(d.Orders))

	admin := authed.Group("/admin")
	admin.GET("/all-emails", permit(policy.AggregateEmails), AllEmailsHandler(d.Aggregation))
	admin.POST("/orders-by-email", permit(policy.AggregateOrdersByEmail), OrdersByEmailHandler(d.Aggregation))

	return r
}
