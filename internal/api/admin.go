package api

import (
	"net/http" // HTTP status codes

	"order_system/internal/domain"  // Importing domain models
	"order_system/internal/respond" // JSON error responses
	"order_system/internal/service" // Aggregation service

	"github.com/gin-gonic/gin" // Gin web framework
)

// AggregateOrderResponse is an order with its owner folded in
type AggregateOrderResponse struct {
	OrderResponse
	AccountID uint   `json:"account_id"` // Owning account
	Username  string `json:"username"`   // Owner username
	Email     string `json:"email"`      // Owner email
}

// OrdersByEmailRequest lists the emails to collect orders for
type OrdersByEmailRequest struct {
	Emails []string `json:"emails"` // Must contain at least one address
}

// OrdersByEmailResponse is the admin aggregate result
type OrdersByEmailResponse struct {
	Orders      []AggregateOrderResponse `json:"orders"`      // Matching orders
	TotalOrders int                      `json:"totalOrders"` // Number of orders
	EmailsFound []string                 `json:"emailsFound"` // Input emails that matched an account
}

func toAggregateOrder(o domain.Order) AggregateOrderResponse {
	resp := AggregateOrderResponse{OrderResponse: toOrderResponse(o), AccountID: o.AccountID}
	if o.Account != nil {
		resp.Username = o.Account.Username
		resp.Email = o.Account.Email
	}
	return resp
}

// AllEmailsHandler returns every account email
func AllEmailsHandler(aggregation *service.AggregationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		emails, cached, err := aggregation.AllEmails(c.Request.Context())
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"emails": emails, // One per account
			"cached": cached, // Indicate whether the response is from cache
		})
	}
}

// OrdersByEmailHandler collects the orders of the accounts owning the given emails
func OrdersByEmailHandler(aggregation *service.AggregationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OrdersByEmailRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}
		result, err := aggregation.OrdersByEmails(c.Request.Context(), req.Emails)
		if err != nil {
			respond.Error(c, err) // 400 when no emails were given
			return
		}
		resp := OrdersByEmailResponse{
			Orders:      make([]AggregateOrderResponse, len(result.Orders)),
			TotalOrders: result.TotalOrders,
			EmailsFound: result.EmailsFound,
		}
		// Map orders to response format
		for i, o := range result.Orders {
			resp.Orders[i] = toAggregateOrder(o)
		}
		c.JSON(http.StatusOK, resp)
	}
}
