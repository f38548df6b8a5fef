package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
)

type placeOrderRequest struct {
	PaymentRef string `json:"paymentRef"`
	PaymentID  string `json:"paymentId"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *api) createPaymentIntent(c *gin.Context) {
	intent, err := h.deps.Orders.CreatePaymentIntent(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Payment order created", "Intent": intent})
}

func (h *api) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	o, err := h.deps.Orders.PlaceOrder(c.Request.Context(), currentUserID(c), firstNonEmpty(req.PaymentRef, req.PaymentID))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"Message": "Order placed successfully", "Order": o})
}

func (h *api) listOrders(c *gin.Context) {
	orders, err := h.deps.Orders.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "OK", "Orders": orders})
}

func (h *api) trackOrder(c *gin.Context) {
	o, err := h.deps.Orders.Track(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "OK", "Order": o})
}

func (h *api) cancelOrder(c *gin.Context) {
	o, err := h.deps.Orders.Cancel(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Order cancelled", "Order": o})
}

func (h *api) confirmOrder(c *gin.Context) {
	o, err := h.deps.Orders.Advance(c.Request.Context(), c.Param("id"), domain.OrderConfirmed)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Order confirmed successfully", "Order": o})
}

func (h *api) advanceOrder(c *gin.Context) {
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	target, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	o, err := h.deps.Orders.Advance(c.Request.Context(), c.Param("id"), target)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Order status updated", "Order": o})
}
