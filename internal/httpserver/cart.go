package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	cartsvc "storefront/internal/service/cart"
)

func (h *api) getCart(c *gin.Context) {
	cart, err := h.deps.Carts.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "OK", "Cart": cart})
}

func (h *api) addToCart(c *gin.Context) {
	var req cartsvc.AddItemInput
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	cart, err := h.deps.Carts.AddItem(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Product added to cart", "Cart": cart})
}

func (h *api) removeFromCart(c *gin.Context) {
	cart, err := h.deps.Carts.RemoveItem(c.Request.Context(), currentUserID(c), c.Param("productId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Product removed from cart", "Cart": cart})
}

func (h *api) clearCart(c *gin.Context) {
	if err := h.deps.Carts.Clear(c.Request.Context(), currentUserID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Cart cleared"})
}
