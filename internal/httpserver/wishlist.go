package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

func (h *api) listWishlist(c *gin.Context) {
	items, err := h.deps.Wishlist.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "OK", "Wishlist": items})
}

func (h *api) addToWishlist(c *gin.Context) {
	var req wishlistRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.deps.Wishlist.Add(c.Request.Context(), currentUserID(c), req.ProductID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"Message": "Product added to wishlist"})
}

func (h *api) removeFromWishlist(c *gin.Context) {
	if err := h.deps.Wishlist.Remove(c.Request.Context(), currentUserID(c), c.Param("productId")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Product removed from wishlist"})
}
