package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hasanRafi2002/asgn-12-server/internal/models"
	"github.com/hasanRafi2002/asgn-12-server/internal/services"
)

// WishlistHandler handles a bidder's saved listings.
type WishlistHandler struct {
	wishlistService services.IWishlistService
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(wishlistService services.IWishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

type addWishlistRequest struct {
	User     *models.PersonSnapshot     `json:"user"`
	Property *services.WishlistProperty `json:"property"`
}

// AddToWishlist handles POST /api/wishlist
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	var req addWishlistRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.wishlistService.Add(c.Request.Context(), req.User, req.Property)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Property added to wishlist successfully", "wishlistItem": item})
}

// ListWishlist handles GET /api/wishlist/:id where :id is the user id.
func (h *WishlistHandler) ListWishlist(c *gin.Context) {
	items, err := h.wishlistService.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// RemoveFromWishlist handles DELETE /api/wishlist/:id/:propertyId where :id is the user id.
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	if err := h.wishlistService.Remove(c.Request.Context(), c.Param("id"), c.Param("propertyId")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Property removed from wishlist successfully.")
}

// RemovePropertyFromWishlists handles DELETE /api/wishlist/:id where :id is the property id.
func (h *WishlistHandler) RemovePropertyFromWishlists(c *gin.Context) {
	if err := h.wishlistService.RemoveByProperty(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Property deleted from wishlist successfully")
}
