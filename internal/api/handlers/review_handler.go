package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hasanRafi2002/asgn-12-server/internal/services"
)

// ReviewHandler handles listing reviews.
type ReviewHandler struct {
	reviewService services.IReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService services.IReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// AddReview handles POST /api/properties/:id/reviews
func (h *ReviewHandler) AddReview(c *gin.Context) {
	var req services.CreateReviewInput
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Add(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// ListPropertyReviews handles GET /api/properties/:id/reviews
func (h *ReviewHandler) ListPropertyReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListByProperty(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// ListReviews handles GET /api/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviewService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// ListReviewerReviews handles GET /api/reviews/:id where :id is the reviewer email.
func (h *ReviewHandler) ListReviewerReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListByReviewer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// DeleteReview handles DELETE /api/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	if err := h.reviewService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Review deleted successfully")
}
