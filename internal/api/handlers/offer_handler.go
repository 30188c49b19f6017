package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hasanRafi2002/asgn-12-server/internal/api/middleware"
	"github.com/hasanRafi2002/asgn-12-server/internal/services"
)

// OfferHandler handles bidder and agent requests on offers.
type OfferHandler struct {
	offerService services.IOfferService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(offerService services.IOfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// CreateOffer handles POST /api/offers
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var req services.CreateOfferInput
	if !bindJSON(c, &req) {
		return
	}

	offer, err := h.offerService.CreateOffer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Offer made successfully.", "offer": offer})
}

// ListBuyerOffers handles GET /api/offers/:id where :id is the bidder's user id.
func (h *OfferHandler) ListBuyerOffers(c *gin.Context) {
	offers, err := h.offerService.ListByBuyer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

type recordPaymentRequest struct {
	PaymentTransactionID string `json:"paymentTransactionId"`
	Status               string `json:"status"`
}

// RecordPayment handles PUT /api/offers/:id/payment
func (h *OfferHandler) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.offerService.RecordOfferPayment(c.Request.Context(), c.Param("id"), req.PaymentTransactionID, req.Status); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Payment status updated successfully")
}

// ListAgentOffers handles GET /api/agent/offers/:id where :id is the agent email.
func (h *OfferHandler) ListAgentOffers(c *gin.Context) {
	offers, err := h.offerService.ListByAgent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

// ListSoldProperties handles GET /api/agent/sold/:agentEmail
func (h *OfferHandler) ListSoldProperties(c *gin.Context) {
	offers, err := h.offerService.ListSoldByAgent(c.Request.Context(), c.Param("agentEmail"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

// AcceptOffer handles PUT /api/agent/offers/:id/accept. Requires AuthMiddleware.
func (h *OfferHandler) AcceptOffer(c *gin.Context) {
	if err := h.offerService.AcceptOffer(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextKeyUserEmail)); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Offer accepted successfully")
}

// RejectOffer handles PUT /api/agent/offers/:id/reject. Requires AuthMiddleware.
func (h *OfferHandler) RejectOffer(c *gin.Context) {
	if err := h.offerService.RejectOffer(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextKeyUserEmail)); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Offer rejected successfully")
}
