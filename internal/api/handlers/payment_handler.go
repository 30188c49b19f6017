package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/cache"
	"github.com/hasanRafi2002/asgn-12-server/internal/payment"
	"github.com/hasanRafi2002/asgn-12-server/internal/services"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

const (
	MsgInvalidAmount    = "Amount must be a positive number of cents"
	MsgInvalidSignature = "Invalid webhook signature"

	// stripe caps webhook payloads well below this
	maxWebhookBytes = 1 << 16

	idempotencyScopeStripe = "stripe"
)

// PaymentHandler creates payment intents and consumes processor webhooks.
type PaymentHandler struct {
	gateway      payment.IGateway
	offerService services.IOfferService
	idempotency  cache.IIdempotencyStore
	dedupTTL     time.Duration
}

// NewPaymentHandler creates a new PaymentHandler. idempotency may be nil,
// in which case webhook deliveries are not de-duplicated.
func NewPaymentHandler(gateway payment.IGateway, offerService services.IOfferService, idempotency cache.IIdempotencyStore, dedupTTL time.Duration) *PaymentHandler {
	return &PaymentHandler{
		gateway:      gateway,
		offerService: offerService,
		idempotency:  idempotency,
		dedupTTL:     dedupTTL,
	}
}

type createIntentRequest struct {
	Amount  int64  `json:"amount"`
	OfferID string `json:"offerId"`
}

// CreatePaymentIntent handles POST /create-payment-intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req createIntentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Amount <= 0 {
		respondMessage(c, http.StatusBadRequest, MsgInvalidAmount)
		return
	}

	var metadata map[string]string
	if req.OfferID != "" {
		metadata = map[string]string{payment.MetadataOfferID: req.OfferID}
	}

	intent, err := h.gateway.CreateIntent(c.Request.Context(), req.Amount, metadata)
	if err != nil {
		_ = c.Error(err)
		utils.Logger().Error("failed to create payment intent", zap.Int64("amount", req.Amount), zap.Error(err))
		respondMessage(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.PaymentIntentsCreatedTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
}

// StripeWebhook handles POST /webhooks/stripe
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, MsgInvalidRequestBody)
		return
	}

	event, err := h.gateway.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			respondMessage(c, http.StatusBadRequest, MsgInvalidSignature)
			return
		}
		respondError(c, fmt.Errorf("parse webhook: %w", err))
		return
	}

	log := utils.Logger().With(zap.String("eventID", event.ID), zap.String("eventType", event.Type))
	if event.Type != payment.EventPaymentSucceeded || event.Intent == nil {
		log.Debug("ignoring webhook event")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	offerID := event.Intent.Metadata[payment.MetadataOfferID]
	if offerID == "" {
		log.Info("payment intent without offer id", zap.String("intentID", event.Intent.ID))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	ctx := c.Request.Context()
	if h.idempotency != nil {
		first, err := h.idempotency.MarkProcessed(ctx, idempotencyScopeStripe, event.ID, h.dedupTTL)
		if err != nil {
			log.Warn("webhook idempotency check failed", zap.Error(err))
		} else if !first {
			log.Info("duplicate webhook delivery")
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
	}

	if err := h.offerService.ConfirmPayment(ctx, offerID, event.Intent.ID); err != nil {
		var appErr *services.AppError
		if errors.As(err, &appErr) {
			// The offer cannot take this payment; retrying will not help.
			log.Warn("payment not applied to offer", zap.String("offerID", offerID), zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		if h.idempotency != nil {
			if ferr := h.idempotency.Forget(ctx, idempotencyScopeStripe, event.ID); ferr != nil {
				log.Warn("failed to clear webhook idempotency key", zap.Error(ferr))
			}
		}
		respondError(c, fmt.Errorf("confirm payment for offer %s: %w", offerID, err))
		return
	}

	log.Info("payment confirmed", zap.String("offerID", offerID), zap.String("intentID", event.Intent.ID))
	c.JSON(http.StatusOK, gin.H{"received": true})
}
