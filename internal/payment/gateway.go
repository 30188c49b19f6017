package payment

import (
	"context"
	"errors"
)

// MetadataOfferID links a payment intent back to the offer it pays for.
const MetadataOfferID = "offerId"

// EventPaymentSucceeded is the webhook event type for a captured payment.
const EventPaymentSucceeded = "payment_intent.succeeded"

var (
	// ErrDisabled is returned when no payment processor is configured.
	ErrDisabled = errors.New("payment: gateway not configured")
	// ErrInvalidSignature is returned for a webhook payload that fails verification.
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
)

// Intent is the subset of a payment intent the marketplace relies on.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"clientSecret"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Succeeded reports whether the processor captured the payment.
func (i *Intent) Succeeded() bool {
	return i != nil && i.Status == "succeeded"
}

// WebhookEvent is a verified notification from the processor.
type WebhookEvent struct {
	ID     string
	Type   string
	Intent *Intent // set for payment_intent.* events
}

// IGateway creates and inspects payment intents on the external processor.
type IGateway interface {
	CreateIntent(ctx context.Context, amount int64, metadata map[string]string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

type disabledGateway struct{}

// NewDisabledGateway returns a gateway that fails every call with ErrDisabled.
func NewDisabledGateway() IGateway {
	return disabledGateway{}
}

func (disabledGateway) CreateIntent(context.Context, int64, map[string]string) (*Intent, error) {
	return nil, ErrDisabled
}

func (disabledGateway) GetIntent(context.Context, string) (*Intent, error) {
	return nil, ErrDisabled
}

func (disabledGateway) ParseWebhook([]byte, string) (*WebhookEvent, error) {
	return nil, ErrDisabled
}
