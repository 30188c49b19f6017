package models

import (
	"time"
)

// OfferStatus is the lifecycle state of an offer.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
	OfferStatusBought   OfferStatus = "bought"
)

// Offer is a bid on a listing. Title, location, image and agent are copied
// from the listing when the offer is made.
type Offer struct {
	Base                 `bson:",inline"`
	User                 PersonSnapshot `bson:"user" json:"user"`
	PropertyID           string         `bson:"propertyId" json:"propertyId"`
	Title                string         `bson:"title" json:"title"`
	Location             string         `bson:"location" json:"location"`
	Image                string         `bson:"image" json:"image"`
	Agent                AgentSnapshot  `bson:"agent" json:"agent"`
	OfferAmount          float64        `bson:"offerAmount" json:"offerAmount"`
	BuyingDate           time.Time      `bson:"buyingDate" json:"buyingDate"`
	Status               OfferStatus    `bson:"status" json:"status"`
	PaymentTransactionID string         `bson:"paymentTransactionId,omitempty" json:"paymentTransactionId,omitempty"`
	CreatedAt            time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time      `bson:"updatedAt" json:"updatedAt"`
}
