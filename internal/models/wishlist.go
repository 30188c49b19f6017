package models

import (
	"time"
)

// WishlistItem is a bidder's saved listing; unique per (user.userId, propertyId).
type WishlistItem struct {
	Base       `bson:",inline"`
	User       PersonSnapshot `bson:"user" json:"user"`
	PropertyID string         `bson:"propertyId" json:"propertyId"`
	Title      string         `bson:"title" json:"title"`
	Location   string         `bson:"location" json:"location"`
	Image      string         `bson:"image" json:"image"`
	Status     string         `bson:"status" json:"status"`
	PriceRange PriceRange     `bson:"priceRange" json:"priceRange"`
	Agent      AgentSnapshot  `bson:"agent" json:"agent"`
	CreatedAt  time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time      `bson:"updatedAt" json:"updatedAt"`
}
