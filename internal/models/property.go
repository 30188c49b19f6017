package models

import (
	"time"
)

// PropertyStatus is the verification state of a listing.
type PropertyStatus string

const (
	PropertyStatusPending  PropertyStatus = "pending"
	PropertyStatusVerified PropertyStatus = "verified"
	PropertyStatusRejected PropertyStatus = "rejected"
)

// Property is a listing offered for sale by an agent.
type Property struct {
	Base        `bson:",inline"`
	PropertyID  string         `bson:"propertyId" json:"propertyId"`
	Title       string         `bson:"title" json:"title"`
	Location    string         `bson:"location" json:"location"`
	Description string         `bson:"description" json:"description"`
	Image       string         `bson:"image" json:"image"`
	PriceRange  PriceRange     `bson:"priceRange" json:"priceRange"`
	Agent       AgentSnapshot  `bson:"agent" json:"agent"`
	Status      PropertyStatus `bson:"status" json:"status"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
}
