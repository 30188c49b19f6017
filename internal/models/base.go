package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base carries the document identity shared by every collection.
// The JSON name stays "_id" so existing clients keep working.
type Base struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
}

func NewBase() Base {
	return Base{ID: primitive.NewObjectID()}
}

// PriceRange is an inclusive price band in the listing currency.
type PriceRange struct {
	Min float64 `bson:"min" json:"min"`
	Max float64 `bson:"max" json:"max"`
}

// Contains reports whether amount lies within the range, bounds included.
func (p PriceRange) Contains(amount float64) bool {
	return amount >= p.Min && amount <= p.Max
}

// AgentSnapshot is the denormalised agent shown next to listings, offers and reviews.
type AgentSnapshot struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Image string `bson:"image" json:"image"`
}

// PersonSnapshot is the denormalised bidder or reviewer identity.
type PersonSnapshot struct {
	UserID string `bson:"userId" json:"userId"`
	Name   string `bson:"name" json:"name"`
	Email  string `bson:"email" json:"email"`
	Image  string `bson:"image" json:"image"`
}
