package models

import (
	"time"
)

type Review struct {
	Base          `bson:",inline"`
	ReviewID      string         `bson:"reviewId" json:"reviewId"`
	PropertyID    string         `bson:"propertyId" json:"propertyId"`
	PropertyTitle string         `bson:"propertyTitle" json:"propertyTitle"`
	Agent         AgentSnapshot  `bson:"agent" json:"agent"`
	Reviewer      PersonSnapshot `bson:"reviewer" json:"reviewer"`
	ReviewText    string         `bson:"reviewText" json:"reviewText"`
	Rating        float64        `bson:"rating" json:"rating"`
	CreatedAt     time.Time      `bson:"createdAt" json:"createdAt"`
}
