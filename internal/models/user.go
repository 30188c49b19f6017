package models

import (
	"time"
)

// Known user roles. Role is stored as an open string.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleAdmin = "admin"
	RoleFraud = "fraud"
)

// User is the marketplace profile of an identity-provider account.
type User struct {
	Base      `bson:",inline"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	PhotoURL  *string   `bson:"photoURL" json:"photoURL"`
	Role      string    `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
