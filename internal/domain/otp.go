package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTP is the one live signup code for an email address.
type OTP struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Email     string             `bson:"email" json:"email"`
	Code      string             `bson:"code" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
}

// PendingSignup holds registration data between signup initiation and OTP verification.
// The password is already hashed when it lands here.
type PendingSignup struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Age          int    `json:"age,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	MobileNumber string `json:"mobile_number,omitempty"`
	Role         string `json:"role"`
}

func (p PendingSignup) User(now time.Time) *User {
	return &User{
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Age:          p.Age,
		City:         p.City,
		State:        p.State,
		MobileNumber: p.MobileNumber,
		Role:         p.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
