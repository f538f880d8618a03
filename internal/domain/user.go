package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	Email                string             `bson:"email" json:"email"`
	PasswordHash         string             `bson:"password" json:"-"`
	Age                  int                `bson:"age,omitempty" json:"age,omitempty"`
	City                 string             `bson:"city,omitempty" json:"city,omitempty"`
	State                string             `bson:"state,omitempty" json:"state,omitempty"`
	MobileNumber         string             `bson:"mobile_number,omitempty" json:"mobileNumber,omitempty"`
	Role                 string             `bson:"role" json:"role"`
	RefreshToken         *string            `bson:"refresh_token,omitempty" json:"-"`
	ResetPasswordToken   *string            `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpires *time.Time         `bson:"reset_password_expires,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Profile is the public projection of a User. It never carries credentials or tokens.
type Profile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Age          int    `json:"age,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	Role         string `json:"role"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:           u.ID.Hex(),
		Name:         u.Name,
		Email:        u.Email,
		Age:          u.Age,
		City:         u.City,
		State:        u.State,
		MobileNumber: u.MobileNumber,
		Role:         u.Role,
	}
}
