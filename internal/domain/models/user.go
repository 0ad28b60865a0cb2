// internal/domain/models/user.go
package models

import "time"

// User is a directory entry for one person on the duty roster.
//
// ID is issued by the identity provider and never changes; it is the only key
// reservations use to refer back to a user. SecretCode is single-use: it is
// replaced for both parties after every successful swap.
type User struct {
	ID         string  `bson:"_id" json:"id"`
	Name       string  `bson:"name" json:"name"`
	LastName   string  `bson:"last_name" json:"last_name"`
	Rank       string  `bson:"rank" json:"rank"`
	SecretCode string  `bson:"secret_code" json:"-"`
	IsAdmin    bool    `bson:"is_admin" json:"is_admin"`
	Email      *string `bson:"email,omitempty" json:"email,omitempty"`
	PhotoURL   *string `bson:"photo_url,omitempty" json:"photo_url,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// FullName joins the first and last name for display.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}
