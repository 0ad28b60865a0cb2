// internal/domain/models/reservation.go
package models

// Reservation occupies one calendar day.
//
// DateKey doubles as the document _id, so the reservations collection can hold
// at most one reservation per day. User is a snapshot taken when the
// reservation was written; read paths resolve the live profile through UserID.
type Reservation struct {
	DateKey string `bson:"_id" json:"date"`
	UserID  string `bson:"user_id" json:"user_id"`
	User    User   `bson:"user" json:"-"`
}
