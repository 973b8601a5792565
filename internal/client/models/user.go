// Package models defines client-side data models used by the UserDash CLI.
package models

// UserRecord is one row of the local Users table.
type UserRecord struct {
	// ID is assigned by the store.
	ID int64

	// Email is the reconciliation key; unique in the table.
	Email string `validate:"required,email"`

	Contact string

	// RemoteID is the opaque identifier of the remote document (column uid).
	RemoteID string

	// Name is set by the contact-details flow and may be empty.
	Name string

	// SignupDate is an ISO-8601 timestamp written once at insertion.
	SignupDate string
}

// RemoteUserRecord is a document of the remote users collection.
type RemoteUserRecord struct {
	RemoteID string `bson:"uid" json:"uid"`
	Name     string `bson:"name,omitempty" json:"name,omitempty"`
	Email    string `bson:"email" json:"email"`
	Contact  string `bson:"contact" json:"contact"`
}

// ToUserRecord maps a remote document to the row reconciliation inserts.
// Name is not carried over; only the contact-details flow writes it.
func (r RemoteUserRecord) ToUserRecord() UserRecord {
	return UserRecord{
		Email:    r.Email,
		Contact:  r.Contact,
		RemoteID: r.RemoteID,
	}
}
