package user

import (
	"time"
)

// Address is a postal address embedded in a User. It has no identity of its own.
type Address struct {
	Street     string `json:"street" validate:"required"`      // Street is the street line
	City       string `json:"city" validate:"required"`        // City is matched case-insensitively by city search
	Country    string `json:"country" validate:"required"`     // Country is the country name
	PostalCode string `json:"postal_code" validate:"required"` // PostalCode is the postal or ZIP code
}

// User represents a user entity in the system.
type User struct {
	ID        string    `json:"id"`                                 // ID is assigned at creation and never changes
	Name      string    `json:"name" validate:"required"`           // Name is the full name of the user
	Email     string    `json:"email" validate:"required,docemail"` // Email is unique across all users
	Age       *int      `json:"age,omitempty" validate:"omitempty,min=0"`
	CreatedAt time.Time `json:"created_at"`                       // CreatedAt never changes after creation
	Addresses []Address `json:"addresses" validate:"min=1,dive"` // Addresses holds at least one address
}

// PrepareForInsert assigns a new ID and defaults CreatedAt to now when unset.
// Timestamps are stored in UTC at millisecond precision, which is what the document store keeps.
func (u *User) PrepareForInsert(now time.Time) {
	if u.ID == "" {
		u.ID = NewID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.CreatedAt = u.CreatedAt.UTC().Truncate(time.Millisecond)
}
