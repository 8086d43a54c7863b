package user

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a new user identifier: a 24-digit hex ObjectID.
// Every store backend uses this format so ID validation does not depend on the backend.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed user identifier.
func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
