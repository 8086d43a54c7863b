package user

import (
	"time"

	domain "usuarios-api/internal/domain/user"
)

// UserInput carries the mutable fields of a user as sent by a client.
// Age and CreatedAt are pointers so "absent" can be told apart from the zero value.
type UserInput struct {
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Age       *int             `json:"age,omitempty"`
	CreatedAt *time.Time       `json:"created_at,omitempty"`
	Addresses []domain.Address `json:"addresses"`
}

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	UserInput
}

// CreateUserResponse represents the response payload after creating a user.
type CreateUserResponse struct {
	User *domain.User
}

// UpdateUserRequest represents the request payload for replacing an existing user.
// CreatedAt in the input is ignored.
type UpdateUserRequest struct {
	ID string
	UserInput
}

// UpdateUserResponse represents the response payload after updating a user.
type UpdateUserResponse struct {
	User *domain.User
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID string
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID      string
	Message string
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID string
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	User *domain.User
}

// ListUsersRequest represents the request payload for listing users.
type ListUsersRequest struct {
	Page  int64
	Limit int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []domain.User
	Pagination *domain.Pagination
}

// SearchByCityRequest represents a search over address cities.
type SearchByCityRequest struct {
	City string
}

// SearchByCityResponse holds every user with at least one address in the requested city.
type SearchByCityResponse struct {
	Users []domain.User
}

// toEntity builds a domain user from client input.
func (in UserInput) toEntity() *domain.User {
	u := &domain.User{
		Name:      in.Name,
		Email:     in.Email,
		Age:       in.Age,
		Addresses: in.Addresses,
	}
	if in.CreatedAt != nil {
		u.CreatedAt = *in.CreatedAt
	}
	return u
}
