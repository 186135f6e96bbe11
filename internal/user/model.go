package user

import (
	"time"

	"github.com/gofrs/uuid"
)

// User is the stored representation of a user.
type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	FirstName   string    `json:"firstName" db:"first_name"`
	LastName    string    `json:"lastName" db:"last_name"`
	Email       string    `json:"email" db:"email"`
	BirthDate   time.Time `json:"birthDate" db:"birth_date"`
	Address     *string   `json:"address" db:"address"`
	PhoneNumber *string   `json:"phoneNumber" db:"phone_number"`
}

// Patch holds the fields of a partial update. Nil means "keep the existing value".
type Patch struct {
	ID          uuid.UUID
	FirstName   *string
	LastName    *string
	Email       *string
	BirthDate   *time.Time
	Address     *string
	PhoneNumber *string
}

// CreateRequest is the body of POST /users and PUT /users/{id}.
type CreateRequest struct {
	FirstName   *string   `json:"firstName"`
	LastName    *string   `json:"lastName"`
	Email       *string   `json:"email"`
	BirthDate   *DateTime `json:"birthDate"`
	Address     *string   `json:"address"`
	PhoneNumber *string   `json:"phoneNumber"`
}

// UpdateRequest is the body of PATCH /users/{id}. Every field is optional.
type UpdateRequest struct {
	FirstName   *string   `json:"firstName"`
	LastName    *string   `json:"lastName"`
	Email       *string   `json:"email"`
	BirthDate   *DateTime `json:"birthDate"`
	Address     *string   `json:"address"`
	PhoneNumber *string   `json:"phoneNumber"`
}

type Response struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	BirthDate   DateTime  `json:"birthDate"`
	Address     *string   `json:"address"`
	PhoneNumber *string   `json:"phoneNumber"`
}
