package user

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

// Repository persists users. FindByID returns ErrNotFound when the user does
// not exist; Update, Replace and Delete do the same when the row is gone.
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, id uuid.UUID, u *User) (*User, error)
	Replace(ctx context.Context, id uuid.UUID, u *User) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByBirthDateRange returns users born on any day from "from" through
	// "to" inclusive, ordered by birth date and then id.
	FindByBirthDateRange(ctx context.Context, from, to time.Time) ([]User, error)
}

// rangeBounds turns the inclusive calendar-day range into a half-open
// [lower, upper) interval of instants.
func rangeBounds(from, to time.Time) (time.Time, time.Time) {
	lower := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	upper := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)
	return lower, upper
}
