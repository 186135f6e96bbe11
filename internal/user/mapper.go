package user

import (
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
)

// Mapper converts between requests, entities and responses.
type Mapper struct {
	newID func() (uuid.UUID, error)
}

func NewMapper() *Mapper {
	return &Mapper{newID: uuid.NewV4}
}

// ToEntity builds a new user with a freshly generated id.
func (m *Mapper) ToEntity(req CreateRequest) (User, error) {
	id, err := m.newID()
	if err != nil {
		return User{}, fmt.Errorf("failed to generate user id: %w", err)
	}
	return m.ToEntityWithID(id, req), nil
}

// ToEntityWithID builds a user from a full request, keeping the given id.
// Absent optional fields stay nil.
func (m *Mapper) ToEntityWithID(id uuid.UUID, req CreateRequest) User {
	u := User{
		ID:          id,
		FirstName:   trimmed(req.FirstName),
		LastName:    trimmed(req.LastName),
		Email:       trimmed(req.Email),
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
	}
	if req.BirthDate != nil {
		u.BirthDate = req.BirthDate.Time
	}
	return u
}

// ToPatch maps a partial update. Fields absent in the request stay nil.
func (m *Mapper) ToPatch(id uuid.UUID, req UpdateRequest) Patch {
	p := Patch{
		ID:          id,
		FirstName:   trimmedPtr(req.FirstName),
		LastName:    trimmedPtr(req.LastName),
		Email:       trimmedPtr(req.Email),
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
	}
	if req.BirthDate != nil {
		birthDate := req.BirthDate.Time
		p.BirthDate = &birthDate
	}
	return p
}

func (m *Mapper) ToResponse(u User) Response {
	return Response{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		BirthDate:   NewDateTime(u.BirthDate),
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
	}
}

// ToResponses keeps the order of users and never returns nil.
func (m *Mapper) ToResponses(users []User) []Response {
	responses := make([]Response, 0, len(users))
	for _, u := range users {
		responses = append(responses, m.ToResponse(u))
	}
	return responses
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
