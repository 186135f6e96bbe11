package user_test

import (
	"time"

	"github.com/vasiliy-maslov/users-api/internal/user"
)

func strPtr(s string) *string {
	return &s
}

func dateTimePtr(t time.Time) *user.DateTime {
	dt := user.NewDateTime(t)
	return &dt
}

func validCreateRequest() user.CreateRequest {
	return user.CreateRequest{
		FirstName:   strPtr("Bob"),
		LastName:    strPtr("John"),
		Email:       strPtr("bobJohn@email.com"),
		BirthDate:   dateTimePtr(time.Now().AddDate(-18, 0, 0)),
		Address:     strPtr("Some Random Street, 12"),
		PhoneNumber: strPtr("+380775553535"),
	}
}
