package user

import (
	"fmt"
	"reflect"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/users-api/internal/apperror"
)

const (
	tagEmail  = "user_email"
	tagMinAge = "min_age"

	msgRequired  = "must not be null"
	msgNameSize  = "size must be between 2 and 30"
	msgEmail     = "Email must be valid"
	msgPast      = "must be a date in the past"
	msgBirthDate = "BirthDate must be within the allowed range"

	msgInvalidRange = "Invalid request! 'From' date should be before 'to'!"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_+&*-]+(?:\.[a-zA-Z0-9_+&*-]+)*@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,7}$`)

// rule checks one field of T against a validator tag. Rules never
// short-circuit each other.
type rule[T any] struct {
	field   string
	value   func(T) any
	tag     string
	message string
}

var createRules = []rule[CreateRequest]{
	{"firstName", func(r CreateRequest) any { return r.FirstName }, "required", msgRequired},
	{"firstName", func(r CreateRequest) any { return r.FirstName }, "omitempty,min=2,max=30", msgNameSize},
	{"lastName", func(r CreateRequest) any { return r.LastName }, "required", msgRequired},
	{"lastName", func(r CreateRequest) any { return r.LastName }, "omitempty,min=2,max=30", msgNameSize},
	{"email", func(r CreateRequest) any { return r.Email }, "required", msgRequired},
	{"email", func(r CreateRequest) any { return r.Email }, "omitempty," + tagEmail, msgEmail},
	{"birthDate", func(r CreateRequest) any { return r.BirthDate }, "required", msgRequired},
	{"birthDate", func(r CreateRequest) any { return r.BirthDate }, "omitempty,lt", msgPast},
	{"birthDate", func(r CreateRequest) any { return r.BirthDate }, "omitempty," + tagMinAge, msgBirthDate},
}

var updateRules = []rule[UpdateRequest]{
	{"firstName", func(r UpdateRequest) any { return r.FirstName }, "omitempty,min=2,max=30", msgNameSize},
	{"lastName", func(r UpdateRequest) any { return r.LastName }, "omitempty,min=2,max=30", msgNameSize},
	{"email", func(r UpdateRequest) any { return r.Email }, "omitempty," + tagEmail, msgEmail},
	{"birthDate", func(r UpdateRequest) any { return r.BirthDate }, "omitempty,lt", msgPast},
	{"birthDate", func(r UpdateRequest) any { return r.BirthDate }, "omitempty," + tagMinAge, msgBirthDate},
}

// Validator checks incoming requests. It holds no per-request state and is
// safe for concurrent use.
type Validator struct {
	validate      *validator.Validate
	minAllowedAge int
}

// NewValidator returns a Validator that requires users to be at least
// minAllowedAge years old.
func NewValidator(minAllowedAge int) *Validator {
	v := &Validator{
		validate:      validator.New(),
		minAllowedAge: minAllowedAge,
	}

	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if dt, ok := field.Interface().(DateTime); ok {
			return dt.Time
		}
		return nil
	}, DateTime{})

	mustRegister(v.validate, tagEmail, func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v.validate, tagMinAge, func(fl validator.FieldLevel) bool {
		birthDate, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return IsOldEnough(birthDate, v.minAllowedAge, time.Now())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// ValidateCreate checks a create or replace request.
func (v *Validator) ValidateCreate(req CreateRequest) error {
	return v.result(check(v.validate, req, createRules))
}

// ValidateUpdate checks a partial update. Absent fields are not checked.
func (v *Validator) ValidateUpdate(req UpdateRequest) error {
	return v.result(check(v.validate, req, updateRules))
}

// ValidateRange fails when from is after to.
func (v *Validator) ValidateRange(from, to time.Time) error {
	if from.After(to) {
		log.Warn().Time("from", from).Time("to", to).Msg(msgInvalidRange)
		return apperror.NewInvalidInput(msgInvalidRange)
	}
	return nil
}

func (v *Validator) result(violations []string) error {
	if len(violations) == 0 {
		return nil
	}

	log.Warn().Strs("violations", violations).Msg("Request validation failed")
	return apperror.NewValidation("Validation failed", violations)
}

func check[T any](validate *validator.Validate, req T, rules []rule[T]) []string {
	var violations []string
	for _, r := range rules {
		if err := validate.Var(r.value(req), r.tag); err != nil {
			violations = append(violations, r.field+": "+r.message)
		}
	}
	return violations
}

// IsOldEnough reports whether birthDate plus minAge years is on or before now.
// A birthday on Feb 29 reaches the age on Feb 28 in non-leap years.
func IsOldEnough(birthDate time.Time, minAge int, now time.Time) bool {
	return !addYears(birthDate, minAge).After(now)
}

func addYears(t time.Time, years int) time.Time {
	shifted := t.AddDate(years, 0, 0)
	if shifted.Day() != t.Day() {
		shifted = shifted.AddDate(0, 0, -shifted.Day())
	}
	return shifted
}
