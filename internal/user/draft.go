package user

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names a create-form input.
type Field string

const (
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldEmail     Field = "email"
)

// Draft holds the create-form input before a record is synthesized.
type Draft struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Email     string `json:"email"     validate:"required"`
}

// validate reports failures under the json names, which are the Field values.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Normalized returns the draft with surrounding whitespace removed.
func (d Draft) Normalized() Draft {
	return Draft{
		FirstName: strings.TrimSpace(d.FirstName),
		LastName:  strings.TrimSpace(d.LastName),
		Email:     strings.TrimSpace(d.Email),
	}
}

// FieldErrors maps each rejected field to the reason it was rejected.
type FieldErrors map[Field]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	return "required fields missing: " + strings.Join(fields, ", ")
}

// Has reports whether f was rejected.
func (e FieldErrors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

// Validate checks the trimmed draft against its struct rules. It returns nil
// or a *FieldErrors naming each rejected field.
func (d Draft) Validate() error {
	err := validate.Struct(d.Normalized())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := FieldErrors{}
	for _, fe := range verrs {
		errs[Field(fe.Field())] = fe.Tag()
	}
	return &errs
}
