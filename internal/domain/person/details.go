// Package person holds the identity fields shared by patients and doctors.
package person

import (
	"net/mail"
	"strings"
	"time"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
)

// Details is embedded by Patient and Doctor. It flattens into the parent
// document in both JSON and BSON.
type Details struct {
	Name        string    `json:"name" bson:"name"`
	Email       string    `json:"email" bson:"email"`
	DateOfBirth time.Time `json:"date_of_birth" bson:"date_of_birth"`
	Gender      string    `json:"gender" bson:"gender"`
	Phone       string    `json:"phone" bson:"phone"`
	Address     string    `json:"address" bson:"address"`
	Notes       *string   `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Validate checks that the required fields are present and that the email
// address parses.
func (d *Details) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)

	switch {
	case d.Name == "":
		return apierr.Invalid("name is required")
	case d.Email == "":
		return apierr.Invalid("email is required")
	case d.DateOfBirth.IsZero():
		return apierr.Invalid("date_of_birth is required")
	case strings.TrimSpace(d.Gender) == "":
		return apierr.Invalid("gender is required")
	case strings.TrimSpace(d.Phone) == "":
		return apierr.Invalid("phone is required")
	case strings.TrimSpace(d.Address) == "":
		return apierr.Invalid("address is required")
	}
	return validEmail(d.Email)
}

// DetailsPatch carries the person fields of a partial update. Nil means
// "leave unchanged".
type DetailsPatch struct {
	Name        *string    `json:"name,omitempty"`
	Email       *string    `json:"email,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      *string    `json:"gender,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Address     *string    `json:"address,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

// Validate rejects supplied fields that would not pass Details.Validate.
func (p *DetailsPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apierr.Invalid("name must not be empty")
	}
	if p.Email != nil {
		return validEmail(strings.TrimSpace(*p.Email))
	}
	return nil
}

// Fields adds the supplied fields to set, keyed by their stored name.
func (p *DetailsPatch) Fields(set map[string]interface{}) {
	if p.Name != nil {
		set["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		set["email"] = strings.TrimSpace(*p.Email)
	}
	if p.DateOfBirth != nil {
		set["date_of_birth"] = *p.DateOfBirth
	}
	if p.Gender != nil {
		set["gender"] = *p.Gender
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
}

// Apply merges the supplied fields into d.
func (p *DetailsPatch) Apply(d *Details) {
	if p.Name != nil {
		d.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		d.Email = strings.TrimSpace(*p.Email)
	}
	if p.DateOfBirth != nil {
		d.DateOfBirth = *p.DateOfBirth
	}
	if p.Gender != nil {
		d.Gender = *p.Gender
	}
	if p.Phone != nil {
		d.Phone = *p.Phone
	}
	if p.Address != nil {
		d.Address = *p.Address
	}
	if p.Notes != nil {
		n := *p.Notes
		d.Notes = &n
	}
}

func validEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return apierr.Invalid("email %q is not a valid address", s)
	}
	return nil
}
