package user

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail = errors.New("invalid email format")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidPhone = errors.New("invalid phone number")
	ErrEmptyName    = errors.New("name is required")
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-]{6,20}$`)
)

type Email struct {
	value string
}

func NewEmail(s string) (Email, error) {
	s = strings.TrimSpace(s)
	if !emailRegex.MatchString(s) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: s}, nil
}

func (e Email) Value() string {
	return e.value
}

type Phone struct {
	value string
}

func NewPhone(s string) (Phone, error) {
	s = strings.TrimSpace(s)
	if !phoneRegex.MatchString(s) {
		return Phone{}, ErrInvalidPhone
	}
	return Phone{value: s}, nil
}

func (p Phone) Value() string {
	return p.value
}

// Contact is the denormalized identity stored on reservations, both for
// registered clients and walk-ins without an account.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// NewWalkInContact requires a name and at least one way to reach the person.
func NewWalkInContact(name, email, phone string) (Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Contact{}, ErrEmptyName
	}
	c := Contact{Name: name}
	if email != "" {
		e, err := NewEmail(email)
		if err != nil {
			return Contact{}, err
		}
		c.Email = e.Value()
	}
	if phone != "" {
		p, err := NewPhone(phone)
		if err != nil {
			return Contact{}, err
		}
		c.Phone = p.Value()
	}
	if c.Email == "" && c.Phone == "" {
		return Contact{}, ErrInvalidPhone
	}
	return c, nil
}
