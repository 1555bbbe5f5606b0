package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the read-side record of an account. Accounts are managed
// elsewhere; booking only needs identity, contact and a push token.
type User struct {
	id        uuid.UUID
	name      string
	email     string
	phone     string
	pushToken string
	role      Role
	isActive  bool
	createdAt time.Time
}

func ReconstructUser(id uuid.UUID, name, email, phone, pushToken string, role Role, isActive bool, createdAt time.Time) *User {
	return &User{
		id:        id,
		name:      name,
		email:     email,
		phone:     phone,
		pushToken: pushToken,
		role:      role,
		isActive:  isActive,
		createdAt: createdAt,
	}
}

func (u *User) Contact() Contact {
	return Contact{Name: u.name, Email: u.email, Phone: u.phone}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) Phone() string        { return u.phone }
func (u *User) PushToken() string    { return u.pushToken }
func (u *User) Role() Role           { return u.role }
func (u *User) IsActive() bool       { return u.isActive }
func (u *User) CreatedAt() time.Time { return u.createdAt }
