package user

type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleStaff, RoleOwner, RoleAdmin:
		return true
	default:
		return false
	}
}

// ActsForBusiness reports whether the role books on behalf of a business
// rather than for itself.
func (r Role) ActsForBusiness() bool {
	return r == RoleStaff || r == RoleOwner || r == RoleAdmin
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}
