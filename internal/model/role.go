package model

// Role identifies which of the three storefront centers an account belongs to
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSeller   Role = "seller"
	RoleCustomer Role = "customer"
)

// ParseRole maps a path or claim value onto a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleSeller, RoleCustomer:
		return Role(s), true
	}
	return "", false
}

// Privileges returns the privilege codes granted to the role.
func (r Role) Privileges() []string {
	return rolePrivileges[r]
}
