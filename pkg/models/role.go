package models

// Role is the access level granted by a password match.
type Role string

const (
	RoleSuperuser Role = "superuser"
	RoleAdmin     Role = "admin"
	RoleRegular   Role = "regular"
	RoleNone      Role = "none"
)

var roleRank = map[Role]int{
	RoleSuperuser: 3,
	RoleAdmin:     2,
	RoleRegular:   1,
	RoleNone:      0,
}

// AtLeast reports whether r grants at least the access of other.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}
