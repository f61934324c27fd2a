package models

// UserRole is the role claim carried in the caller's token.
type UserRole string

const (
	RoleSuperAdmin UserRole = "superadmin"
	RoleClubAdmin  UserRole = "clubadmin"
	RoleReferee    UserRole = "referee"
	RolePlayer     UserRole = "player"
)

// CanSubmitPoints reports whether the role may trigger points submission.
func (r UserRole) CanSubmitPoints() bool {
	return r == RoleSuperAdmin || r == RoleClubAdmin
}
