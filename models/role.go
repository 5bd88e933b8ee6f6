package models

// UserRole is the role claim carried by API tokens.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleOrganizer UserRole = "organizer"
	RoleOfficiant UserRole = "officiant"
	RolePlayer    UserRole = "player"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleOfficiant, RolePlayer:
		return true
	}
	return false
}
