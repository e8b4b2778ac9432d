package user

// Default role names seeded at bootstrap.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultRoles lists the roles every deployment starts with.
var DefaultRoles = []string{RoleUser, RoleAdmin}

// Role is referenced by User.RoleID.
type Role struct {
	ID   int64
	Name string
}
