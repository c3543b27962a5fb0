package admins

// Admin is an administrative account. PasswordHash is a bcrypt hash; the
// plaintext password is never stored.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
}

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)
