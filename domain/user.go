package domain

import "time"

// Role governs what a user may do. The values are the ones stored by the
// existing front end and must not be translated.
type Role string

const (
	RoleAdmin     Role = "yönetici"
	RoleWarehouse Role = "depo"
	RoleSales     Role = "satış"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWarehouse, RoleSales:
		return true
	}
	return false
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials pairs a user with its stored password hash. The hash never
// leaves the store and auth packages.
type Credentials struct {
	User
	PasswordHash string
}
