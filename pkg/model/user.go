package model

type UserRole string

const (
	RoleStaff UserRole = "staff"
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is immutable after registration. Bookings and audit entries
// reference users by ID only; the registry owns the record.
type User struct {
	ID   string   `json:"id,omitempty" validate:"omitempty"`
	Name string   `json:"name" validate:"required,min=1,max=100"`
	Role UserRole `json:"role" validate:"required,oneof=staff user admin"`
}

func (u *User) IsStaffOrAdmin() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}
