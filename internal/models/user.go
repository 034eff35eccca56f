package models

// Roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Roles lists the accepted values of User.Role.
var Roles = []string{RoleAdmin, RoleStaff}

// User is a back-office operator. Users are provisioned by the seed command only.
type User struct {
	Base
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string `gorm:"size:255" json:"name"`
	PasswordHash string `gorm:"size:255;not null" json:"-"` // bcrypt, never exposed in JSON
	Role         string `gorm:"size:20;not null;default:staff" json:"role"`
}
