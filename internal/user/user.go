package user

import (
	"errors"
	"time"

	"github.com/frahmantamala/ebooklet-admin/internal/permission"
)

// User is a staff account. Permissions are derived from the role at
// assignment time but stored independently, so the stored set is what the
// last-admin invariant inspects.
type User struct {
	ID           int64          `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"column:password_hash;not null"`
	Role         string         `json:"role" gorm:"not null"`
	Permissions  permission.Set `json:"permissions" gorm:"serializer:json"`
	IsActive     bool           `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdminEquivalent reports whether this account counts toward the admin
// total: role admin or a stored all_access grant. The active flag is
// deliberately not consulted here.
func (u *User) IsAdminEquivalent() bool {
	return permission.IsAdminEquivalent(u.Role, u.Permissions)
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrDuplicate  = errors.New("username already exists")
	ErrLastAdmin  = errors.New("cannot remove the last administrator")
	ErrSelfAction = errors.New("cannot perform this action on your own account")
)
