package user

import (
	"strings"

	"github.com/frahmantamala/ebooklet-admin/internal/permission"
)

const MinPasswordLength = 6

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// ErrPasswordTooShort rejects passwords below MinPasswordLength. Kept as a
// sentinel so the handler can answer with a dedicated error code.
var ErrPasswordTooShort = ValidationError{Msg: "password must be at least 6 characters"}

type CreateUserDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (d CreateUserDTO) Validate() error {
	if strings.TrimSpace(d.Username) == "" {
		return ValidationError{Msg: "username is required"}
	}
	if len(d.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if !permission.ValidRole(d.Role) {
		return permission.ErrInvalidRole
	}
	return nil
}

// NormalizedUsername is the canonical stored form: trimmed and lowercased.
func (d CreateUserDTO) NormalizedUsername() string {
	return strings.ToLower(strings.TrimSpace(d.Username))
}

type ChangePasswordDTO struct {
	Username    string `json:"username"`
	NewPassword string `json:"new_password"`
}

func (d ChangePasswordDTO) Validate() error {
	if strings.TrimSpace(d.Username) == "" {
		return ValidationError{Msg: "username is required"}
	}
	if len(d.NewPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

type ChangeRoleDTO struct {
	Username string `json:"username"`
	NewRole  string `json:"new_role"`
}

func (d ChangeRoleDTO) Validate() error {
	if strings.TrimSpace(d.Username) == "" {
		return ValidationError{Msg: "username is required"}
	}
	if !permission.ValidRole(d.NewRole) {
		return permission.ErrInvalidRole
	}
	return nil
}

type TargetUserDTO struct {
	Username string `json:"username"`
}

func (d TargetUserDTO) Validate() error {
	if strings.TrimSpace(d.Username) == "" {
		return ValidationError{Msg: "username is required"}
	}
	return nil
}
