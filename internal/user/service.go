package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/ebooklet-admin/internal/core/events"
	"github.com/frahmantamala/ebooklet-admin/internal/permission"
	"golang.org/x/crypto/bcrypt"
)

// Repository defines the data access methods for users. Mutations that can
// touch an administrator must enforce the last-admin invariant inside a
// single transaction (see the postgres implementation) and return
// ErrLastAdmin when it would be violated.
type Repository interface {
	List() ([]*User, error)
	GetByUsername(username string) (*User, error)
	Create(u *User) error
	UpdatePassword(username, passwordHash string) error
	UpdateRole(username, newRole string, perms permission.Set) error
	ToggleStatus(username string) (bool, error)
	Delete(username string) error
}

type Service struct {
	repo       Repository
	bus        *events.EventBus
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bus:        bus,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List() ([]*User, error) {
	return s.repo.List()
}

// Create adds a new staff account with the canonical permission set for its
// role.
func (s *Service) Create(actor string, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	perms, err := permission.ByRole(dto.Role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     dto.NormalizedUsername(),
		PasswordHash: string(hash),
		Role:         dto.Role,
		Permissions:  perms,
		IsActive:     true,
	}

	if err := s.repo.Create(u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "username", u.Username, "role", u.Role, "actor", actor)
	s.publish(events.EventUserCreated, actor, u.Username, map[string]interface{}{"role": u.Role})

	return u, nil
}

// ChangePassword rehashes and stores a new password for the target user.
func (s *Service) ChangePassword(actor string, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), s.bcryptCost)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(normalize(dto.Username), string(hash)); err != nil {
		return err
	}

	s.logger.Info("password changed", "username", dto.Username, "actor", actor)
	return nil
}

// ChangeRole reassigns a user's role and rewrites its stored permission set
// from the canonical table. Self-demotion is forbidden; demoting the last
// administrator is blocked by the repository guard.
func (s *Service) ChangeRole(actor string, dto ChangeRoleDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	target := normalize(dto.Username)
	if target == normalize(actor) {
		return ErrSelfAction
	}

	perms, err := permission.ByRole(dto.NewRole)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateRole(target, dto.NewRole, perms); err != nil {
		return err
	}

	s.logger.Info("role changed", "username", target, "new_role", dto.NewRole, "actor", actor)
	s.publish(events.EventUserRoleChanged, actor, target, map[string]interface{}{"new_role": dto.NewRole})

	return nil
}

// ToggleStatus flips the active flag. Deactivating yourself is forbidden;
// deactivating the last administrator is blocked by the repository guard.
func (s *Service) ToggleStatus(actor, username string) (bool, error) {
	target := normalize(username)
	if target == "" {
		return false, ValidationError{Msg: "username is required"}
	}
	if target == normalize(actor) {
		return false, ErrSelfAction
	}

	active, err := s.repo.ToggleStatus(target)
	if err != nil {
		return false, err
	}

	s.logger.Info("user status toggled", "username", target, "is_active", active, "actor", actor)
	s.publish(events.EventUserStatusToggled, actor, target, map[string]interface{}{"is_active": active})

	return active, nil
}

// Delete removes a user. Self-deletion is forbidden; deleting the last
// administrator is blocked by the repository guard.
func (s *Service) Delete(actor, username string) error {
	target := normalize(username)
	if target == "" {
		return ValidationError{Msg: "username is required"}
	}
	if target == normalize(actor) {
		return ErrSelfAction
	}

	if err := s.repo.Delete(target); err != nil {
		return err
	}

	s.logger.Info("user deleted", "username", target, "actor", actor)
	s.publish(events.EventUserDeleted, actor, target, nil)

	return nil
}

func (s *Service) publish(eventType, actor, target string, extra map[string]interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.Background(), events.NewAuditEvent(eventType, actor, target, extra)); err != nil {
		s.logger.Warn("audit publish failed", "event_type", eventType, "error", err)
	}
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
