package postgres

import (
	"errors"
	"time"

	"github.com/frahmantamala/ebooklet-admin/internal/auth"
	"github.com/frahmantamala/ebooklet-admin/internal/permission"
	"github.com/frahmantamala/ebooklet-admin/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository implements user.Repository using GORM. Every mutation that
// can remove an administrator (delete, demote, deactivate) runs its admin
// count and the write in one transaction, with the user rows locked on
// drivers that support row locks, so two concurrent "remove the second-to-
// last admin" requests cannot both pass the count.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Order("username ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByUsername(username string) (*user.User, error) {
	var u user.User
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetCredential adapts the repository to the auth.CredentialStore contract.
func (r *UserRepository) GetCredential(username string) (*auth.Credential, error) {
	u, err := r.GetByUsername(username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, auth.ErrCredentialNotFound
		}
		return nil, err
	}
	return &auth.Credential{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Permissions:  u.Permissions,
		IsActive:     u.IsActive,
	}, nil
}

func (r *UserRepository) Create(u *user.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&user.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return user.ErrDuplicate
		}
		return tx.Create(u).Error
	})
}

func (r *UserRepository) UpdatePassword(username, passwordHash string) error {
	res := r.db.Model(&user.User{}).
		Where("username = ?", username).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

// UpdateRole changes the role and rewrites the stored permission set. When
// the target is currently an administrator and the new role is not admin,
// the last-admin guard applies.
func (r *UserRepository) UpdateRole(username, newRole string, perms permission.Set) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		users, err := lockUsers(tx)
		if err != nil {
			return err
		}

		target := findByUsername(users, username)
		if target == nil {
			return user.ErrNotFound
		}

		if target.IsAdminEquivalent() && newRole != permission.RoleAdmin && countAdmins(users) <= 1 {
			return user.ErrLastAdmin
		}

		target.Role = newRole
		target.Permissions = perms
		target.UpdatedAt = time.Now()
		return tx.Save(target).Error
	})
}

// ToggleStatus flips the active flag and returns the new value. Deactivating
// the last administrator is blocked, same predicate as delete, since an
// inactive admin cannot log in to recover the system.
func (r *UserRepository) ToggleStatus(username string) (bool, error) {
	var active bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		users, err := lockUsers(tx)
		if err != nil {
			return err
		}

		target := findByUsername(users, username)
		if target == nil {
			return user.ErrNotFound
		}

		if target.IsActive && target.IsAdminEquivalent() && countAdmins(users) <= 1 {
			return user.ErrLastAdmin
		}

		target.IsActive = !target.IsActive
		target.UpdatedAt = time.Now()
		if err := tx.Save(target).Error; err != nil {
			return err
		}
		active = target.IsActive
		return nil
	})
	return active, err
}

func (r *UserRepository) Delete(username string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		users, err := lockUsers(tx)
		if err != nil {
			return err
		}

		target := findByUsername(users, username)
		if target == nil {
			return user.ErrNotFound
		}

		if target.IsAdminEquivalent() && countAdmins(users) <= 1 {
			return user.ErrLastAdmin
		}

		return tx.Delete(&user.User{}, "username = ?", username).Error
	})
}

// lockUsers loads every user row inside the transaction. The staff table is
// small, so evaluating the admin predicate in Go keeps the query portable
// between postgres (production) and sqlite (tests); FOR UPDATE is applied
// only where the driver supports it.
func lockUsers(tx *gorm.DB) ([]*user.User, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var users []*user.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func findByUsername(users []*user.User, username string) *user.User {
	for _, u := range users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

// countAdmins counts admin-equivalent accounts regardless of the active
// flag, matching the stored invariant's query semantics.
func countAdmins(users []*user.User) int {
	n := 0
	for _, u := range users {
		if u.IsAdminEquivalent() {
			n++
		}
	}
	return n
}
