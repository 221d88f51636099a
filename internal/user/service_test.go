package user_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/ebooklet-admin/internal/auth"
	"github.com/frahmantamala/ebooklet-admin/internal/permission"
	"github.com/frahmantamala/ebooklet-admin/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// MockRepository implements user.Repository for testing
type MockRepository struct {
	users      map[string]*user.User
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[string]*user.User)}
}

func (m *MockRepository) List() ([]*user.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*user.User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *MockRepository) GetByUsername(username string) (*user.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	u, ok := m.users[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *MockRepository) Create(u *user.User) error {
	if m.shouldFail {
		return m.failError
	}
	if _, exists := m.users[u.Username]; exists {
		return user.ErrDuplicate
	}
	u.ID = int64(len(m.users) + 1)
	m.users[u.Username] = u
	return nil
}

func (m *MockRepository) UpdatePassword(username, passwordHash string) error {
	u, ok := m.users[username]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *MockRepository) UpdateRole(username, newRole string, perms permission.Set) error {
	u, ok := m.users[username]
	if !ok {
		return user.ErrNotFound
	}
	u.Role = newRole
	u.Permissions = perms
	return nil
}

func (m *MockRepository) ToggleStatus(username string) (bool, error) {
	u, ok := m.users[username]
	if !ok {
		return false, user.ErrNotFound
	}
	u.IsActive = !u.IsActive
	return u.IsActive, nil
}

func (m *MockRepository) Delete(username string) error {
	if _, ok := m.users[username]; !ok {
		return user.ErrNotFound
	}
	delete(m.users, username)
	return nil
}

var _ = Describe("User Service", func() {
	var (
		repo    *MockRepository
		service *user.Service
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(repo, nil, bcrypt.MinCost, logger)
	})

	Describe("Create", func() {
		It("stores the canonical permission set for the role", func() {
			u, err := service.Create("admin", user.CreateUserDTO{
				Username: "Perawat1",
				Password: "rahasia",
				Role:     permission.RoleAdminPOC,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("perawat1"))
			Expect(u.IsActive).To(BeTrue())
			Expect(u.Permissions.ViewPatients).To(BeTrue())
			Expect(u.Permissions.ManageUsers).To(BeFalse())
		})

		It("hashes the password", func() {
			u, err := service.Create("admin", user.CreateUserDTO{
				Username: "perawat1",
				Password: "rahasia",
				Role:     permission.RoleExporter,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.PasswordHash).NotTo(Equal("rahasia"))
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("rahasia"))).To(Succeed())
		})

		It("rejects an invalid role", func() {
			_, err := service.Create("admin", user.CreateUserDTO{
				Username: "perawat1",
				Password: "rahasia",
				Role:     "superuser",
			})
			Expect(err).To(MatchError(permission.ErrInvalidRole))
		})

		It("rejects a short password", func() {
			_, err := service.Create("admin", user.CreateUserDTO{
				Username: "perawat1",
				Password: "abc",
				Role:     permission.RoleExporter,
			})
			var verr user.ValidationError
			Expect(err).To(BeAssignableToTypeOf(verr))
		})

		It("surfaces duplicate usernames", func() {
			_, err := service.Create("admin", user.CreateUserDTO{Username: "perawat1", Password: "rahasia", Role: permission.RoleExporter})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create("admin", user.CreateUserDTO{Username: "PERAWAT1", Password: "rahasia", Role: permission.RoleExporter})
			Expect(err).To(MatchError(user.ErrDuplicate))
		})
	})

	Describe("self-action guard", func() {
		BeforeEach(func() {
			_, err := service.Create("boot", user.CreateUserDTO{Username: "admin", Password: "rahasia", Role: permission.RoleAdmin})
			Expect(err).NotTo(HaveOccurred())
		})

		It("blocks deleting your own account", func() {
			Expect(service.Delete("admin", "admin")).To(MatchError(user.ErrSelfAction))
		})

		It("blocks deactivating your own account", func() {
			_, err := service.ToggleStatus("admin", "admin")
			Expect(err).To(MatchError(user.ErrSelfAction))
		})

		It("blocks changing your own role", func() {
			err := service.ChangeRole("admin", user.ChangeRoleDTO{Username: "admin", NewRole: permission.RoleExporter})
			Expect(err).To(MatchError(user.ErrSelfAction))
		})

		It("compares actor and target case-insensitively", func() {
			Expect(service.Delete("Admin", " ADMIN ")).To(MatchError(user.ErrSelfAction))
		})

		It("does not block changing your own password", func() {
			err := service.ChangePassword("admin", user.ChangePasswordDTO{Username: "admin", NewPassword: "barusaja"})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("ChangeRole", func() {
		BeforeEach(func() {
			_, err := service.Create("boot", user.CreateUserDTO{Username: "perawat1", Password: "rahasia", Role: permission.RoleAdminPOC})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rewrites the permission set from the canonical table", func() {
			err := service.ChangeRole("admin", user.ChangeRoleDTO{Username: "perawat1", NewRole: permission.RoleExporter})
			Expect(err).NotTo(HaveOccurred())

			u, err := repo.GetByUsername("perawat1")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(permission.RoleExporter))
			Expect(u.Permissions.AddPatient).To(BeFalse())
			Expect(u.Permissions.ViewPatients).To(BeTrue())
		})

		It("rejects an unknown role before touching the repository", func() {
			err := service.ChangeRole("admin", user.ChangeRoleDTO{Username: "perawat1", NewRole: "superuser"})
			Expect(err).To(MatchError(permission.ErrInvalidRole))
		})
	})
})

var _ = Describe("User handler error codes", func() {
	var handler *user.Handler

	BeforeEach(func() {
		repo := NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = user.NewHandler(user.NewService(repo, nil, bcrypt.MinCost, logger))
	})

	asAdmin := func(req *http.Request) *http.Request {
		identity := &auth.Identity{UserID: 1, Username: "admin", Role: permission.RoleAdmin}
		return req.WithContext(context.WithValue(req.Context(), auth.ContextIdentityKey, identity))
	}

	It("answers a too-short password with INVALID_PASSWORD", func() {
		body := strings.NewReader(`{"username":"perawat1","password":"abc","role":"exporter"}`)
		rec := httptest.NewRecorder()
		req := asAdmin(httptest.NewRequest(http.MethodPost, "/users", body))

		handler.CreateUser(rec, req)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))

		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(Succeed())
		Expect(env.Error.Code).To(Equal("INVALID_PASSWORD"))
		Expect(env.Error.Message).To(ContainSubstring("at least 6 characters"))
	})
})
