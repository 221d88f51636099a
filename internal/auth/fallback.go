package auth

import (
	"strings"

	"github.com/frahmantamala/ebooklet-admin/internal"
	"github.com/frahmantamala/ebooklet-admin/internal/permission"
)

// StaticCredentialSource is an in-memory CredentialStore built from
// configuration. It exists for bootstrap and break-glass scenarios and is
// only wired in when fallback_auth.enabled is set; it is never a silent
// fallback for primary store failures.
type StaticCredentialSource struct {
	users map[string]*Credential
}

// NewStaticCredentialSource builds the source from config, deriving each
// user's permission set from its role. Users with an unknown role are
// skipped rather than granted an empty set.
func NewStaticCredentialSource(cfg internal.FallbackAuthConfig) *StaticCredentialSource {
	users := make(map[string]*Credential, len(cfg.Users))
	for _, u := range cfg.Users {
		perms, err := permission.ByRole(u.Role)
		if err != nil {
			continue
		}
		username := strings.ToLower(strings.TrimSpace(u.Username))
		users[username] = &Credential{
			ID:           u.ID,
			Username:     username,
			PasswordHash: u.PasswordHash,
			Role:         u.Role,
			Permissions:  perms,
			IsActive:     true,
		}
	}
	return &StaticCredentialSource{users: users}
}

func (s *StaticCredentialSource) GetCredential(username string) (*Credential, error) {
	cred, ok := s.users[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	return cred, nil
}
