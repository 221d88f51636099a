package auth

import "strings"

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if strings.TrimSpace(d.Username) == "" {
		return ValidationError{Msg: "username is required"}
	}
	if strings.TrimSpace(d.Password) == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

// NormalizedUsername returns the canonical lookup form: trimmed and
// lowercased, matching the case-insensitive uniqueness rule on usernames.
func (d LoginDTO) NormalizedUsername() string {
	return strings.ToLower(strings.TrimSpace(d.Username))
}
