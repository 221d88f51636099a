package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ebooklet-admin/internal"
	"github.com/frahmantamala/ebooklet-admin/internal/transport"
	"github.com/frahmantamala/ebooklet-admin/pkg/logger"
)

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

// IdentityFromContext returns the verified identity stored by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ContextIdentityKey).(*Identity)
	return id, ok
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (*LoginResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err)

		switch {
		case errors.Is(err, ErrInvalidCredentials):
			h.WriteAppError(w, internal.ErrInvalidCredentials)
		case errors.Is(err, ErrUserInactive):
			h.WriteAppError(w, internal.ErrUserInactive)
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteAppError(w, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed))
			} else {
				h.WriteAppError(w, internal.NewInternalError("authentication failed", err))
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// AuthMiddleware is the authentication half of the gate: it requires a
// well-formed bearer token, verifies it, and stores the decoded identity in
// the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		claims, err := h.Service.ValidateToken(token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err)
			if errors.Is(err, ErrTokenExpired) {
				h.WriteAppError(w, internal.ErrTokenExpired)
			} else {
				h.WriteAppError(w, internal.ErrInvalidToken)
			}
			return
		}

		identity := claims.Identity()
		ctx := context.WithValue(r.Context(), ContextIdentityKey, &identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCapability is the authorization half: it evaluates the identity's
// permission set against a named capability. It assumes AuthMiddleware ran
// earlier in the chain.
func RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || identity == nil {
				writeAppError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
				return
			}

			if !identity.Permissions.Has(capability) {
				slog.Warn("access denied: missing capability",
					"username", identity.Username,
					"role", identity.Role,
					"required_capability", capability)
				writeAppError(w, internal.NewForbiddenError("insufficient permissions", internal.ErrCodeMissingCapability))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeAppError renders the standard error envelope without a handler
// receiver so middleware constructed per-route can use it.
func writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
