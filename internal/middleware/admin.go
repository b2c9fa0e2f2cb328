package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/bookheaven/internal/model"
	"github.com/mmeshcher/bookheaven/internal/repository"
	"github.com/mmeshcher/bookheaven/internal/response"
)

// UserLookup возвращает сохранённую запись пользователя.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

// AdminOnly пропускает запрос только если сохранённая роль пользователя — admin.
// Роль перечитывается из хранилища на каждый запрос, claims токена не используются.
func AdminOnly(users UserLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserIDFromContext(r.Context())
			if !ok {
				response.Error(w, http.StatusUnauthorized, "Authentication token required")
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					response.Error(w, http.StatusForbidden, "You have not access")
					return
				}
				logger.Error("admin check error", zap.Error(err), zap.String("userID", userID))
				response.Error(w, http.StatusInternalServerError, "")
				return
			}

			if !user.IsAdmin() {
				response.Error(w, http.StatusForbidden, "You have not access")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
