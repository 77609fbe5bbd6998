package auth

import (
	"context"
	"strings"

	"github.com/baechuer/coursehub/internal/domain"
)

// Me loads the current identity from persistence.
func (s *Service) Me(ctx context.Context, userID string) (domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.User{}, domain.ErrTokenInvalid()
	}
	return s.users.GetByID(ctx, userID)
}
