package auth

import (
	"context"
	"strings"

	"github.com/baechuer/coursehub/internal/domain"
)

// requireAdmin re-checks the role the gate already enforced.
func requireAdmin(actorRole string) error {
	if !domain.IsValidRole(actorRole) {
		return domain.ErrForbidden()
	}
	if domain.RoleRank(actorRole) < domain.RoleRank(string(domain.RoleAdmin)) {
		return domain.ErrInsufficientRole(string(domain.RoleAdmin))
	}
	return nil
}

func (s *Service) ListUsers(ctx context.Context, actorRole string) ([]domain.User, error) {
	if err := requireAdmin(actorRole); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *Service) GetUser(ctx context.Context, actorRole, userID string) (domain.User, error) {
	if err := requireAdmin(actorRole); err != nil {
		return domain.User{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.User{}, domain.ErrMissingField("user_id")
	}
	return s.users.GetByID(ctx, userID)
}

func (s *Service) SetUserRole(
	ctx context.Context,
	actorID, actorRole, targetUserID, newRole string,
) error {
	actorID = strings.TrimSpace(actorID)
	targetUserID = strings.TrimSpace(targetUserID)
	newRole = strings.TrimSpace(newRole)

	audit := s.auditor("admin.set_user_role", map[string]string{
		"actor_id":   actorID,
		"actor_role": actorRole,
		"target_id":  targetUserID,
	})

	// --- input validation ---
	if targetUserID == "" {
		err := domain.ErrMissingField("user_id")
		audit("error", err, nil)
		return err
	}
	if newRole == "" {
		err := domain.ErrMissingField("role")
		audit("error", err, nil)
		return err
	}
	if !domain.IsValidRole(newRole) {
		err := domain.ErrInvalidRole(newRole)
		audit("error", err, nil)
		return err
	}

	if err := requireAdmin(actorRole); err != nil {
		audit("error", err, nil)
		return err
	}

	// --- hard rule: cannot modify self ---
	if actorID != "" && actorID == targetUserID {
		err := domain.ErrCannotAffectSelf()
		audit("error", err, nil)
		return err
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		audit("error", err, nil)
		return err
	}

	if target.IsAdmin() && newRole != string(domain.RoleAdmin) {
		if err := s.ensureNotLastAdmin(ctx); err != nil {
			audit("error", err, nil)
			return err
		}
	}

	if err := s.users.SetRole(ctx, targetUserID, newRole); err != nil {
		audit("error", err, nil)
		return err
	}

	audit("success", nil, map[string]string{
		"old_role": target.Role,
		"new_role": newRole,
	})
	return nil
}

// DeleteUser is the explicit administrative deletion. The user's photo is
// removed best effort afterwards.
func (s *Service) DeleteUser(ctx context.Context, actorID, actorRole, targetUserID string) error {
	actorID = strings.TrimSpace(actorID)
	targetUserID = strings.TrimSpace(targetUserID)

	audit := s.auditor("admin.delete_user", map[string]string{
		"actor_id":   actorID,
		"actor_role": actorRole,
		"target_id":  targetUserID,
	})

	if targetUserID == "" {
		err := domain.ErrMissingField("user_id")
		audit("error", err, nil)
		return err
	}
	if err := requireAdmin(actorRole); err != nil {
		audit("error", err, nil)
		return err
	}
	if actorID != "" && actorID == targetUserID {
		err := domain.ErrCannotAffectSelf()
		audit("error", err, nil)
		return err
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		audit("error", err, nil)
		return err
	}
	if target.IsAdmin() {
		if err := s.ensureNotLastAdmin(ctx); err != nil {
			audit("error", err, nil)
			return err
		}
	}

	if err := s.users.Delete(ctx, targetUserID); err != nil {
		audit("error", err, nil)
		return err
	}

	if target.ProfilePhoto != "" {
		s.deletePhoto(ctx, target.ProfilePhoto, target.ID)
	}

	audit("success", nil, nil)
	s.publish(ctx, EventUserDeleted, target)
	return nil
}

func (s *Service) ensureNotLastAdmin(ctx context.Context) error {
	cnt, err := s.users.CountByRole(ctx, string(domain.RoleAdmin))
	if err != nil {
		return err
	}
	if cnt <= 1 {
		return domain.ErrLastAdminProtected()
	}
	return nil
}
