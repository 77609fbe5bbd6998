package auth

import (
	"context"
	"strings"

	"github.com/baechuer/coursehub/internal/domain"
)

// SeedAdmin makes sure a verified admin identity exists for email.
// It is safe to run on every start; an existing identity keeps its password.
func (s *Service) SeedAdmin(ctx context.Context, email, password, name string) (created bool, err error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, domain.ErrMissingField("email/password")
	}

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// fall through to promotion/verification below
	case domain.Is(err, "user_not_found"):
		hash, herr := s.hasher.Hash(password)
		if herr != nil {
			return false, herr
		}
		u, err = s.users.UpsertPending(ctx, domain.User{
			ID:           s.newID(),
			Email:        email,
			Name:         strings.TrimSpace(name),
			PasswordHash: hash,
			Role:         string(domain.RoleAdmin),
		})
		if err != nil {
			return false, err
		}
		created = true
	default:
		return false, err
	}

	if !u.IsAdmin() {
		if err := s.users.SetRole(ctx, u.ID, string(domain.RoleAdmin)); err != nil {
			return created, err
		}
	}

	if !u.IsVerified() {
		code, err := s.codes.Generate()
		if err != nil {
			return created, err
		}
		now := s.now()
		if err := s.users.SetVerificationCode(ctx, u.ID, code, now.Add(s.otpTTL)); err != nil {
			return created, err
		}
		if _, ok, err := s.users.MarkVerified(ctx, u.ID, code, now); err != nil || !ok {
			if err == nil {
				err = domain.ErrInternal(nil)
			}
			return created, err
		}
	}

	s.audit("seed.admin", map[string]string{"user_id": u.ID, "email": email})
	return created, nil
}
