package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/baechuer/coursehub/internal/domain"
)

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type RegisterResult struct {
	Email                string
	RequiresVerification bool
}

// Register creates or refreshes a pending identity and mails it a fresh code.
// If the mail cannot be delivered the record is removed again.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)

	audit := s.auditor("auth.register", map[string]string{"email": email})

	if email == "" {
		return RegisterResult{}, domain.ErrMissingField("email")
	}
	if in.Password == "" {
		return RegisterResult{}, domain.ErrMissingField("password")
	}
	if len(in.Password) > domain.MaxPasswordBytes {
		return RegisterResult{}, domain.ErrInvalidField("password", "too_long")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified():
		err := domain.ErrEmailAlreadyExists()
		audit("error", err, nil)
		return RegisterResult{}, err
	case err != nil && !domain.Is(err, "user_not_found"):
		return RegisterResult{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return RegisterResult{}, err
		}
		return RegisterResult{}, domain.ErrHashFailed(err)
	}

	code, err := s.codes.Generate()
	if err != nil {
		return RegisterResult{}, err
	}

	u := domain.User{
		ID:           s.newID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         string(domain.RoleUser),
	}
	u.IssueCode(code, s.now().Add(s.otpTTL))

	// a verified writer may have won since the lookup; UpsertPending reports it
	saved, err := s.users.UpsertPending(ctx, u)
	if err != nil {
		audit("error", err, nil)
		return RegisterResult{}, err
	}

	if err := s.sendCode(ctx, saved, code); err != nil {
		s.compensateRegistration(ctx, saved, code)
		derr := domain.ErrDeliveryFailed(err)
		audit("error", derr, map[string]string{"user_id": saved.ID})
		return RegisterResult{}, derr
	}

	audit("success", nil, map[string]string{"user_id": saved.ID})
	s.publish(ctx, EventUserRegistered, saved)

	return RegisterResult{Email: saved.Email, RequiresVerification: true}, nil
}

func (s *Service) compensateRegistration(ctx context.Context, u domain.User, code string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	if err := s.users.DeletePending(cctx, u.ID, code); err != nil && !domain.Is(err, "user_not_found") {
		s.warn("compensating delete failed", err, map[string]string{"user_id": u.ID})
	}
}
