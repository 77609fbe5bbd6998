package auth

import (
	"context"
	"strings"

	"github.com/baechuer/coursehub/internal/domain"
)

// dummyHash is compared against when the email is unknown so both failure
// paths pay the same bcrypt cost.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z5Kx6c1E4Q3hM8hT0x6lP3rK"

// Login authenticates a user and issues a session token.
// A pending user whose password matches gets email_not_verified instead of a
// token; every other failure is the generic invalid_credentials.
// IMPORTANT: must not leak whether the email exists (avoid user enumeration).
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return AuthResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !domain.Is(err, "user_not_found") {
			return AuthResult{}, err
		}
		_ = s.hasher.Compare(dummyHash, password)
		return AuthResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return AuthResult{}, domain.ErrInvalidCredentials()
	}

	if !u.IsVerified() {
		return AuthResult{}, domain.ErrEmailNotVerified()
	}

	return s.issueToken(u)
}
