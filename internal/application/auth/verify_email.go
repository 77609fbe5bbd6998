package auth

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/coursehub/internal/domain"
)

// VerifyEmail moves a pending identity to verified and opens a session.
// Mismatched or expired codes leave the record untouched.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)

	audit := s.auditor("auth.verify_email", map[string]string{"email": email})

	if email == "" {
		return AuthResult{}, domain.ErrMissingField("email")
	}
	if code == "" {
		return AuthResult{}, domain.ErrMissingField("otp")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return AuthResult{}, domain.ErrVerificationNotFound()
		}
		return AuthResult{}, err
	}

	now := s.now()
	if err := domain.CheckCode(u, code, now); err != nil {
		audit("error", err, map[string]string{"user_id": u.ID})
		return AuthResult{}, err
	}

	verified, ok, err := s.users.MarkVerified(ctx, u.ID, code, now)
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		// lost the race: report whatever state won
		err := s.explainLostVerify(ctx, u.ID, code, now)
		audit("error", err, map[string]string{"user_id": u.ID})
		return AuthResult{}, err
	}

	res, err := s.issueToken(verified)
	if err != nil {
		return AuthResult{}, err
	}

	audit("success", nil, map[string]string{"user_id": verified.ID})
	s.publish(ctx, EventUserVerified, verified)
	return res, nil
}

func (s *Service) explainLostVerify(ctx context.Context, userID, code string, now time.Time) error {
	cur, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.ErrVerificationNotFound()
		}
		return err
	}
	if err := domain.CheckCode(cur, code, now); err != nil {
		return err
	}
	return domain.ErrInvalidCode()
}
