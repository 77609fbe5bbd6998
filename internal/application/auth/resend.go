package auth

import (
	"context"
	"strings"

	"github.com/baechuer/coursehub/internal/domain"
)

// ResendVerification overwrites the outstanding code and mails the new one.
// Delivery failure keeps the record: the new code is stored and another resend is safe.
func (s *Service) ResendVerification(ctx context.Context, email string) (RegisterResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return RegisterResult{}, domain.ErrMissingField("email")
	}

	audit := s.auditor("auth.resend_verification", map[string]string{"email": email})

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return RegisterResult{}, domain.ErrVerificationNotFound()
		}
		return RegisterResult{}, err
	}
	if u.IsVerified() {
		return RegisterResult{}, domain.ErrAlreadyVerified()
	}

	if s.resendThrottle != nil {
		ok, terr := s.resendThrottle.Allow(ctx, "resend:"+email)
		switch {
		case terr != nil:
			// fail open
			s.warn("resend throttle unavailable", terr, map[string]string{"user_id": u.ID})
		case !ok:
			err := domain.ErrRateLimited("verify_email.resend")
			audit("error", err, map[string]string{"user_id": u.ID})
			return RegisterResult{}, err
		}
	}

	code, err := s.codes.Generate()
	if err != nil {
		return RegisterResult{}, err
	}
	if err := s.users.SetVerificationCode(ctx, u.ID, code, s.now().Add(s.otpTTL)); err != nil {
		audit("error", err, map[string]string{"user_id": u.ID})
		return RegisterResult{}, err
	}

	if err := s.sendCode(ctx, u, code); err != nil {
		derr := domain.ErrDeliveryFailed(err)
		audit("error", derr, map[string]string{"user_id": u.ID})
		return RegisterResult{}, derr
	}

	audit("success", nil, map[string]string{"user_id": u.ID})
	return RegisterResult{Email: u.Email, RequiresVerification: true}, nil
}
