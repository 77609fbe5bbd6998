package auth

import (
	"context"
	"time"

	"github.com/baechuer/coursehub/internal/domain"
)

const (
	defaultOTPTTL           = 10 * time.Minute
	defaultEmailSendTimeout = 10 * time.Second
	defaultMaxPhotoBytes    = 5 * 1024 * 1024

	// compensating work must still run after the caller's context is gone
	compensateTimeout = 5 * time.Second
)

type Service struct {
	users  UserRepo
	hasher PasswordHasher
	signer TokenSigner
	codes  CodeGenerator
	mailer EmailSender
	photos BlobStore
	pub    EventPublisher

	resendThrottle Throttle

	otpTTL        time.Duration
	sendTimeout   time.Duration
	maxPhotoBytes int64

	now   func() time.Time
	newID func() string
	audit func(action string, fields map[string]string)
	warn  func(msg string, err error, fields map[string]string)
}

type Config struct {
	OTPTTL           time.Duration
	EmailSendTimeout time.Duration
	MaxPhotoBytes    int64
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	codes CodeGenerator,
	mailer EmailSender,
	photos BlobStore,
	pub EventPublisher,
	cfg Config,
) *Service {
	otpTTL := cfg.OTPTTL
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	sendTimeout := cfg.EmailSendTimeout
	if sendTimeout <= 0 {
		sendTimeout = defaultEmailSendTimeout
	}
	maxPhoto := cfg.MaxPhotoBytes
	if maxPhoto <= 0 {
		maxPhoto = defaultMaxPhotoBytes
	}

	return &Service{
		users:  users,
		hasher: hasher,
		signer: signer,
		codes:  codes,
		mailer: mailer,
		photos: photos,
		pub:    pub,

		otpTTL:        otpTTL,
		sendTimeout:   sendTimeout,
		maxPhotoBytes: maxPhoto,

		now:   time.Now,
		newID: newUUID,
		audit: func(string, map[string]string) {},
		warn:  func(string, error, map[string]string) {},
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// WithWarn receives best-effort failures (event publish, old photo cleanup).
func (s *Service) WithWarn(fn func(msg string, err error, fields map[string]string)) *Service {
	if fn != nil {
		s.warn = fn
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) WithResendThrottle(t Throttle) *Service {
	s.resendThrottle = t
	return s
}

func (s *Service) MaxPhotoBytes() int64 { return s.maxPhotoBytes }

// AuthResult is returned by every flow that establishes a session.
type AuthResult struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

func (s *Service) issueToken(u domain.User) (AuthResult, error) {
	tok, exp, err := s.signer.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: u, Token: tok, ExpiresAt: exp}, nil
}

// sendCode bounds the email call so a hung transport still returns control.
func (s *Service) sendCode(ctx context.Context, u domain.User, code string) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	name := u.Name
	if name == "" {
		name = "User"
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.mailer.SendVerificationCode(sendCtx, u.Email, name, code) }()

	select {
	case err := <-errCh:
		return err
	case <-sendCtx.Done():
		return sendCtx.Err()
	}
}

func (s *Service) publish(ctx context.Context, typ string, u domain.User) {
	if s.pub == nil {
		return
	}
	evt := UserEvent{Type: typ, UserID: u.ID, Email: u.Email, OccurredAt: s.now().UTC()}
	if err := s.pub.PublishUserEvent(ctx, evt); err != nil {
		s.warn("event publish failed", err, map[string]string{"event": typ, "user_id": u.ID})
	}
}
