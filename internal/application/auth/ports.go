package auth

import (
	"context"
	"io"
	"time"

	"github.com/baechuer/coursehub/internal/domain"
)

/*
UserRepo
--------
Persistence port for user records.
The verification transitions are single atomic statements; callers never
read-then-write the code fields themselves.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)

	// UpsertPending inserts u as a pending record, or overwrites the existing
	// unverified record with the same email (keeping its id). It returns
	// ErrEmailAlreadyExists when a verified record owns the email.
	UpsertPending(ctx context.Context, u domain.User) (domain.User, error)

	// SetVerificationCode overwrites the outstanding code of a pending record.
	// It returns ErrAlreadyVerified when the record is verified.
	SetVerificationCode(ctx context.Context, userID, code string, expiresAt time.Time) error

	// MarkVerified verifies the record only if it is still pending, holds code,
	// and the code has not expired at now. ok=false means nothing changed.
	MarkVerified(ctx context.Context, userID, code string, now time.Time) (u domain.User, ok bool, err error)

	// DeletePending removes the record only while it is unverified and still
	// holds code, so a later writer's pending state survives.
	DeletePending(ctx context.Context, userID, code string) error

	UpdateProfile(ctx context.Context, userID string, ch domain.ProfileChanges) (domain.User, error)
	SetRole(ctx context.Context, userID string, role string) error
	CountByRole(ctx context.Context, role string) (int, error)
	Delete(ctx context.Context, userID string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies bearer session tokens.
Used by service + auth middleware.
*/
type TokenClaims struct {
	UserID    string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenSigner interface {
	Issue(userID, email, role string) (token string, expiresAt time.Time, err error)
	Verify(token string) (TokenClaims, error)
}

// CodeGenerator produces six-digit verification codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// EmailSender delivers the verification code. Implementations must honour ctx.
type EmailSender interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
}

// BlobStore holds profile photos under opaque keys.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Throttle reports whether key may proceed now. Used for resend cooldowns.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
}

/*
EventPublisher
--------------
Best-effort domain events. A failed publish never fails the calling flow.
*/
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, evt UserEvent) error
}

const (
	EventUserRegistered   = "user.registered"
	EventUserVerified     = "user.verified"
	EventUserDeleted      = "user.deleted"
	EventUserPhotoReplace = "user.photo_replaced"
)

type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
