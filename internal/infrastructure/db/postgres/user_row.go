package postgres

import (
	"database/sql"
	"time"

	"github.com/baechuer/coursehub/internal/domain"
)

const userCols = `id, email, name, password_hash, role, email_verified,
verification_code, verification_code_expiry, profile_photo, created_at, updated_at`

type userRow struct {
	ID                     string
	Email                  string
	Name                   string
	PasswordHash           string
	Role                   string
	EmailVerified          sql.NullTime
	VerificationCode       sql.NullString
	VerificationCodeExpiry sql.NullTime
	ProfilePhoto           sql.NullString
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (userRow, error) {
	var ur userRow
	err := s.Scan(
		&ur.ID,
		&ur.Email,
		&ur.Name,
		&ur.PasswordHash,
		&ur.Role,
		&ur.EmailVerified,
		&ur.VerificationCode,
		&ur.VerificationCodeExpiry,
		&ur.ProfilePhoto,
		&ur.CreatedAt,
		&ur.UpdatedAt,
	)
	return ur, err
}

func toDomainUser(ur userRow) domain.User {
	return domain.User{
		ID:                     ur.ID,
		Email:                  ur.Email,
		Name:                   ur.Name,
		PasswordHash:           ur.PasswordHash,
		Role:                   ur.Role,
		EmailVerified:          nullTimePtr(ur.EmailVerified),
		VerificationCode:       ur.VerificationCode.String,
		VerificationCodeExpiry: nullTimePtr(ur.VerificationCodeExpiry),
		ProfilePhoto:           ur.ProfilePhoto.String,
		CreatedAt:              ur.CreatedAt,
		UpdatedAt:              ur.UpdatedAt,
	}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func timeOrNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
