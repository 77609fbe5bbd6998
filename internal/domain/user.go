package domain

import "time"

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string

	// Verification state. EmailVerified != nil implies the code fields are empty.
	EmailVerified          *time.Time
	VerificationCode       string
	VerificationCodeExpiry *time.Time

	// Opaque blob-store key, empty when the user has no photo.
	ProfilePhoto string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) IsVerified() bool {
	return u.EmailVerified != nil
}

func (u User) IsAdmin() bool {
	return u.Role == string(RoleAdmin)
}

// ProfileChanges is a partial update of the user-editable fields.
// Nil pointers leave the stored value untouched.
type ProfileChanges struct {
	Email        string
	PasswordHash *string
	ProfilePhoto *string
}
