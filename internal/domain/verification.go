package domain

import (
	"crypto/subtle"
	"time"
)

// VerificationState is the email-verification lifecycle of a user record.
//
//	Unregistered --register--> Pending --verify--> Verified
//	                            ^    |
//	                            +----+ resend / re-register
type VerificationState string

const (
	StateUnregistered VerificationState = "unregistered"
	StatePending      VerificationState = "pending_verification"
	StateVerified     VerificationState = "verified"
)

// StateOf reports the verification state of a record; a nil record is Unregistered.
func StateOf(u *User) VerificationState {
	if u == nil {
		return StateUnregistered
	}
	if u.EmailVerified != nil {
		return StateVerified
	}
	return StatePending
}

// IssueCode moves the record into (or keeps it in) Pending with a fresh code.
// The previous code, if any, is overwritten.
func (u *User) IssueCode(code string, expiresAt time.Time) {
	exp := expiresAt
	u.EmailVerified = nil
	u.VerificationCode = code
	u.VerificationCodeExpiry = &exp
}

// MarkVerified moves the record to Verified and clears the code fields.
func (u *User) MarkVerified(at time.Time) {
	t := at
	u.EmailVerified = &t
	u.VerificationCode = ""
	u.VerificationCodeExpiry = nil
}

// CheckCode decides whether code may verify u at now. It never mutates u.
// Order: already verified, code mismatch, expiry. A missing expiry counts as expired.
func CheckCode(u User, code string, now time.Time) error {
	if u.IsVerified() {
		return ErrAlreadyVerified()
	}
	if u.VerificationCode == "" || !codesEqual(u.VerificationCode, code) {
		return ErrInvalidCode()
	}
	if u.VerificationCodeExpiry == nil || now.After(*u.VerificationCodeExpiry) {
		return ErrCodeExpired()
	}
	return nil
}

func codesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
