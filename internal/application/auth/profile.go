package auth

import (
	"bytes"
	"context"
	"strings"

	"github.com/baechuer/coursehub/internal/domain"
)

const minNewPasswordLen = 6

type ProfileInput struct {
	Email           string
	CurrentPassword string
	NewPassword     string
	Photo           *PhotoUpload
}

// UpdateProfile applies the self-service profile changes. A new photo is
// written before the record is updated, and the old one is removed only after
// the update succeeded.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return AuthResult{}, domain.ErrMissingField("email")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return AuthResult{}, err
	}

	if email != u.Email {
		other, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != u.ID:
			return AuthResult{}, domain.ErrEmailInUse()
		case err != nil && !domain.Is(err, "user_not_found"):
			return AuthResult{}, err
		}
	}

	ch := domain.ProfileChanges{Email: email}

	if in.NewPassword != "" {
		if in.CurrentPassword == "" {
			return AuthResult{}, domain.ErrCurrentPasswordRequired()
		}
		if err := s.hasher.Compare(u.PasswordHash, in.CurrentPassword); err != nil {
			return AuthResult{}, domain.ErrCurrentPasswordIncorrect()
		}
		if len(in.NewPassword) < minNewPasswordLen {
			return AuthResult{}, domain.ErrWeakPassword("min_length_6")
		}
		if len(in.NewPassword) > domain.MaxPasswordBytes {
			return AuthResult{}, domain.ErrWeakPassword("max_length_72_bytes")
		}
		hash, err := s.hasher.Hash(in.NewPassword)
		if err != nil {
			return AuthResult{}, err
		}
		ch.PasswordHash = &hash
	}

	var newKey string
	if in.Photo != nil && (in.Photo.Size > 0 || len(in.Photo.Data) > 0) {
		ext, err := s.validatePhoto(*in.Photo)
		if err != nil {
			return AuthResult{}, err
		}

		newKey = u.ID + "_" + s.newID() + ext
		if err := s.photos.Put(ctx, newKey, bytes.NewReader(in.Photo.Data), int64(len(in.Photo.Data)), in.Photo.ContentType); err != nil {
			return AuthResult{}, domain.ErrStorageFailed(err)
		}
		ch.ProfilePhoto = &newKey
	}

	updated, err := s.users.UpdateProfile(ctx, u.ID, ch)
	if err != nil {
		if newKey != "" {
			s.deletePhoto(ctx, newKey, u.ID)
		}
		return AuthResult{}, err
	}

	if newKey != "" {
		if u.ProfilePhoto != "" && u.ProfilePhoto != newKey {
			s.deletePhoto(ctx, u.ProfilePhoto, u.ID)
		}
		s.publish(ctx, EventUserPhotoReplace, updated)
	}

	// re-issue so the email claim follows the stored identity
	return s.issueToken(updated)
}

func (s *Service) deletePhoto(ctx context.Context, key, userID string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	if err := s.photos.Delete(cctx, key); err != nil {
		s.warn("photo delete failed", err, map[string]string{"user_id": userID, "key": key})
	}
}
