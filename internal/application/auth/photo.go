package auth

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/baechuer/coursehub/internal/domain"
)

// allowedPhotoTypes maps the accepted declared types to the stored extension.
var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// PhotoUpload is an uploaded profile photo. Data may be truncated when Size
// already exceeds the limit.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// validatePhoto checks declared type, size, then the sniffed content, and
// returns the extension the stored object gets.
func (s *Service) validatePhoto(p PhotoUpload) (string, error) {
	if _, ok := allowedPhotoTypes[p.ContentType]; !ok {
		return "", domain.ErrInvalidPhoto("unsupported_type")
	}
	if p.Size > s.maxPhotoBytes || int64(len(p.Data)) > s.maxPhotoBytes {
		return "", domain.ErrInvalidPhoto(fmt.Sprintf("too_large_max_%d_bytes", s.maxPhotoBytes))
	}

	sniffed := mimetype.Detect(p.Data)
	ext, ok := allowedPhotoTypes[sniffed.String()]
	if !ok {
		return "", domain.ErrInvalidPhoto("content_mismatch")
	}
	return ext, nil
}
