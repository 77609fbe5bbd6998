package http_handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/baechuer/coursehub/internal/application/auth"
	"github.com/baechuer/coursehub/internal/domain"
	"github.com/baechuer/coursehub/internal/logger"
	"github.com/baechuer/coursehub/internal/transport/http/dto"
	"github.com/baechuer/coursehub/internal/transport/http/middleware"
	"github.com/baechuer/coursehub/internal/transport/http/response"
)

const (
	// room for the text fields and multipart framing on top of the photo
	formOverhead      = 1 << 20
	multipartMemLimit = 8 << 20
	profilePhotoField = "profilePhoto"
)

type ProfileHandler struct {
	svc *auth.Service
}

func NewProfileHandler(svc *auth.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// PUT /api/v1/user/profile (multipart/form-data)
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	maxPhoto := h.svc.MaxPhotoBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxPhoto+formOverhead)
	if err := r.ParseMultipartForm(multipartMemLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.WriteError(w, r, domain.ErrInvalidPhoto(fmt.Sprintf("too_large_max_%d_bytes", maxPhoto)))
			return
		}
		response.WriteError(w, r, domain.ErrInvalidForm(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	form := dto.ProfileForm{
		Email:           r.FormValue("email"),
		CurrentPassword: r.FormValue("currentPassword"),
		NewPassword:     r.FormValue("newPassword"),
	}
	if err := form.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	photo, err := readPhoto(r, maxPhoto)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.UpdateProfile(r.Context(), uid, auth.ProfileInput{
		Email:           form.Email,
		CurrentPassword: form.CurrentPassword,
		NewPassword:     form.NewPassword,
		Photo:           photo,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", uid).
		Bool("photo", photo != nil).
		Bool("password_changed", form.NewPassword != "").
		Msg("profile_updated")

	response.OK(w, dto.NewAuthData(res))
}

// readPhoto returns nil when no file was sent. At most max+1 bytes are read
// so an oversized upload is still detected without buffering all of it.
func readPhoto(r *http.Request, max int64) (*auth.PhotoUpload, error) {
	f, hdr, err := r.FormFile(profilePhotoField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, domain.ErrInvalidForm(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, domain.ErrInvalidForm(err)
	}

	return &auth.PhotoUpload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Data:        data,
	}, nil
}
