package http_handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/coursehub/internal/infrastructure/storage"
	"github.com/baechuer/coursehub/internal/logger"
	"github.com/baechuer/coursehub/internal/transport/http/response"
)

type imageOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type ImageHandler struct {
	store imageOpener
}

func NewImageHandler(store imageOpener) *ImageHandler {
	return &ImageHandler{store: store}
}

// GET /api/v1/images/{filename}
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if err := storage.ValidKey(name); err != nil {
		response.WriteError(w, r, err)
		return
	}

	rc, err := h.store.Open(r.Context(), name)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", imageContentType(name))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logger.WithCtx(r.Context()).Warn().Err(err).Str("key", name).Msg("image_stream_interrupted")
	}
}

func imageContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
