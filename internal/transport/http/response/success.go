package response

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/baechuer/coursehub/internal/logger"
)

type Envelope struct {
	Data any `json:"data"`
}

const contentTypeJSON = "application/json; charset=utf-8"

// WriteJSON encodes v before touching the writer, so a value that cannot be
// encoded turns into a plain 500 instead of a truncated body under a 2xx.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Logger.Error().Err(err).Int("status", status).Msg("response encode failed")
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"internal_error","message":"internal error"}}` + "\n"))
		return
	}

	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", contentTypeJSON)
	}
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Data: data})
}

func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Envelope{Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
