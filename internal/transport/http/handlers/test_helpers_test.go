package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/coursehub/internal/application/auth"
	"github.com/baechuer/coursehub/internal/infrastructure/memory"
	"github.com/baechuer/coursehub/internal/infrastructure/security"
	"github.com/baechuer/coursehub/internal/infrastructure/storage"
	"github.com/baechuer/coursehub/internal/transport/http/middleware"
)

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// mustReadData decodes the {"data": ...} envelope into out.
func mustReadData(t *testing.T, r io.Reader, out any) {
	t.Helper()

	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	wrapped := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &wrapped); err != nil || len(wrapped.Data) == 0 {
		t.Fatalf("decode json failed; body=%s", string(raw))
	}
	if err := json.Unmarshal(wrapped.Data, out); err != nil {
		t.Fatalf("decode data failed; body=%s err=%v", string(raw), err)
	}
}

// errorCode pulls error.code out of an error body.
func errorCode(t *testing.T, body *bytes.Buffer) string {
	t.Helper()

	var eb struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body.Bytes(), &eb); err != nil {
		t.Fatalf("decode error body: %v; body=%s", err, body.String())
	}
	return eb.Error.Code
}

// withUserCtx injects the authenticated identity the way the auth middleware does.
func withUserCtx(req *http.Request, userID, email, role string) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), userID, email, role))
}

// withURLParam injects chi URL param (e.g. /users/{id}) into request context.
func withURLParam(req *http.Request, key, val string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, val)

	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

type fixedCodes struct{ code string }

func (f fixedCodes) Generate() (string, error) { return f.code, nil }

type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *captureMailer) SendVerificationCode(ctx context.Context, to, name, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[to] = code
	return nil
}

type testEnv struct {
	svc    *auth.Service
	users  *memory.UserRepo
	signer *security.JWTSigner
	mailer *captureMailer
	photos *storage.Local
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	signer, err := security.NewJWTSigner("test-secret-test-secret-test-secret", "coursehub-test", time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	photos, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	users := memory.NewUserRepo()
	mailer := &captureMailer{}
	svc := auth.NewService(
		users,
		security.NewBcryptHasher(bcrypt.MinCost),
		signer,
		fixedCodes{code: "123456"},
		mailer,
		photos,
		memory.NewNoopPublisher(),
		auth.Config{MaxPhotoBytes: 1024},
	)
	return &testEnv{svc: svc, users: users, signer: signer, mailer: mailer, photos: photos}
}

// verifiedUser registers and verifies email, returning the issued session.
func (e *testEnv) verifiedUser(t *testing.T, email, password string) auth.AuthResult {
	t.Helper()

	ctx := context.Background()
	if _, err := e.svc.Register(ctx, auth.RegisterInput{Email: email, Password: password, Name: "Test"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	res, err := e.svc.VerifyEmail(ctx, email, "123456")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	return res
}
