package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/coursehub/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.User
	byEmail map[string]string

	// injected errors (if set, method returns error)
	getByIDErr       error
	getByEmailErr    error
	upsertErr        error
	setCodeErr       error
	markVerifiedErr  error
	deletePendingErr error
	updateProfileErr error
	setRoleErr       error
	countByRoleErr   error
	deleteErr        error

	// runs inside MarkVerified before the conditional check, to simulate a racing writer
	beforeMarkVerified func()

	// record calls
	deletedPending []string
	deleted        []string
	setRoles       []struct{ id, role string }
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]string{},
	}
}

// put stores u directly, bypassing the port.
func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u.ID
}

func (f *fakeUserRepo) get(id string) (domain.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	return u, ok
}

func (f *fakeUserRepo) getEmail(email string) (domain.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, false
	}
	return f.byID[id], true
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	id, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return f.byID[id], nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpsertPending(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return domain.User{}, f.upsertErr
	}
	if id, ok := f.byEmail[u.Email]; ok {
		cur := f.byID[id]
		if cur.IsVerified() {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		cur.PasswordHash = u.PasswordHash
		cur.Name = u.Name
		cur.VerificationCode = u.VerificationCode
		cur.VerificationCodeExpiry = u.VerificationCodeExpiry
		f.byID[id] = cur
		return cur, nil
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u.ID
	return u, nil
}

func (f *fakeUserRepo) SetVerificationCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setCodeErr != nil {
		return f.setCodeErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	if u.IsVerified() {
		return domain.ErrAlreadyVerified()
	}
	u.IssueCode(code, expiresAt)
	f.byID[userID] = u
	return nil
}

func (f *fakeUserRepo) MarkVerified(ctx context.Context, userID, code string, now time.Time) (domain.User, bool, error) {
	if f.beforeMarkVerified != nil {
		f.beforeMarkVerified()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.markVerifiedErr != nil {
		return domain.User{}, false, f.markVerifiedErr
	}
	u, ok := f.byID[userID]
	if !ok || domain.CheckCode(u, code, now) != nil {
		return domain.User{}, false, nil
	}
	u.MarkVerified(now)
	f.byID[userID] = u
	return u, true, nil
}

func (f *fakeUserRepo) DeletePending(ctx context.Context, userID, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deletePendingErr != nil {
		return f.deletePendingErr
	}
	u, ok := f.byID[userID]
	if !ok || u.IsVerified() || u.VerificationCode != code {
		return domain.ErrUserNotFound()
	}
	delete(f.byID, userID)
	delete(f.byEmail, u.Email)
	f.deletedPending = append(f.deletedPending, userID)
	return nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, userID string, ch domain.ProfileChanges) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateProfileErr != nil {
		return domain.User{}, f.updateProfileErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	if ch.Email != u.Email {
		delete(f.byEmail, u.Email)
		u.Email = ch.Email
		f.byEmail[u.Email] = userID
	}
	if ch.PasswordHash != nil {
		u.PasswordHash = *ch.PasswordHash
	}
	if ch.ProfilePhoto != nil {
		u.ProfilePhoto = *ch.ProfilePhoto
	}
	f.byID[userID] = u
	return u, nil
}

func (f *fakeUserRepo) SetRole(ctx context.Context, userID string, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setRoleErr != nil {
		return f.setRoleErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Role = role
	f.byID[userID] = u
	f.setRoles = append(f.setRoles, struct{ id, role string }{userID, role})
	return nil
}

func (f *fakeUserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.countByRoleErr != nil {
		return 0, f.countByRoleErr
	}
	cnt := 0
	for _, u := range f.byID {
		if u.Role == role {
			cnt++
		}
	}
	return cnt, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	delete(f.byID, userID)
	delete(f.byEmail, u.Email)
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

type fakeSigner struct {
	issueErr error
}

func (s *fakeSigner) Issue(userID, email, role string) (string, time.Time, error) {
	if s.issueErr != nil {
		return "", time.Time{}, s.issueErr
	}
	return fmt.Sprintf("jwt(%s,%s,%s)", userID, email, role), time.Unix(0, 0), nil
}

func (s *fakeSigner) Verify(token string) (TokenClaims, error) {
	return TokenClaims{}, nil
}

// fakeCodes hands out codes in order, then repeats the last one.
type fakeCodes struct {
	mu    sync.Mutex
	codes []string
	i     int
	err   error
}

func (c *fakeCodes) Generate() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return "", c.err
	}
	if len(c.codes) == 0 {
		return "123456", nil
	}
	code := c.codes[c.i]
	if c.i < len(c.codes)-1 {
		c.i++
	}
	return code, nil
}

type sentMail struct{ to, name, code string }

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
	hang bool // block until ctx is done

	// onSend runs before the send is recorded; a non-nil result fails it.
	onSend func(code string) error
}

func (m *fakeMailer) SendVerificationCode(ctx context.Context, to, name, code string) error {
	if m.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if m.onSend != nil {
		if err := m.onSend(code); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, name: name, code: code})
	return nil
}

func (m *fakeMailer) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	delErr  error
	deleted []string
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{objects: map[string][]byte{}} }

func (b *fakeBlobs) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.putErr != nil {
		return b.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	b.objects[key] = buf.Bytes()
	return nil
}

func (b *fakeBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, key)
	if b.delErr != nil {
		return b.delErr
	}
	delete(b.objects, key)
	return nil
}

func (b *fakeBlobs) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

type fakePublisher struct {
	mu   sync.Mutex
	err  error
	evts []UserEvent
}

func (p *fakePublisher) PublishUserEvent(ctx context.Context, evt UserEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.evts = append(p.evts, evt)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.evts))
	for _, e := range p.evts {
		out = append(out, e.Type)
	}
	return out
}

type fakeThrottle struct {
	allow bool
	err   error
	keys  []string
}

func (t *fakeThrottle) Allow(ctx context.Context, key string) (bool, error) {
	t.keys = append(t.keys, key)
	return t.allow, t.err
}

/*
Service factory for tests
*/

type testDeps struct {
	users  *fakeUserRepo
	hasher *fakeHasher
	signer *fakeSigner
	codes  *fakeCodes
	mailer *fakeMailer
	blobs  *fakeBlobs
	pub    *fakePublisher
	audits *[]auditEntry
	now    *time.Time
}

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newSvcForTest(t *testing.T) (*Service, *testDeps) {
	t.Helper()

	now := testNow
	d := &testDeps{
		users:  newFakeUserRepo(),
		hasher: &fakeHasher{},
		signer: &fakeSigner{},
		codes:  &fakeCodes{},
		mailer: &fakeMailer{},
		blobs:  newFakeBlobs(),
		pub:    &fakePublisher{},
		audits: &[]auditEntry{},
		now:    &now,
	}

	var auditMu sync.Mutex
	svc := NewService(d.users, d.hasher, d.signer, d.codes, d.mailer, d.blobs, d.pub, Config{
		OTPTTL:           10 * time.Minute,
		EmailSendTimeout: 200 * time.Millisecond,
		MaxPhotoBytes:    1024,
	}).
		WithClock(func() time.Time { return *d.now }).
		WithAudit(func(action string, fields map[string]string) {
			auditMu.Lock()
			defer auditMu.Unlock()
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			*d.audits = append(*d.audits, auditEntry{action: action, fields: cp})
		})

	var idMu sync.Mutex
	seq := 0
	svc.newID = func() string {
		idMu.Lock()
		defer idMu.Unlock()
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	return svc, d
}

func verifiedUser(id, email, role string) domain.User {
	at := testNow.Add(-time.Hour)
	return domain.User{
		ID:            id,
		Email:         email,
		Name:          strings.Split(email, "@")[0],
		PasswordHash:  "hash:pw-" + id,
		Role:          role,
		EmailVerified: &at,
	}
}

/*
Small assertions
*/

func requireDomainCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	got := domainCode(err)
	if got != wantCode {
		t.Fatalf("expected domain code %q, got %q (err=%v)", wantCode, got, err)
	}
}

func lastAudit(audits *[]auditEntry) (auditEntry, bool) {
	if audits == nil || len(*audits) == 0 {
		return auditEntry{}, false
	}
	return (*audits)[len(*audits)-1], true
}

func requireAuditAction(t *testing.T, audits *[]auditEntry, wantAction string) auditEntry {
	t.Helper()
	e, ok := lastAudit(audits)
	if !ok {
		t.Fatalf("expected audit entry, got none")
	}
	if e.action != wantAction {
		t.Fatalf("expected audit action %q, got %q", wantAction, e.action)
	}
	return e
}

func requireAuditField(t *testing.T, e auditEntry, k, want string) {
	t.Helper()
	got := strings.TrimSpace(e.fields[k])
	if got != want {
		t.Fatalf("expected audit field %q=%q, got %q (all=%v)", k, want, got, e.fields)
	}
}
