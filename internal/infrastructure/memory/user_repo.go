package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/baechuer/coursehub/internal/domain"
)

// UserRepo is a mutex-guarded user store with the same atomicity as the
// Postgres repository: every conditional transition happens under one lock.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> userID
	now     func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepo) UpsertPending(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if id, ok := r.byEmail[u.Email]; ok {
		cur := r.byID[id]
		if cur.IsVerified() {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		cur.PasswordHash = u.PasswordHash
		cur.Name = u.Name
		cur.EmailVerified = nil
		cur.VerificationCode = u.VerificationCode
		cur.VerificationCodeExpiry = copyTime(u.VerificationCodeExpiry)
		cur.UpdatedAt = now
		r.byID[id] = cur
		return cur, nil
	}

	if u.ID == "" {
		return domain.User{}, domain.ErrInternal(nil)
	}
	if u.Role == "" {
		u.Role = string(domain.RoleUser)
	}
	u.EmailVerified = nil
	u.VerificationCodeExpiry = copyTime(u.VerificationCodeExpiry)
	u.CreatedAt = now
	u.UpdatedAt = now

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

func (r *UserRepo) SetVerificationCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	if u.IsVerified() {
		return domain.ErrAlreadyVerified()
	}
	u.IssueCode(code, expiresAt)
	u.UpdatedAt = r.now()
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) MarkVerified(ctx context.Context, userID, code string, now time.Time) (domain.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.User{}, false, nil
	}
	if u.IsVerified() || u.VerificationCode != code ||
		u.VerificationCodeExpiry == nil || now.After(*u.VerificationCodeExpiry) {
		return domain.User{}, false, nil
	}

	u.MarkVerified(now)
	u.UpdatedAt = now
	r.byID[userID] = u
	return u, true, nil
}

func (r *UserRepo) DeletePending(ctx context.Context, userID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok || u.IsVerified() || u.VerificationCode != code {
		return domain.ErrUserNotFound()
	}
	delete(r.byID, userID)
	delete(r.byEmail, u.Email)
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID string, ch domain.ProfileChanges) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	if ch.Email != "" && ch.Email != u.Email {
		if owner, taken := r.byEmail[ch.Email]; taken && owner != userID {
			return domain.User{}, domain.ErrEmailInUse()
		}
		delete(r.byEmail, u.Email)
		u.Email = ch.Email
		r.byEmail[u.Email] = userID
	}
	if ch.PasswordHash != nil {
		u.PasswordHash = *ch.PasswordHash
	}
	if ch.ProfilePhoto != nil {
		u.ProfilePhoto = *ch.ProfilePhoto
	}
	u.UpdatedAt = r.now()
	r.byID[userID] = u
	return u, nil
}

func (r *UserRepo) SetRole(ctx context.Context, userID string, role string) error {
	if !domain.IsValidRole(role) {
		return domain.ErrInvalidRole(role)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Role = role
	u.UpdatedAt = r.now()
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, u := range r.byID {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *UserRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	delete(r.byID, userID)
	delete(r.byEmail, u.Email)
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
