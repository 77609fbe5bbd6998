package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/baechuer/coursehub/internal/domain"
)

// UserRepo implements auth.UserRepo on Postgres. Every verification
// transition is one conditional statement, so concurrent submissions
// cannot both win.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) queryUser(ctx context.Context, q string, args ...any) (domain.User, error) {
	ur, err := scanUser(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pgCode(err) == pgInvalidText {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

// ---------- reads ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	return r.queryUser(ctx, `SELECT `+userCols+` FROM users WHERE email = $1 LIMIT 1;`, email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.queryUser(ctx, `SELECT `+userCols+` FROM users WHERE id = $1 LIMIT 1;`, id)
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at DESC;`)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		ur, err := scanUser(rows)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, toDomainUser(ur))
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (r *UserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1;`, role).Scan(&n); err != nil {
		return 0, domain.ErrDBUnavailable(err)
	}
	return n, nil
}

// ---------- verification transitions ----------

func (r *UserRepo) UpsertPending(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.Role == "" {
		u.Role = string(domain.RoleUser)
	}

	// The WHERE on the conflict arm leaves a verified row untouched and
	// returns nothing, which is how a taken email is detected.
	const q = `
INSERT INTO users (id, email, name, password_hash, role, verification_code, verification_code_expiry)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (email) DO UPDATE
SET name = EXCLUDED.name,
    password_hash = EXCLUDED.password_hash,
    verification_code = EXCLUDED.verification_code,
    verification_code_expiry = EXCLUDED.verification_code_expiry,
    updated_at = NOW()
WHERE users.email_verified IS NULL
RETURNING ` + userCols + `;`

	ur, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role,
		sql.NullString{String: u.VerificationCode, Valid: u.VerificationCode != ""},
		timeOrNull(u.VerificationCodeExpiry),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pgCode(err) == pgUniqueViolation {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) SetVerificationCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	const q = `
UPDATE users
SET verification_code = $2,
    verification_code_expiry = $3,
    updated_at = NOW()
WHERE id = $1 AND email_verified IS NULL;
`
	res, err := r.db.ExecContext(ctx, q, userID, code, expiresAt)
	if err != nil {
		if pgCode(err) == pgInvalidText {
			return domain.ErrUserNotFound()
		}
		return domain.ErrDBUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Nothing updated: tell apart a missing row from a verified one.
	var verified bool
	err = r.db.QueryRowContext(ctx, `SELECT email_verified IS NOT NULL FROM users WHERE id = $1;`, userID).Scan(&verified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound()
		}
		return domain.ErrDBUnavailable(err)
	}
	if verified {
		return domain.ErrAlreadyVerified()
	}
	return domain.ErrUserNotFound()
}

func (r *UserRepo) MarkVerified(ctx context.Context, userID, code string, now time.Time) (domain.User, bool, error) {
	const q = `
UPDATE users
SET email_verified = $3,
    verification_code = NULL,
    verification_code_expiry = NULL,
    updated_at = $3
WHERE id = $1
  AND email_verified IS NULL
  AND verification_code = $2
  AND verification_code_expiry >= $3
RETURNING ` + userCols + `;`

	ur, err := scanUser(r.db.QueryRowContext(ctx, q, userID, code, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pgCode(err) == pgInvalidText {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), true, nil
}

func (r *UserRepo) DeletePending(ctx context.Context, userID, code string) error {
	return r.deleteWhere(ctx,
		`DELETE FROM users WHERE id = $1 AND email_verified IS NULL AND verification_code = $2;`,
		userID, code)
}

// ---------- profile & admin ----------

func (r *UserRepo) UpdateProfile(ctx context.Context, userID string, ch domain.ProfileChanges) (domain.User, error) {
	const q = `
UPDATE users
SET email = COALESCE(NULLIF($2, ''), email),
    password_hash = COALESCE($3, password_hash),
    profile_photo = COALESCE($4, profile_photo),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + userCols + `;`

	ur, err := scanUser(r.db.QueryRowContext(ctx, q,
		userID, ch.Email, nullString(ch.PasswordHash), nullString(ch.ProfilePhoto),
	))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), pgCode(err) == pgInvalidText:
			return domain.User{}, domain.ErrUserNotFound()
		case pgCode(err) == pgUniqueViolation:
			return domain.User{}, domain.ErrEmailInUse()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) SetRole(ctx context.Context, userID string, role string) error {
	role = strings.TrimSpace(role)
	if !domain.IsValidRole(role) {
		return domain.ErrInvalidRole(role)
	}

	const q = `
UPDATE users
SET role = $2,
    updated_at = NOW()
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, role)
	if err != nil {
		if pgCode(err) == pgInvalidText {
			return domain.ErrUserNotFound()
		}
		return domain.ErrDBUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, userID string) error {
	return r.deleteWhere(ctx, `DELETE FROM users WHERE id = $1;`, userID)
}

func (r *UserRepo) deleteWhere(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if pgCode(err) == pgInvalidText {
			return domain.ErrUserNotFound()
		}
		return domain.ErrDBUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}
