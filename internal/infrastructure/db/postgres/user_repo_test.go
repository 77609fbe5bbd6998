package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/coursehub/internal/domain"
)

var t0 = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newUserRepoWithMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewUserRepo(db), mock
}

func userColumns() []string {
	return []string{"id", "email", "name", "password_hash", "role", "email_verified",
		"verification_code", "verification_code_expiry", "profile_photo", "created_at", "updated_at"}
}

func pendingRow(id, email, code string, exp time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns()).
		AddRow(id, email, "Ann", "hash", "user", nil, code, exp, nil, t0, t0)
}

func verifiedRow(id, email string, at time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns()).
		AddRow(id, email, "Ann", "hash", "user", at, nil, nil, "id_p.png", t0, at)
}

func expectCode(t *testing.T, err error, want string) {
	t.Helper()
	var de *domain.Error
	if !errors.As(err, &de) || de.Code != want {
		t.Fatalf("expected %q, got %v", want, err)
	}
}

func checkMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepo_GetByEmail(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	exp := t0.Add(10 * time.Minute)

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(pendingRow("u-1", "a@x.com", "123456", exp))

	u, err := repo.GetByEmail(context.Background(), "  a@x.com ")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if u.ID != "u-1" || u.VerificationCode != "123456" || u.IsVerified() {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.VerificationCodeExpiry == nil || !u.VerificationCodeExpiry.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, u.VerificationCodeExpiry)
	}
	checkMock(t, mock)
}

func TestUserRepo_GetByID_Errors(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs("u-1").WillReturnError(sql.ErrNoRows)
	_, err := repo.GetByID(ctx, "u-1")
	expectCode(t, err, "user_not_found")

	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs("bad").
		WillReturnError(&pgconn.PgError{Code: pgInvalidText})
	_, err = repo.GetByID(ctx, "bad")
	expectCode(t, err, "user_not_found")

	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs("u-1").WillReturnError(errors.New("conn reset"))
	_, err = repo.GetByID(ctx, "u-1")
	expectCode(t, err, "db_unavailable")

	checkMock(t, mock)
}

func TestUserRepo_UpsertPending(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	exp := t0.Add(10 * time.Minute)
	u := domain.User{ID: "u-2", Email: "a@x.com", Name: "Ann", PasswordHash: "hash"}
	u.IssueCode("123456", exp)

	// an existing pending row keeps its id
	mock.ExpectQuery(`(?s)INSERT INTO users .*ON CONFLICT \(email\) DO UPDATE.*WHERE users\.email_verified IS NULL.*RETURNING`).
		WithArgs("u-2", "a@x.com", "Ann", "hash", "user", "123456", exp).
		WillReturnRows(pendingRow("u-1", "a@x.com", "123456", exp))

	got, err := repo.UpsertPending(context.Background(), u)
	if err != nil {
		t.Fatalf("UpsertPending error: %v", err)
	}
	if got.ID != "u-1" {
		t.Fatalf("expected existing id, got %q", got.ID)
	}
	checkMock(t, mock)
}

func TestUserRepo_UpsertPending_VerifiedOwner(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	u := domain.User{ID: "u-2", Email: "a@x.com", PasswordHash: "hash"}
	u.IssueCode("123456", t0)

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(sql.ErrNoRows)
	_, err := repo.UpsertPending(context.Background(), u)
	expectCode(t, err, "email_already_exists")

	_, err = repo.UpsertPending(context.Background(), domain.User{Email: "a@x.com"})
	expectCode(t, err, "missing_field")
	checkMock(t, mock)
}

func TestUserRepo_SetVerificationCode(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	ctx := context.Background()
	exp := t0.Add(10 * time.Minute)

	mock.ExpectExec(`(?s)UPDATE users.*SET verification_code = \$2.*WHERE id = \$1 AND email_verified IS NULL`).
		WithArgs("u-1", "654321", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.SetVerificationCode(ctx, "u-1", "654321", exp); err != nil {
		t.Fatalf("SetVerificationCode error: %v", err)
	}

	// zero rows on a verified record
	mock.ExpectExec(`UPDATE users`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT email_verified IS NOT NULL FROM users WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"verified"}).AddRow(true))
	expectCode(t, repo.SetVerificationCode(ctx, "u-1", "1", exp), "already_verified")

	// zero rows on a missing record
	mock.ExpectExec(`UPDATE users`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT email_verified IS NOT NULL`).WillReturnError(sql.ErrNoRows)
	expectCode(t, repo.SetVerificationCode(ctx, "u-9", "1", exp), "user_not_found")

	checkMock(t, mock)
}

func TestUserRepo_MarkVerified(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`(?s)UPDATE users.*verification_code = NULL.*AND email_verified IS NULL.*AND verification_code = \$2.*AND verification_code_expiry >= \$3.*RETURNING`).
		WithArgs("u-1", "123456", t0).
		WillReturnRows(verifiedRow("u-1", "a@x.com", t0))

	u, ok, err := repo.MarkVerified(ctx, "u-1", "123456", t0)
	if err != nil || !ok {
		t.Fatalf("expected verified, ok=%v err=%v", ok, err)
	}
	if !u.IsVerified() || u.VerificationCode != "" || u.VerificationCodeExpiry != nil {
		t.Fatalf("expected cleared code fields, got %+v", u)
	}

	// lost the race or wrong code: nothing changed, no error
	mock.ExpectQuery(`UPDATE users`).WillReturnError(sql.ErrNoRows)
	_, ok, err = repo.MarkVerified(ctx, "u-1", "123456", t0)
	if err != nil || ok {
		t.Fatalf("expected ok=false without error, got ok=%v err=%v", ok, err)
	}

	mock.ExpectQuery(`UPDATE users`).WillReturnError(errors.New("down"))
	_, _, err = repo.MarkVerified(ctx, "u-1", "123456", t0)
	expectCode(t, err, "db_unavailable")

	checkMock(t, mock)
}

func TestUserRepo_DeletePending_OnlyUnverified(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	const q = `DELETE FROM users WHERE id = \$1 AND email_verified IS NULL AND verification_code = \$2`

	mock.ExpectExec(q).
		WithArgs("u-1", "123456").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.DeletePending(context.Background(), "u-1", "123456"); err != nil {
		t.Fatalf("DeletePending error: %v", err)
	}

	// verified, or refreshed by another registration
	mock.ExpectExec(q).
		WithArgs("u-1", "123456").
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectCode(t, repo.DeletePending(context.Background(), "u-1", "123456"), "user_not_found")

	checkMock(t, mock)
}

func TestUserRepo_UpdateProfile(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	ctx := context.Background()
	photo := "u-1_p.png"

	mock.ExpectQuery(`(?s)UPDATE users.*COALESCE\(NULLIF\(\$2, ''\), email\).*RETURNING`).
		WithArgs("u-1", "b@x.com", nil, photo).
		WillReturnRows(verifiedRow("u-1", "b@x.com", t0))

	u, err := repo.UpdateProfile(ctx, "u-1", domain.ProfileChanges{Email: "b@x.com", ProfilePhoto: &photo})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if u.Email != "b@x.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	mock.ExpectQuery(`UPDATE users`).WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
	_, err = repo.UpdateProfile(ctx, "u-1", domain.ProfileChanges{Email: "taken@x.com"})
	expectCode(t, err, "email_in_use")

	mock.ExpectQuery(`UPDATE users`).WillReturnError(sql.ErrNoRows)
	_, err = repo.UpdateProfile(ctx, "ghost", domain.ProfileChanges{Email: "z@x.com"})
	expectCode(t, err, "user_not_found")

	checkMock(t, mock)
}

func TestUserRepo_RolesListDelete(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	ctx := context.Background()

	expectCode(t, repo.SetRole(ctx, "u-1", "root"), "invalid_role")

	mock.ExpectExec(`(?s)UPDATE users.*SET role = \$2`).WithArgs("u-1", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.SetRole(ctx, "u-1", "admin"); err != nil {
		t.Fatalf("SetRole error: %v", err)
	}
	mock.ExpectExec(`SET role`).WillReturnResult(sqlmock.NewResult(0, 0))
	expectCode(t, repo.SetRole(ctx, "ghost", "user"), "user_not_found")

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = \$1`).WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	n, err := repo.CountByRole(ctx, "admin")
	if err != nil || n != 2 {
		t.Fatalf("CountByRole: n=%d err=%v", n, err)
	}

	rows := sqlmock.NewRows(userColumns()).
		AddRow("u-2", "b@x.com", "B", "h", "admin", t0, nil, nil, nil, t0.Add(time.Hour), t0).
		AddRow("u-1", "a@x.com", "A", "h", "user", nil, "1", t0, nil, t0, t0)
	mock.ExpectQuery(`SELECT .* FROM users ORDER BY created_at DESC`).WillReturnRows(rows)
	list, err := repo.List(ctx)
	if err != nil || len(list) != 2 || list[0].ID != "u-2" {
		t.Fatalf("List: %+v err=%v", list, err)
	}

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1;`).WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Delete(ctx, "u-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	checkMock(t, mock)
}
