package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/coursehub/internal/domain"
)

func newCatalogRepoWithMock(t *testing.T) (*CatalogRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewCatalogRepo(db), mock
}

var (
	topicColumns  = []string{"id", "title", "description", "is_active", "created_at", "updated_at", "count"}
	courseColumns = []string{"id", "topic_id", "topic_title", "title", "description", "content", "is_active", "created_at", "updated_at"}
)

func TestCatalogRepo_ListTopics(t *testing.T) {
	repo, mock := newCatalogRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM topics t\s+LEFT JOIN courses c.*ORDER BY t.created_at DESC`).
		WillReturnRows(sqlmock.NewRows(topicColumns).
			AddRow("t2", "Rust", "", true, t0.Add(time.Hour), t0, 0).
			AddRow("t1", "Go", "d", false, t0, t0, 3))

	ts, err := repo.ListTopics(context.Background())
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, 3, ts[1].CourseCount)
	assert.False(t, ts[1].IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_ListActiveTopics_FiltersInSQL(t *testing.T) {
	repo, mock := newCatalogRepoWithMock(t)

	mock.ExpectQuery(`(?s)JOIN courses c ON c.topic_id = t.id AND c.is_active\s+WHERE t.is_active`).
		WillReturnRows(sqlmock.NewRows(topicColumns).AddRow("t1", "Go", "", true, t0, t0, 1))

	ts, err := repo.ListActiveTopics(context.Background())
	require.NoError(t, err)
	require.Len(t, ts, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_GetTopic_NotFound(t *testing.T) {
	repo, mock := newCatalogRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`FROM topics t\s+WHERE t.id = \$1`).WithArgs("t9").WillReturnError(sql.ErrNoRows)
	_, err := repo.GetTopic(ctx, "t9")
	expectCode(t, err, "topic_not_found")

	mock.ExpectQuery(`FROM topics t`).WithArgs("ghost").WillReturnError(&pgconn.PgError{Code: pgInvalidText})
	_, err = repo.GetTopic(ctx, "ghost")
	expectCode(t, err, "topic_not_found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_CreateAndUpdateTopic(t *testing.T) {
	repo, mock := newCatalogRepoWithMock(t)
	ctx := context.Background()
	tp := domain.Topic{ID: "t1", Title: "Go", IsActive: true, CreatedAt: t0, UpdatedAt: t0}

	mock.ExpectExec(`INSERT INTO topics`).
		WithArgs("t1", "Go", "", true, t0, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	got, err := repo.CreateTopic(ctx, tp)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)

	later := t0.Add(time.Minute)
	tp.Title, tp.UpdatedAt = "Golang", later
	mock.ExpectQuery(`(?s)UPDATE topics t.*WHERE t.id = \$1.*RETURNING`).
		WithArgs("t1", "Golang", "", true, later).
		WillReturnRows(sqlmock.NewRows(topicColumns).AddRow("t1", "Golang", "", true, t0, later, 2))
	up, err := repo.UpdateTopic(ctx, tp)
	require.NoError(t, err)
	assert.Equal(t, 2, up.CourseCount)

	mock.ExpectQuery(`UPDATE topics`).WillReturnError(sql.ErrNoRows)
	_, err = repo.UpdateTopic(ctx, domain.Topic{ID: "t9"})
	expectCode(t, err, "topic_not_found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_DeleteTopic(t *testing.T) {
	repo, mock := newCatalogRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM topics WHERE id = \$1`).WithArgs("t1").
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})
	expectCode(t, repo.DeleteTopic(ctx, "t1"), "topic_has_courses")

	mock.ExpectExec(`DELETE FROM topics`).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 0))
	expectCode(t, repo.DeleteTopic(ctx, "t1"), "topic_not_found")

	mock.ExpectExec(`DELETE FROM topics`).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteTopic(ctx, "t1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_ListCourses(t *testing.T) {
	repo, mock := newCatalogRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`(?s)FROM courses c\s+JOIN topics t ON t.id = c.topic_id\s+ORDER BY c.created_at DESC`).
		WillReturnRows(sqlmock.NewRows(courseColumns).
			AddRow("c1", "t1", "Go", "Basics", "", "x", true, t0, t0))
	all, err := repo.ListCourses(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Go", all[0].TopicTitle)

	mock.ExpectQuery(`(?s)WHERE c.topic_id = \$1\s+ORDER BY c.created_at DESC`).WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(courseColumns))
	byTopic, err := repo.ListCourses(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, byTopic)
	assert.NotNil(t, byTopic)

	mock.ExpectQuery(`(?s)WHERE c.topic_id = \$1 AND c.is_active\s+ORDER BY c.created_at ASC`).WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(courseColumns).
			AddRow("c1", "t1", "Go", "Basics", "", "x", true, t0, t0).
			AddRow("c2", "t1", "Go", "Next", "", "y", true, t0.Add(time.Hour), t0))
	active, err := repo.ListActiveCourses(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "c1", active[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_CreateCourse(t *testing.T) {
	repo, mock := newCatalogRepoWithMock(t)
	ctx := context.Background()
	c := domain.Course{ID: "c1", TopicID: "t1", Title: "Basics", Content: "<p>x</p>", IsActive: true, CreatedAt: t0, UpdatedAt: t0}

	mock.ExpectQuery(`(?s)WITH c AS \(\s+INSERT INTO courses.*JOIN topics t ON t.id = c.topic_id`).
		WithArgs("c1", "t1", "Basics", "", "<p>x</p>", true, t0, t0).
		WillReturnRows(sqlmock.NewRows(courseColumns).
			AddRow("c1", "t1", "Go", "Basics", "", "<p>x</p>", true, t0, t0))
	got, err := repo.CreateCourse(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.TopicTitle)

	mock.ExpectQuery(`INSERT INTO courses`).WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})
	_, err = repo.CreateCourse(ctx, c)
	expectCode(t, err, "topic_not_found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_UpdateAndDeleteCourse(t *testing.T) {
	repo, mock := newCatalogRepoWithMock(t)
	ctx := context.Background()
	c := domain.Course{ID: "c1", TopicID: "t2", Title: "Moved", Content: "x", UpdatedAt: t0}

	mock.ExpectQuery(`(?s)WITH c AS \(\s+UPDATE courses`).
		WithArgs("c1", "t2", "Moved", "", "x", false, t0).
		WillReturnRows(sqlmock.NewRows(courseColumns).
			AddRow("c1", "t2", "Rust", "Moved", "", "x", false, t0, t0))
	got, err := repo.UpdateCourse(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "Rust", got.TopicTitle)

	mock.ExpectQuery(`UPDATE courses`).WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})
	_, err = repo.UpdateCourse(ctx, c)
	expectCode(t, err, "topic_not_found")

	mock.ExpectQuery(`UPDATE courses`).WillReturnError(sql.ErrNoRows)
	_, err = repo.UpdateCourse(ctx, c)
	expectCode(t, err, "course_not_found")

	mock.ExpectExec(`DELETE FROM courses WHERE id = \$1`).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 0))
	expectCode(t, repo.DeleteCourse(ctx, "c1"), "course_not_found")
	require.NoError(t, mock.ExpectationsWereMet())
}
