package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/baechuer/coursehub/internal/domain"
)

// CatalogRepo implements catalog.TopicRepo and catalog.CourseRepo.
// The courses.topic_id foreign key (ON DELETE RESTRICT) enforces that a
// topic with courses cannot be removed.
type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

const topicCols = `t.id, t.title, t.description, t.is_active, t.created_at, t.updated_at`

const courseCols = `c.id, c.topic_id, t.title, c.title, c.description, c.content,
c.is_active, c.created_at, c.updated_at`

func scanTopic(s rowScanner) (domain.Topic, error) {
	var t domain.Topic
	err := s.Scan(&t.ID, &t.Title, &t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt, &t.CourseCount)
	return t, err
}

func scanCourse(s rowScanner) (domain.Course, error) {
	var c domain.Course
	err := s.Scan(&c.ID, &c.TopicID, &c.TopicTitle, &c.Title, &c.Description, &c.Content,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func missing(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || pgCode(err) == pgInvalidText
}

// ---------- topics ----------

func (r *CatalogRepo) listTopics(ctx context.Context, q string) ([]domain.Topic, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := []domain.Topic{}
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (r *CatalogRepo) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	return r.listTopics(ctx, `
SELECT `+topicCols+`, COUNT(c.id)
FROM topics t
LEFT JOIN courses c ON c.topic_id = t.id
GROUP BY t.id
ORDER BY t.created_at DESC;
`)
}

func (r *CatalogRepo) ListActiveTopics(ctx context.Context) ([]domain.Topic, error) {
	return r.listTopics(ctx, `
SELECT `+topicCols+`, COUNT(c.id)
FROM topics t
JOIN courses c ON c.topic_id = t.id AND c.is_active
WHERE t.is_active
GROUP BY t.id
ORDER BY t.created_at DESC;
`)
}

func (r *CatalogRepo) GetTopic(ctx context.Context, id string) (domain.Topic, error) {
	const q = `
SELECT ` + topicCols + `, (SELECT COUNT(*) FROM courses c WHERE c.topic_id = t.id)
FROM topics t
WHERE t.id = $1;
`
	t, err := scanTopic(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if missing(err) {
			return domain.Topic{}, domain.ErrTopicNotFound()
		}
		return domain.Topic{}, domain.ErrDBUnavailable(err)
	}
	return t, nil
}

func (r *CatalogRepo) CreateTopic(ctx context.Context, t domain.Topic) (domain.Topic, error) {
	const q = `
INSERT INTO topics (id, title, description, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	if _, err := r.db.ExecContext(ctx, q, t.ID, t.Title, t.Description, t.IsActive, t.CreatedAt, t.UpdatedAt); err != nil {
		return domain.Topic{}, domain.ErrDBUnavailable(err)
	}
	t.CourseCount = 0
	return t, nil
}

func (r *CatalogRepo) UpdateTopic(ctx context.Context, t domain.Topic) (domain.Topic, error) {
	const q = `
UPDATE topics t
SET title = $2,
    description = $3,
    is_active = $4,
    updated_at = $5
WHERE t.id = $1
RETURNING ` + topicCols + `, (SELECT COUNT(*) FROM courses c WHERE c.topic_id = t.id);
`
	out, err := scanTopic(r.db.QueryRowContext(ctx, q, t.ID, t.Title, t.Description, t.IsActive, t.UpdatedAt))
	if err != nil {
		if missing(err) {
			return domain.Topic{}, domain.ErrTopicNotFound()
		}
		return domain.Topic{}, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (r *CatalogRepo) DeleteTopic(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM topics WHERE id = $1;`, id)
	if err != nil {
		switch pgCode(err) {
		case pgForeignKeyViolation:
			return domain.ErrTopicHasCourses()
		case pgInvalidText:
			return domain.ErrTopicNotFound()
		}
		return domain.ErrDBUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTopicNotFound()
	}
	return nil
}

// ---------- courses ----------

func (r *CatalogRepo) listCourses(ctx context.Context, q string, args ...any) ([]domain.Course, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		if pgCode(err) == pgInvalidText {
			return []domain.Course{}, nil
		}
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := []domain.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (r *CatalogRepo) ListCourses(ctx context.Context, topicID string) ([]domain.Course, error) {
	if topicID == "" {
		return r.listCourses(ctx, `
SELECT `+courseCols+`
FROM courses c
JOIN topics t ON t.id = c.topic_id
ORDER BY c.created_at DESC;
`)
	}
	return r.listCourses(ctx, `
SELECT `+courseCols+`
FROM courses c
JOIN topics t ON t.id = c.topic_id
WHERE c.topic_id = $1
ORDER BY c.created_at DESC;
`, topicID)
}

func (r *CatalogRepo) ListActiveCourses(ctx context.Context, topicID string) ([]domain.Course, error) {
	return r.listCourses(ctx, `
SELECT `+courseCols+`
FROM courses c
JOIN topics t ON t.id = c.topic_id
WHERE c.topic_id = $1 AND c.is_active
ORDER BY c.created_at ASC;
`, topicID)
}

func (r *CatalogRepo) GetCourse(ctx context.Context, id string) (domain.Course, error) {
	const q = `
SELECT ` + courseCols + `
FROM courses c
JOIN topics t ON t.id = c.topic_id
WHERE c.id = $1;
`
	c, err := scanCourse(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if missing(err) {
			return domain.Course{}, domain.ErrCourseNotFound()
		}
		return domain.Course{}, domain.ErrDBUnavailable(err)
	}
	return c, nil
}

func (r *CatalogRepo) CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error) {
	const q = `
WITH c AS (
    INSERT INTO courses (id, topic_id, title, description, content, is_active, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING *
)
SELECT ` + courseCols + `
FROM c
JOIN topics t ON t.id = c.topic_id;
`
	out, err := scanCourse(r.db.QueryRowContext(ctx, q,
		c.ID, c.TopicID, c.Title, c.Description, c.Content, c.IsActive, c.CreatedAt, c.UpdatedAt,
	))
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation || missing(err) {
			return domain.Course{}, domain.ErrTopicNotFound()
		}
		return domain.Course{}, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (r *CatalogRepo) UpdateCourse(ctx context.Context, c domain.Course) (domain.Course, error) {
	const q = `
WITH c AS (
    UPDATE courses
    SET topic_id = $2,
        title = $3,
        description = $4,
        content = $5,
        is_active = $6,
        updated_at = $7
    WHERE id = $1
    RETURNING *
)
SELECT ` + courseCols + `
FROM c
JOIN topics t ON t.id = c.topic_id;
`
	out, err := scanCourse(r.db.QueryRowContext(ctx, q,
		c.ID, c.TopicID, c.Title, c.Description, c.Content, c.IsActive, c.UpdatedAt,
	))
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return domain.Course{}, domain.ErrTopicNotFound()
		}
		if missing(err) {
			return domain.Course{}, domain.ErrCourseNotFound()
		}
		return domain.Course{}, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (r *CatalogRepo) DeleteCourse(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1;`, id)
	if err != nil {
		if pgCode(err) == pgInvalidText {
			return domain.ErrCourseNotFound()
		}
		return domain.ErrDBUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrCourseNotFound()
	}
	return nil
}
