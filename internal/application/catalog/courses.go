package catalog

import (
	"context"
	"strings"

	"github.com/baechuer/coursehub/internal/domain"
)

type CourseInput struct {
	TopicID     string
	Title       string
	Description string
	Content     string
	IsActive    *bool
}

func (s *Service) ListCourses(ctx context.Context, topicID string) ([]domain.Course, error) {
	return s.courses.ListCourses(ctx, strings.TrimSpace(topicID))
}

func (s *Service) CreateCourse(ctx context.Context, in CourseInput) (domain.Course, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return domain.Course{}, err
	}
	topicID := strings.TrimSpace(in.TopicID)
	if topicID == "" {
		return domain.Course{}, domain.ErrMissingField("topicId")
	}
	content := s.clean(in.Content)
	if content == "" {
		return domain.Course{}, domain.ErrMissingField("content")
	}

	topic, err := s.topics.GetTopic(ctx, topicID)
	if err != nil {
		return domain.Course{}, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	now := s.now().UTC()

	c, err := s.courses.CreateCourse(ctx, domain.Course{
		ID:          s.newID(),
		TopicID:     topic.ID,
		TopicTitle:  topic.Title,
		Title:       title,
		Description: s.clean(in.Description),
		Content:     content,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.Course{}, err
	}

	s.audit("catalog.create_course", map[string]string{"course_id": c.ID, "topic_id": c.TopicID})
	return c, nil
}

func (s *Service) GetCourse(ctx context.Context, id string) (domain.Course, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Course{}, domain.ErrMissingField("id")
	}
	return s.courses.GetCourse(ctx, id)
}

// UpdateCourse replaces the editable fields. An empty TopicID keeps the
// current topic; a different one must exist.
func (s *Service) UpdateCourse(ctx context.Context, id string, in CourseInput) (domain.Course, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return domain.Course{}, err
	}
	content := s.clean(in.Content)
	if content == "" {
		return domain.Course{}, domain.ErrMissingField("content")
	}

	cur, err := s.courses.GetCourse(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Course{}, err
	}

	if topicID := strings.TrimSpace(in.TopicID); topicID != "" && topicID != cur.TopicID {
		topic, err := s.topics.GetTopic(ctx, topicID)
		if err != nil {
			return domain.Course{}, err
		}
		cur.TopicID = topic.ID
		cur.TopicTitle = topic.Title
	}

	cur.Title = title
	cur.Description = s.clean(in.Description)
	cur.Content = content
	if in.IsActive != nil {
		cur.IsActive = *in.IsActive
	}
	cur.UpdatedAt = s.now().UTC()

	c, err := s.courses.UpdateCourse(ctx, cur)
	if err != nil {
		return domain.Course{}, err
	}

	s.audit("catalog.update_course", map[string]string{"course_id": c.ID, "topic_id": c.TopicID})
	return c, nil
}

func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrMissingField("id")
	}
	if err := s.courses.DeleteCourse(ctx, id); err != nil {
		return err
	}
	s.audit("catalog.delete_course", map[string]string{"course_id": id})
	return nil
}
