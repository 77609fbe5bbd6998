package catalog

import (
	"context"
	"strings"

	"github.com/baechuer/coursehub/internal/domain"
)

type TopicInput struct {
	Title       string
	Description string
	// nil keeps the stored flag on update; create defaults to active
	IsActive *bool
}

// TopicDetail is a topic together with all of its courses, newest first.
type TopicDetail struct {
	Topic   domain.Topic
	Courses []domain.Course
}

func (s *Service) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	return s.topics.ListTopics(ctx)
}

func (s *Service) CreateTopic(ctx context.Context, in TopicInput) (domain.Topic, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return domain.Topic{}, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	now := s.now().UTC()

	t, err := s.topics.CreateTopic(ctx, domain.Topic{
		ID:          s.newID(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.Topic{}, err
	}

	s.audit("catalog.create_topic", map[string]string{"topic_id": t.ID})
	return t, nil
}

func (s *Service) GetTopic(ctx context.Context, id string) (TopicDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return TopicDetail{}, domain.ErrMissingField("id")
	}

	t, err := s.topics.GetTopic(ctx, id)
	if err != nil {
		return TopicDetail{}, err
	}
	courses, err := s.courses.ListCourses(ctx, t.ID)
	if err != nil {
		return TopicDetail{}, err
	}
	return TopicDetail{Topic: t, Courses: courses}, nil
}

func (s *Service) UpdateTopic(ctx context.Context, id string, in TopicInput) (domain.Topic, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return domain.Topic{}, err
	}

	cur, err := s.topics.GetTopic(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Topic{}, err
	}

	cur.Title = title
	cur.Description = strings.TrimSpace(in.Description)
	if in.IsActive != nil {
		cur.IsActive = *in.IsActive
	}
	cur.UpdatedAt = s.now().UTC()

	t, err := s.topics.UpdateTopic(ctx, cur)
	if err != nil {
		return domain.Topic{}, err
	}

	s.audit("catalog.update_topic", map[string]string{"topic_id": t.ID})
	return t, nil
}

func (s *Service) DeleteTopic(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrMissingField("id")
	}
	if err := s.topics.DeleteTopic(ctx, id); err != nil {
		return err
	}
	s.audit("catalog.delete_topic", map[string]string{"topic_id": id})
	return nil
}
