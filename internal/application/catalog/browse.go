package catalog

import (
	"context"
	"strings"

	"github.com/baechuer/coursehub/internal/domain"
)

// Browsing is open to every authenticated role and only ever shows active
// content: an inactive topic hides all of its courses.

func (s *Service) BrowseTopics(ctx context.Context) ([]domain.Topic, error) {
	return s.topics.ListActiveTopics(ctx)
}

func (s *Service) BrowseTopicCourses(ctx context.Context, topicID string) (domain.Topic, []domain.Course, error) {
	topicID = strings.TrimSpace(topicID)
	if topicID == "" {
		return domain.Topic{}, nil, domain.ErrTopicNotFound()
	}

	t, err := s.topics.GetTopic(ctx, topicID)
	if err != nil {
		return domain.Topic{}, nil, err
	}
	if !t.IsActive {
		return domain.Topic{}, nil, domain.ErrTopicNotFound()
	}

	courses, err := s.courses.ListActiveCourses(ctx, t.ID)
	if err != nil {
		return domain.Topic{}, nil, err
	}
	return t, courses, nil
}

func (s *Service) BrowseCourse(ctx context.Context, id string) (domain.Course, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Course{}, domain.ErrCourseNotFound()
	}

	c, err := s.courses.GetCourse(ctx, id)
	if err != nil {
		return domain.Course{}, err
	}
	if !c.IsActive {
		return domain.Course{}, domain.ErrCourseNotFound()
	}

	t, err := s.topics.GetTopic(ctx, c.TopicID)
	if err != nil {
		if domain.Is(err, "topic_not_found") {
			return domain.Course{}, domain.ErrCourseNotFound()
		}
		return domain.Course{}, err
	}
	if !t.IsActive {
		return domain.Course{}, domain.ErrCourseNotFound()
	}
	return c, nil
}
