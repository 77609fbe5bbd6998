package catalog

import (
	"context"

	"github.com/baechuer/coursehub/internal/domain"
)

type TopicRepo interface {
	// ListTopics returns every topic, newest first, with CourseCount over all courses.
	ListTopics(ctx context.Context) ([]domain.Topic, error)
	// ListActiveTopics returns active topics that have at least one active
	// course, newest first, with CourseCount over active courses only.
	ListActiveTopics(ctx context.Context) ([]domain.Topic, error)
	GetTopic(ctx context.Context, id string) (domain.Topic, error)
	CreateTopic(ctx context.Context, t domain.Topic) (domain.Topic, error)
	UpdateTopic(ctx context.Context, t domain.Topic) (domain.Topic, error)
	// DeleteTopic fails with topic_has_courses while any course references the topic.
	DeleteTopic(ctx context.Context, id string) error
}

type CourseRepo interface {
	// ListCourses returns courses newest first; an empty topicID lists all.
	ListCourses(ctx context.Context, topicID string) ([]domain.Course, error)
	// ListActiveCourses returns the active courses of a topic, oldest first.
	ListActiveCourses(ctx context.Context, topicID string) ([]domain.Course, error)
	GetCourse(ctx context.Context, id string) (domain.Course, error)
	CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error)
	UpdateCourse(ctx context.Context, c domain.Course) (domain.Course, error)
	DeleteCourse(ctx context.Context, id string) error
}

// Sanitizer cleans user-authored HTML before it is stored.
type Sanitizer interface {
	Sanitize(s string) string
}
