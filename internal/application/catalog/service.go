package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/baechuer/coursehub/internal/domain"
)

const maxTitleLen = 200

type Service struct {
	topics  TopicRepo
	courses CourseRepo
	html    Sanitizer

	now   func() time.Time
	newID func() string
	audit func(action string, fields map[string]string)
}

func NewService(topics TopicRepo, courses CourseRepo, html Sanitizer) *Service {
	return &Service{
		topics:  topics,
		courses: courses,
		html:    html,
		now:     time.Now,
		newID:   uuid.NewString,
		audit:   func(string, map[string]string) {},
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.ErrMissingField("title")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", domain.ErrInvalidField("title", "max_length_200")
	}
	return title, nil
}

func (s *Service) clean(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || s.html == nil {
		return v
	}
	return strings.TrimSpace(s.html.Sanitize(v))
}
