package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/baechuer/coursehub/internal/domain"
)

// CatalogRepo keeps topics and courses behind one lock so the
// "no delete while courses exist" rule holds under concurrency.
type CatalogRepo struct {
	mu      sync.RWMutex
	topics  map[string]domain.Topic
	courses map[string]domain.Course
}

func NewCatalogRepo() *CatalogRepo {
	return &CatalogRepo{
		topics:  make(map[string]domain.Topic),
		courses: make(map[string]domain.Course),
	}
}

func (r *CatalogRepo) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Topic, 0, len(r.topics))
	for _, t := range r.topics {
		t.CourseCount = r.countLocked(t.ID, false)
		out = append(out, t)
	}
	sortTopicsNewest(out)
	return out, nil
}

func (r *CatalogRepo) ListActiveTopics(ctx context.Context) ([]domain.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Topic, 0, len(r.topics))
	for _, t := range r.topics {
		if !t.IsActive {
			continue
		}
		t.CourseCount = r.countLocked(t.ID, true)
		if t.CourseCount == 0 {
			continue
		}
		out = append(out, t)
	}
	sortTopicsNewest(out)
	return out, nil
}

func (r *CatalogRepo) GetTopic(ctx context.Context, id string) (domain.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.topics[id]
	if !ok {
		return domain.Topic{}, domain.ErrTopicNotFound()
	}
	t.CourseCount = r.countLocked(id, false)
	return t, nil
}

func (r *CatalogRepo) CreateTopic(ctx context.Context, t domain.Topic) (domain.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		return domain.Topic{}, domain.ErrInternal(nil)
	}
	t.CourseCount = 0
	r.topics[t.ID] = t
	return t, nil
}

func (r *CatalogRepo) UpdateTopic(ctx context.Context, t domain.Topic) (domain.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.topics[t.ID]
	if !ok {
		return domain.Topic{}, domain.ErrTopicNotFound()
	}
	cur.Title = t.Title
	cur.Description = t.Description
	cur.IsActive = t.IsActive
	cur.UpdatedAt = t.UpdatedAt
	r.topics[t.ID] = cur

	// denormalized title on courses follows the topic
	for id, c := range r.courses {
		if c.TopicID == t.ID {
			c.TopicTitle = cur.Title
			r.courses[id] = c
		}
	}

	cur.CourseCount = r.countLocked(t.ID, false)
	return cur, nil
}

func (r *CatalogRepo) DeleteTopic(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.topics[id]; !ok {
		return domain.ErrTopicNotFound()
	}
	if r.countLocked(id, false) > 0 {
		return domain.ErrTopicHasCourses()
	}
	delete(r.topics, id)
	return nil
}

func (r *CatalogRepo) ListCourses(ctx context.Context, topicID string) ([]domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Course, 0)
	for _, c := range r.courses {
		if topicID != "" && c.TopicID != topicID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CatalogRepo) ListActiveCourses(ctx context.Context, topicID string) ([]domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Course, 0)
	for _, c := range r.courses {
		if c.TopicID == topicID && c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *CatalogRepo) GetCourse(ctx context.Context, id string) (domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.courses[id]
	if !ok {
		return domain.Course{}, domain.ErrCourseNotFound()
	}
	return c, nil
}

func (r *CatalogRepo) CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.topics[c.TopicID]
	if !ok {
		return domain.Course{}, domain.ErrTopicNotFound()
	}
	if c.ID == "" {
		return domain.Course{}, domain.ErrInternal(nil)
	}
	c.TopicTitle = t.Title
	r.courses[c.ID] = c
	return c, nil
}

func (r *CatalogRepo) UpdateCourse(ctx context.Context, c domain.Course) (domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.courses[c.ID]
	if !ok {
		return domain.Course{}, domain.ErrCourseNotFound()
	}
	t, ok := r.topics[c.TopicID]
	if !ok {
		return domain.Course{}, domain.ErrTopicNotFound()
	}

	cur.TopicID = t.ID
	cur.TopicTitle = t.Title
	cur.Title = c.Title
	cur.Description = c.Description
	cur.Content = c.Content
	cur.IsActive = c.IsActive
	cur.UpdatedAt = c.UpdatedAt
	r.courses[c.ID] = cur
	return cur, nil
}

func (r *CatalogRepo) DeleteCourse(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[id]; !ok {
		return domain.ErrCourseNotFound()
	}
	delete(r.courses, id)
	return nil
}

func (r *CatalogRepo) countLocked(topicID string, activeOnly bool) int {
	n := 0
	for _, c := range r.courses {
		if c.TopicID != topicID {
			continue
		}
		if activeOnly && !c.IsActive {
			continue
		}
		n++
	}
	return n
}

func sortTopicsNewest(ts []domain.Topic) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].CreatedAt.After(ts[j].CreatedAt) })
}
