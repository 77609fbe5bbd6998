package domain

import "time"

type Topic struct {
	ID          string
	Title       string
	Description string
	IsActive    bool
	CourseCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Course struct {
	ID          string
	TopicID     string
	TopicTitle  string
	Title       string
	Description string
	Content     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
