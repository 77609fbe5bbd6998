package dto

import (
	"time"

	"github.com/baechuer/coursehub/internal/application/auth"
	"github.com/baechuer/coursehub/internal/domain"
)

// ImagePathPrefix is where stored photo keys are served from.
const ImagePathPrefix = "/api/v1/images/"

type UserView struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	EmailVerified *time.Time `json:"emailVerified"`
	ProfilePhoto  string     `json:"profilePhoto,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func NewUserView(u domain.User) UserView {
	v := UserView{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	if u.ProfilePhoto != "" {
		v.ProfilePhoto = ImagePathPrefix + u.ProfilePhoto
	}
	return v
}

func NewUserViews(us []domain.User) []UserView {
	out := make([]UserView, 0, len(us))
	for _, u := range us {
		out = append(out, NewUserView(u))
	}
	return out
}

type AuthData struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

func NewAuthData(res auth.AuthResult) AuthData {
	return AuthData{
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.ExpiresAt,
		User:      NewUserView(res.User),
	}
}

type RegisterData struct {
	Email                string `json:"email"`
	RequiresVerification bool   `json:"requiresVerification"`
}

// -------- Catalog --------

type TopicView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CourseCount int       `json:"courseCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CourseView struct {
	ID          string    `json:"id"`
	TopicID     string    `json:"topicId"`
	TopicTitle  string    `json:"topicTitle"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TopicDetailView struct {
	TopicView
	Courses []CourseView `json:"courses"`
}

func NewTopicView(t domain.Topic) TopicView {
	return TopicView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsActive:    t.IsActive,
		CourseCount: t.CourseCount,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTopicViews(ts []domain.Topic) []TopicView {
	out := make([]TopicView, 0, len(ts))
	for _, t := range ts {
		out = append(out, NewTopicView(t))
	}
	return out
}

// NewCourseView includes content only when withContent is set; listings omit it.
func NewCourseView(c domain.Course, withContent bool) CourseView {
	v := CourseView{
		ID:          c.ID,
		TopicID:     c.TopicID,
		TopicTitle:  c.TopicTitle,
		Title:       c.Title,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if withContent {
		v.Content = c.Content
	}
	return v
}

func NewCourseViews(cs []domain.Course) []CourseView {
	out := make([]CourseView, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewCourseView(c, false))
	}
	return out
}
