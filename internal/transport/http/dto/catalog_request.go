package dto

// Title and content rules live in the catalog service; these only carry the body.

type TopicRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

type CourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
	TopicID     string `json:"topicId"`
	IsActive    *bool  `json:"isActive,omitempty"`
}
