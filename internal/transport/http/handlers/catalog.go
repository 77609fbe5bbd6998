package http_handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/coursehub/internal/application/catalog"
	"github.com/baechuer/coursehub/internal/transport/http/dto"
	"github.com/baechuer/coursehub/internal/transport/http/response"
)

// CatalogHandler serves both the admin catalog routes and the public browse
// routes. Role checks sit in the router.
type CatalogHandler struct {
	svc *catalog.Service
}

func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// -------- admin: topics --------

// GET /api/v1/admin/topics
func (h *CatalogHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	ts, err := h.svc.ListTopics(r.Context())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewTopicViews(ts))
}

// POST /api/v1/admin/topics
func (h *CatalogHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var req dto.TopicRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	t, err := h.svc.CreateTopic(r.Context(), topicInput(req))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.Created(w, dto.NewTopicView(t))
}

// GET /api/v1/admin/topics/{id}
func (h *CatalogHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetTopic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.TopicDetailView{
		TopicView: dto.NewTopicView(d.Topic),
		Courses:   dto.NewCourseViews(d.Courses),
	})
}

// PUT /api/v1/admin/topics/{id}
func (h *CatalogHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	var req dto.TopicRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	t, err := h.svc.UpdateTopic(r.Context(), chi.URLParam(r, "id"), topicInput(req))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewTopicView(t))
}

// DELETE /api/v1/admin/topics/{id}
func (h *CatalogHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTopic(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

// -------- admin: courses --------

// GET /api/v1/admin/courses?topicId=
func (h *CatalogHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.ListCourses(r.Context(), r.URL.Query().Get("topicId"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewCourseViews(cs))
}

// POST /api/v1/admin/courses
func (h *CatalogHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req dto.CourseRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	c, err := h.svc.CreateCourse(r.Context(), courseInput(req))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.Created(w, dto.NewCourseView(c, true))
}

// GET /api/v1/admin/courses/{id}
func (h *CatalogHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewCourseView(c, true))
}

// PUT /api/v1/admin/courses/{id}
func (h *CatalogHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req dto.CourseRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	c, err := h.svc.UpdateCourse(r.Context(), chi.URLParam(r, "id"), courseInput(req))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewCourseView(c, true))
}

// DELETE /api/v1/admin/courses/{id}
func (h *CatalogHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCourse(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

// -------- browse --------

// GET /api/v1/topics
func (h *CatalogHandler) BrowseTopics(w http.ResponseWriter, r *http.Request) {
	ts, err := h.svc.BrowseTopics(r.Context())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewTopicViews(ts))
}

// GET /api/v1/topics/{id}/courses
func (h *CatalogHandler) BrowseTopicCourses(w http.ResponseWriter, r *http.Request) {
	t, cs, err := h.svc.BrowseTopicCourses(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.TopicDetailView{
		TopicView: dto.NewTopicView(t),
		Courses:   dto.NewCourseViews(cs),
	})
}

// GET /api/v1/courses/{id}
func (h *CatalogHandler) BrowseCourse(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.BrowseCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewCourseView(c, true))
}

func topicInput(req dto.TopicRequest) catalog.TopicInput {
	return catalog.TopicInput{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
}

func courseInput(req dto.CourseRequest) catalog.CourseInput {
	return catalog.CourseInput{
		TopicID:     req.TopicID,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		IsActive:    req.IsActive,
	}
}
