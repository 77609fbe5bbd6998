package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)

	// Email verification
	VerifyEmail(w http.ResponseWriter, r *http.Request)
	ResendVerification(w http.ResponseWriter, r *http.Request)
}

type ProfileHandler interface {
	Update(w http.ResponseWriter, r *http.Request)
}

type ImageHandler interface {
	Serve(w http.ResponseWriter, r *http.Request)
}

type AdminUsersHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	SetRole(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type CatalogHandler interface {
	// Admin
	ListTopics(w http.ResponseWriter, r *http.Request)
	CreateTopic(w http.ResponseWriter, r *http.Request)
	GetTopic(w http.ResponseWriter, r *http.Request)
	UpdateTopic(w http.ResponseWriter, r *http.Request)
	DeleteTopic(w http.ResponseWriter, r *http.Request)
	ListCourses(w http.ResponseWriter, r *http.Request)
	CreateCourse(w http.ResponseWriter, r *http.Request)
	GetCourse(w http.ResponseWriter, r *http.Request)
	UpdateCourse(w http.ResponseWriter, r *http.Request)
	DeleteCourse(w http.ResponseWriter, r *http.Request)

	// Browse
	BrowseTopics(w http.ResponseWriter, r *http.Request)
	BrowseTopicCourses(w http.ResponseWriter, r *http.Request)
	BrowseCourse(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health     HealthHandler
	Auth       AuthHandler
	Profile    ProfileHandler
	Images     ImageHandler
	AdminUsers AdminUsersHandler
	Catalog    CatalogHandler

	// Global middleware, outermost first. Nil entries are skipped.
	Global []func(http.Handler) http.Handler

	AuthMW  func(http.Handler) http.Handler
	AdminMW func(http.Handler) http.Handler

	// Optional rate limits; nil disables.
	RLRegister func(http.Handler) http.Handler
	RLLogin    func(http.Handler) http.Handler
	RLVerify   func(http.Handler) http.Handler
	RLResend   func(http.Handler) http.Handler

	// Metrics serves /metrics; defaults to the prometheus default registry.
	Metrics http.Handler
}

func (d Deps) validate() error {
	switch {
	case d.Health == nil:
		return fmt.Errorf("nil Health handler")
	case d.Auth == nil:
		return fmt.Errorf("nil Auth handler")
	case d.Profile == nil:
		return fmt.Errorf("nil Profile handler")
	case d.Images == nil:
		return fmt.Errorf("nil Images handler")
	case d.AdminUsers == nil:
		return fmt.Errorf("nil AdminUsers handler")
	case d.Catalog == nil:
		return fmt.Errorf("nil Catalog handler")
	case d.AuthMW == nil:
		return fmt.Errorf("nil Auth middleware")
	case d.AdminMW == nil:
		return fmt.Errorf("nil Admin middleware")
	}
	return nil
}

func New(deps Deps) (http.Handler, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	metricsH := deps.Metrics
	if metricsH == nil {
		metricsH = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	for _, mw := range deps.Global {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metricsH)

	r.Route("/auth/v1", func(r chi.Router) {
		r.With(optional(deps.RLRegister)...).Post("/register", deps.Auth.Register)
		r.With(optional(deps.RLLogin)...).Post("/login", deps.Auth.Login)

		// --- Email verification ---
		r.With(optional(deps.RLVerify)...).Post("/verify-email", deps.Auth.VerifyEmail)
		r.With(optional(deps.RLResend)...).Post("/verify-email/resend", deps.Auth.ResendVerification)

		r.With(deps.AuthMW).Get("/me", deps.Auth.Me)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// photo keys are unguessable and served publicly
		r.Get("/images/{filename}", deps.Images.Serve)

		// --- Any authenticated role ---
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMW)

			r.Put("/user/profile", deps.Profile.Update)

			r.Get("/topics", deps.Catalog.BrowseTopics)
			r.Get("/topics/{id}/courses", deps.Catalog.BrowseTopicCourses)
			r.Get("/courses/{id}", deps.Catalog.BrowseCourse)
		})

		// --- Admin (privileged) ---
		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.AuthMW)
			r.Use(deps.AdminMW)

			r.Get("/users", deps.AdminUsers.List)
			r.Get("/users/{id}", deps.AdminUsers.Get)
			r.Put("/users/{id}/role", deps.AdminUsers.SetRole)
			r.Delete("/users/{id}", deps.AdminUsers.Delete)

			r.Get("/topics", deps.Catalog.ListTopics)
			r.Post("/topics", deps.Catalog.CreateTopic)
			r.Get("/topics/{id}", deps.Catalog.GetTopic)
			r.Put("/topics/{id}", deps.Catalog.UpdateTopic)
			r.Delete("/topics/{id}", deps.Catalog.DeleteTopic)

			r.Get("/courses", deps.Catalog.ListCourses)
			r.Post("/courses", deps.Catalog.CreateCourse)
			r.Get("/courses/{id}", deps.Catalog.GetCourse)
			r.Put("/courses/{id}", deps.Catalog.UpdateCourse)
			r.Delete("/courses/{id}", deps.Catalog.DeleteCourse)
		})
	})

	return r, nil
}

func optional(mws ...func(http.Handler) http.Handler) []func(http.Handler) http.Handler {
	out := make([]func(http.Handler) http.Handler, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}
