package wire

import (
	"learnx/internal/adaptor"
	"learnx/internal/data/repository"
	"learnx/pkg/middleware"
	"learnx/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCourse(
	r chi.Router,
	courseHandler *adaptor.CourseHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// The catalog is browsable without an account.
	r.Get("/api/courses", courseHandler.GetAll)
	r.Get("/api/courses/{id}", courseHandler.GetByID)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/courses", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Post("/", courseHandler.Create)
		r.Put("/{id}", courseHandler.Update)
		r.Delete("/{id}", courseHandler.Delete)
	})
}
