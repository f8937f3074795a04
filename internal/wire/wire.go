// internal/wire/wire.go
package wire

import (
	"net/http"

	"learnx/internal/adaptor"
	"learnx/internal/data/repository"
	"learnx/internal/usecase"
	"learnx/pkg/events"
	"learnx/pkg/gateway"
	"learnx/pkg/middleware"
	"learnx/pkg/notify"
	"learnx/pkg/utils"

	"github.com/go-chi/chi/v5"
	libredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the wired router.
type App struct {
	Router *chi.Mux
}

// Wiring connects repositories, services and handlers into one router.
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	gw *gateway.Client,
	notifier *notify.Notifier,
	publisher *events.Publisher,
	rdb *libredis.Client,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, gw, notifier, publisher, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, rdb, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	rdb *libredis.Client,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireAuth(r, handler.Auth, repo, config, logger)
	wireCourse(r, handler.Course, repo, config, logger)
	wirePayment(r, handler.Payment, repo, config, rdb, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
