package usecase

import (
	"learnx/internal/data/repository"
	"learnx/pkg/events"
	"learnx/pkg/gateway"
	"learnx/pkg/notify"
	"learnx/pkg/utils"

	"go.uber.org/zap"
)

// Service bundles every use case behind one constructor for wiring.
type Service struct {
	Auth    AuthService
	Course  CourseService
	Payment PaymentService
	Access  AccessService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	gw *gateway.Client,
	notifier *notify.Notifier,
	publisher *events.Publisher,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:    NewAuthService(repo, config, log),
		Course:  NewCourseService(repo, log),
		Payment: NewPaymentService(repo, config, gw, notifier, publisher, log),
		Access:  NewAccessService(repo, log),
	}
}
