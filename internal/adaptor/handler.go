package adaptor

import (
	"net/http"

	"learnx/internal/errs"
	"learnx/internal/usecase"
	"learnx/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	Course  *CourseHandler
	Payment *PaymentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Course:  NewCourseHandler(service.Course, log),
		Payment: NewPaymentHandler(service.Payment, service.Access, log),
	}
}

// respondServiceError maps an error kind to an HTTP status. Unknown kinds
// are reported as internal errors with a generic message.
func respondServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	kind := errs.KindOf(err)

	switch kind {
	case errs.NotFound:
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())
	case errs.Conflict:
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())
	case errs.InvalidAmount:
		log.Warn(operation+" failed - amount mismatch", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)
	case errs.IllegalTransition:
		log.Warn(operation+" failed - illegal transition", zap.Error(err))
		utils.ResponseUnprocessable(w, err.Error())
	case errs.Unauthorized:
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())
	case errs.Invalid:
		log.Warn(operation+" failed - invalid input", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)
	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "internal server error")
	}
}
