package usecase

import (
	"context"
	"fmt"

	"learnx/internal/data/repository"
	"learnx/internal/dto/response"
	"learnx/internal/errs"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccessService decides whether a user may view a course's paid content.
// The decision is derived from payment records on every call, never cached.
type AccessService interface {
	Evaluate(ctx context.Context, userID, courseID uuid.UUID) (*response.AccessResponse, error)
}

type accessService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAccessService(repo *repository.Repository, log *zap.Logger) AccessService {
	return &accessService{
		repo: repo,
		log:  log.With(zap.String("service", "access")),
	}
}

func (s *accessService) Evaluate(ctx context.Context, userID, courseID uuid.UUID) (*response.AccessResponse, error) {
	course, err := s.repo.Course.FindByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, errs.NewNotFoundError("course not found")
	}

	if course.Free() {
		return &response.AccessResponse{
			HasAccess: true,
			Reason:    response.AccessReasonFreeCourse,
		}, nil
	}

	completed, err := s.repo.Payment.FindCompletedByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check completed payment: %w", err)
	}
	if completed != nil && completed.VerifiedByAdmin {
		return &response.AccessResponse{
			HasAccess:     true,
			Reason:        response.AccessReasonPaymentVerified,
			PaymentStatus: completed.Status,
			TransactionID: completed.TransactionID,
		}, nil
	}

	open, err := s.repo.Payment.FindOpenByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check open payment: %w", err)
	}
	if open != nil {
		return &response.AccessResponse{
			HasAccess:     false,
			Reason:        response.AccessReasonPaymentPending,
			PaymentStatus: open.Status,
			TransactionID: open.TransactionID,
		}, nil
	}

	// A failed record does not block a fresh attempt; it falls through here.
	return &response.AccessResponse{
		HasAccess: false,
		Reason:    response.AccessReasonPaymentRequired,
	}, nil
}
