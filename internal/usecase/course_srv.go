package usecase

import (
	"context"
	"fmt"

	"learnx/internal/data/entity"
	"learnx/internal/data/repository"
	"learnx/internal/dto/request"
	"learnx/internal/dto/response"
	"learnx/internal/errs"
	"learnx/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CourseService interface {
	Create(ctx context.Context, isAdmin bool, createdBy uuid.UUID, req *request.CreateCourseRequest) (*response.CourseResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*response.CourseResponse, error)
	GetAll(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CourseResponse], error)
	Update(ctx context.Context, isAdmin bool, id uuid.UUID, req *request.UpdateCourseRequest) (*response.CourseResponse, error)
	Delete(ctx context.Context, isAdmin bool, id uuid.UUID) error
}

type courseService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewCourseService(repo *repository.Repository, log *zap.Logger) CourseService {
	return &courseService{
		repo: repo,
		log:  log.With(zap.String("service", "course")),
	}
}

func (s *courseService) Create(ctx context.Context, isAdmin bool, createdBy uuid.UUID, req *request.CreateCourseRequest) (*response.CourseResponse, error) {
	if !isAdmin {
		return nil, errs.NewUnauthorizedError("administrator capability required")
	}

	if errors := utils.ValidateStruct(req); len(errors) > 0 {
		s.log.Warn("Create course validation failed", zap.Any("errors", errors))
		return nil, errs.NewInvalidError("validation failed: " + utils.FormatValidationErrors(errors))
	}

	course := &entity.Course{
		Base:             entity.NewBase(),
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Instructor:       req.Instructor,
		Category:         req.Category,
		Level:            entity.CourseLevel(req.Level),
		Price:            req.Price,
		Thumbnail:        req.Thumbnail,
		CreatedBy:        createdBy,
	}

	if err := s.repo.Course.Create(ctx, course); err != nil {
		return nil, err
	}

	s.log.Info("Course created",
		zap.String("course_id", course.ID.String()),
		zap.String("title", course.Title),
		zap.Float64("price", course.Price),
	)

	resp := response.CourseToResponse(course)
	return &resp, nil
}

func (s *courseService) GetByID(ctx context.Context, id uuid.UUID) (*response.CourseResponse, error) {
	course, err := s.repo.Course.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, errs.NewNotFoundError("course not found")
	}

	resp := response.CourseToResponse(course)
	return &resp, nil
}

func (s *courseService) GetAll(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CourseResponse], error) {
	courses, err := s.repo.Course.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	total, err := s.repo.Course.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}

	responses := make([]response.CourseResponse, len(courses))
	for i, course := range courses {
		responses[i] = response.CourseToResponse(course)
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}

func (s *courseService) Update(ctx context.Context, isAdmin bool, id uuid.UUID, req *request.UpdateCourseRequest) (*response.CourseResponse, error) {
	if !isAdmin {
		return nil, errs.NewUnauthorizedError("administrator capability required")
	}

	if errors := utils.ValidateStruct(req); len(errors) > 0 {
		s.log.Warn("Update course validation failed", zap.Any("errors", errors))
		return nil, errs.NewInvalidError("validation failed: " + utils.FormatValidationErrors(errors))
	}

	course, err := s.repo.Course.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, errs.NewNotFoundError("course not found")
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.ShortDescription != nil {
		course.ShortDescription = *req.ShortDescription
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Instructor != nil {
		course.Instructor = *req.Instructor
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.Level != nil {
		course.Level = entity.CourseLevel(*req.Level)
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Thumbnail != nil {
		course.Thumbnail = *req.Thumbnail
	}

	if err := s.repo.Course.Update(ctx, course); err != nil {
		return nil, err
	}

	s.log.Info("Course updated", zap.String("course_id", course.ID.String()))

	resp := response.CourseToResponse(course)
	return &resp, nil
}

func (s *courseService) Delete(ctx context.Context, isAdmin bool, id uuid.UUID) error {
	if !isAdmin {
		return errs.NewUnauthorizedError("administrator capability required")
	}

	course, err := s.repo.Course.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return errs.NewNotFoundError("course not found")
	}

	if err := s.repo.Course.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("Course deleted", zap.String("course_id", id.String()))
	return nil
}
