package adaptor

import (
	"encoding/json"
	"net/http"

	"learnx/internal/data/entity"
	"learnx/internal/dto/request"
	"learnx/internal/usecase"
	"learnx/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CourseHandler struct {
	service usecase.CourseService
	log     *zap.Logger
}

func NewCourseHandler(service usecase.CourseService, log *zap.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		log:     log.With(zap.String("handler", "course")),
	}
}

func isAdminRequest(r *http.Request) bool {
	role, ok := utils.GetRoleFromContext(r.Context())
	return ok && role == string(entity.RoleAdmin)
}

// GetAll handles GET /api/courses (public)
func (h *CourseHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	courses, err := h.service.GetAll(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.log, err, "list courses")
		return
	}

	utils.ResponseSuccess(w, "success", courses)
}

// GetByID handles GET /api/courses/{id} (public)
func (h *CourseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid course ID", nil)
		return
	}

	course, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.log, err, "get course")
		return
	}

	utils.ResponseSuccess(w, "success", course)
}

// Create handles POST /api/admin/courses (admin only)
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	course, err := h.service.Create(r.Context(), isAdminRequest(r), userID, &req)
	if err != nil {
		respondServiceError(w, h.log, err, "create course")
		return
	}

	utils.ResponseCreated(w, "success", course)
}

// Update handles PUT /api/admin/courses/{id} (admin only)
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid course ID", nil)
		return
	}

	var req request.UpdateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	course, err := h.service.Update(r.Context(), isAdminRequest(r), id, &req)
	if err != nil {
		respondServiceError(w, h.log, err, "update course")
		return
	}

	utils.ResponseSuccess(w, "success", course)
}

// Delete handles DELETE /api/admin/courses/{id} (admin only)
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid course ID", nil)
		return
	}

	if err := h.service.Delete(r.Context(), isAdminRequest(r), id); err != nil {
		respondServiceError(w, h.log, err, "delete course")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
