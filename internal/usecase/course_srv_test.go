package usecase

import (
	"context"
	"testing"

	"learnx/internal/data/entity"
	"learnx/internal/dto/request"
	"learnx/internal/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (e *testEnv) courseService() CourseService {
	return NewCourseService(e.repo, zap.NewNop())
}

func TestCreateCourse(t *testing.T) {
	env := newTestEnv()
	svc := env.courseService()
	admin := env.seedUser(entity.RoleAdmin)

	course, err := svc.Create(context.Background(), true, admin.ID, &request.CreateCourseRequest{
		Title:       "Database Internals",
		Description: "Storage engines and query planning",
		Instructor:  "K. Rao",
		Category:    "Computer Science",
		Level:       "Graduate",
		Price:       899,
	})
	require.NoError(t, err)

	assert.Equal(t, "Database Internals", course.Title)
	assert.False(t, course.Free)

	loaded, err := svc.GetByID(context.Background(), uuid.MustParse(course.ID))
	require.NoError(t, err)
	assert.Equal(t, 899.0, loaded.Price)
}

func TestCreateCourseRequiresAdmin(t *testing.T) {
	env := newTestEnv()
	svc := env.courseService()
	user := env.seedUser(entity.RoleStudent)

	_, err := svc.Create(context.Background(), false, user.ID, &request.CreateCourseRequest{
		Title:       "Database Internals",
		Description: "Storage engines and query planning",
		Instructor:  "K. Rao",
		Category:    "Computer Science",
	})
	require.Error(t, err)
	assert.Equal(t, errs.Unauthorized, errs.KindOf(err))
}

func TestUpdateCoursePartial(t *testing.T) {
	env := newTestEnv()
	svc := env.courseService()
	course := env.seedCourse(499)

	newPrice := 0.0
	updated, err := svc.Update(context.Background(), true, course.ID, &request.UpdateCourseRequest{
		Price: &newPrice,
	})
	require.NoError(t, err)

	// Only the price changed; the course is now free.
	assert.Equal(t, course.Title, updated.Title)
	assert.True(t, updated.Free)
}

func TestDeleteCourse(t *testing.T) {
	env := newTestEnv()
	svc := env.courseService()
	course := env.seedCourse(499)

	require.NoError(t, svc.Delete(context.Background(), true, course.ID))

	_, err := svc.GetByID(context.Background(), course.ID)
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestGetAllCourses(t *testing.T) {
	env := newTestEnv()
	svc := env.courseService()
	env.seedCourse(0)
	env.seedCourse(499)
	env.seedCourse(899)

	page, err := svc.GetAll(context.Background(), &request.PaginatedRequest{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
}
