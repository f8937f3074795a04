package repository

import (
	"context"
	"fmt"

	"learnx/internal/data/entity"
	"learnx/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// CourseRepository is the course provider contract: the payment core only
// ever reads {exists, price, title} through FindByID.
type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Course, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type courseRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCourseRepository(db database.PgxIface, log *zap.Logger) CourseRepository {
	return &courseRepository{
		db:  db,
		log: log.With(zap.String("repository", "course")),
	}
}

const courseColumns = `id, title, short_description, description, instructor,
	category, level, price, thumbnail, created_by, created_at, updated_at`

func scanCourse(row pgx.Row) (*entity.Course, error) {
	var c entity.Course
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.ShortDescription,
		&c.Description,
		&c.Instructor,
		&c.Category,
		&c.Level,
		&c.Price,
		&c.Thumbnail,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	query := `
		INSERT INTO courses (` + courseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		course.ID,
		course.Title,
		course.ShortDescription,
		course.Description,
		course.Instructor,
		course.Category,
		course.Level,
		course.Price,
		course.Thumbnail,
		course.CreatedBy,
		course.CreatedAt,
		course.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create course",
			zap.Error(err),
			zap.String("title", course.Title),
		)
		return fmt.Errorf("create course %s: %w", course.Title, err)
	}

	return nil
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	course, err := scanCourse(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find course by ID",
			zap.Error(err),
			zap.String("course_id", id.String()),
		)
		return nil, fmt.Errorf("find course by ID %s: %w", id.String(), err)
	}

	return course, nil
}

func (r *courseRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list courses", zap.Error(err))
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []*entity.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course row: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course rows: %w", err)
	}

	return courses, nil
}

func (r *courseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count courses", zap.Error(err))
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return count, nil
}

func (r *courseRepository) Update(ctx context.Context, course *entity.Course) error {
	query := `
		UPDATE courses
		SET title = $2, short_description = $3, description = $4, instructor = $5,
		    category = $6, level = $7, price = $8, thumbnail = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		course.ID,
		course.Title,
		course.ShortDescription,
		course.Description,
		course.Instructor,
		course.Category,
		course.Level,
		course.Price,
		course.Thumbnail,
		course.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update course",
			zap.Error(err),
			zap.String("course_id", course.ID.String()),
		)
		return fmt.Errorf("update course %s: %w", course.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("course %s not found", course.ID.String())
	}

	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete course",
			zap.Error(err),
			zap.String("course_id", id.String()),
		)
		return fmt.Errorf("delete course %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("course %s not found", id.String())
	}

	r.log.Info("Course deleted", zap.String("course_id", id.String()))
	return nil
}
