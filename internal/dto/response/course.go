package response

import (
	"time"

	"learnx/internal/data/entity"
)

type CourseResponse struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	ShortDescription string             `json:"short_description,omitempty"`
	Description      string             `json:"description"`
	Instructor       string             `json:"instructor"`
	Category         string             `json:"category"`
	Level            entity.CourseLevel `json:"level"`
	Price            float64            `json:"price"`
	Free             bool               `json:"free"`
	Thumbnail        string             `json:"thumbnail,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

func CourseToResponse(course *entity.Course) CourseResponse {
	return CourseResponse{
		ID:               course.ID.String(),
		Title:            course.Title,
		ShortDescription: course.ShortDescription,
		Description:      course.Description,
		Instructor:       course.Instructor,
		Category:         course.Category,
		Level:            course.Level,
		Price:            course.Price,
		Free:             course.Free(),
		Thumbnail:        course.Thumbnail,
		CreatedAt:        course.CreatedAt,
	}
}
