package entity

import (
	"github.com/google/uuid"
)

type CourseLevel string

const (
	LevelUndergraduate CourseLevel = "Undergraduate"
	LevelGraduate      CourseLevel = "Graduate"
	LevelPostgraduate  CourseLevel = "Postgraduate"
)

type Course struct {
	Base
	Title            string      `db:"title"`
	ShortDescription string      `db:"short_description"`
	Description      string      `db:"description"`
	Instructor       string      `db:"instructor"`
	Category         string      `db:"category"`
	Level            CourseLevel `db:"level"`
	Price            float64     `db:"price"`
	Thumbnail        string      `db:"thumbnail"`
	CreatedBy        uuid.UUID   `db:"created_by"`
}

// Free reports whether course content is accessible without payment.
func (c *Course) Free() bool {
	return c.Price == 0
}
