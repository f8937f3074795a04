package request

type CreateCourseRequest struct {
	Title            string  `json:"title" validate:"required,min=3,max=200"`
	ShortDescription string  `json:"short_description,omitempty" validate:"omitempty,max=300"`
	Description      string  `json:"description" validate:"required"`
	Instructor       string  `json:"instructor" validate:"required,max=100"`
	Category         string  `json:"category" validate:"required,max=100"`
	Level            string  `json:"level,omitempty" validate:"omitempty,oneof=Undergraduate Graduate Postgraduate"`
	Price            float64 `json:"price" validate:"min=0"`
	Thumbnail        string  `json:"thumbnail,omitempty" validate:"omitempty,url"`
}

type UpdateCourseRequest struct {
	Title            *string  `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	ShortDescription *string  `json:"short_description,omitempty" validate:"omitempty,max=300"`
	Description      *string  `json:"description,omitempty"`
	Instructor       *string  `json:"instructor,omitempty" validate:"omitempty,max=100"`
	Category         *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	Level            *string  `json:"level,omitempty" validate:"omitempty,oneof=Undergraduate Graduate Postgraduate"`
	Price            *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	Thumbnail        *string  `json:"thumbnail,omitempty" validate:"omitempty,url"`
}
