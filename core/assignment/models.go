package assignment

import (
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/course"
	"github.com/paathshala/backend/core/student"
)

type (
	// Assignment is a piece of work set for a course; it is authored by the
	// course's teacher.
	Assignment struct {
		ID          string         `json:"id"`
		CourseID    string         `json:"course_id"`
		Course      *course.Course `json:"course,omitempty"`
		Title       string         `json:"title"`
		Description null.String    `json:"description"`
		DueDate     time.Time      `json:"due_date"` // UTC
		CreatedAt   time.Time      `json:"created_at"`
		UpdatedAt   time.Time      `json:"updated_at"`
	}

	NewAssignment struct {
		CourseID    string    `json:"course_id" validate:"required,uuid4"`
		Title       string    `json:"title" validate:"required"`
		Description string    `json:"description"`
		DueDate     time.Time `json:"due_date" validate:"required"`
	}

	UpdateAssignment struct {
		Title       string    `json:"title" validate:"omitempty"`
		Description string    `json:"description"`
		DueDate     time.Time `json:"due_date"`
	}

	// Grade records one student's mark for one assignment; the pair is unique.
	Grade struct {
		ID           string           `json:"id"`
		StudentID    string           `json:"student_id"`
		Student      *student.Student `json:"student,omitempty"`
		AssignmentID string           `json:"assignment_id"`
		Assignment   *Assignment      `json:"assignment,omitempty"`
		Score        float64          `json:"score"`
		Remarks      null.String      `json:"remarks"`
		CreatedAt    time.Time        `json:"created_at"` // UTC
		UpdatedAt    time.Time        `json:"updated_at"` // UTC
	}

	NewGrade struct {
		StudentID    string  `json:"student_id" validate:"required,uuid4"`
		AssignmentID string  `json:"assignment_id" validate:"required,uuid4"`
		Score        float64 `json:"score" validate:"min=0,max=100"`
		Remarks      string  `json:"remarks"`
	}

	GetFilter struct {
		ID string
	}
)

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	ua.Description = core.CleanString(ua.Description)
	return validate.Struct(ua)
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Remarks = core.CleanString(ng.Remarks)
	return validate.Struct(ng)
}
