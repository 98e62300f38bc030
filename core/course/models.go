package course

import (
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/teacher"
)

// EnrollmentStatus tracks a student's standing in a course.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentDropped   EnrollmentStatus = "DROPPED"
)

var AllEnrollmentStatuses = []EnrollmentStatus{EnrollmentActive, EnrollmentCompleted, EnrollmentDropped}

func (s EnrollmentStatus) Valid() bool {
	for _, status := range AllEnrollmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type (
	// Subject is a taught discipline with a unique short code, eg. "MATH101".
	Subject struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Code        string      `json:"code"`
		Description null.String `json:"description"`
		CreatedAt   time.Time   `json:"created_at"` // UTC
		UpdatedAt   time.Time   `json:"updated_at"` // UTC
	}

	NewSubject struct {
		Name        string `json:"name" validate:"required"`
		Code        string `json:"code" validate:"required,alphanum"`
		Description string `json:"description"`
	}

	// Course is a subject taught by one teacher to one grade/section.
	Course struct {
		ID        string           `json:"id"`
		Name      string           `json:"name"`
		SubjectID string           `json:"subject_id"`
		Subject   *Subject         `json:"subject,omitempty"`
		TeacherID string           `json:"teacher_id"`
		Teacher   *teacher.Teacher `json:"teacher,omitempty"`
		Grade     string           `json:"grade"`
		Section   string           `json:"section"`
		CreatedAt time.Time        `json:"created_at"` // UTC
		UpdatedAt time.Time        `json:"updated_at"` // UTC
	}

	NewCourse struct {
		Name      string `json:"name" validate:"required"`
		SubjectID string `json:"subject_id" validate:"required,uuid4"`
		TeacherID string `json:"teacher_id" validate:"required,uuid4"`
		Grade     string `json:"grade" validate:"required"`
		Section   string `json:"section" validate:"required"`
	}

	UpdateCourse struct {
		Name      string `json:"name" validate:"omitempty"`
		TeacherID string `json:"teacher_id" validate:"omitempty,uuid4"`
		Grade     string `json:"grade" validate:"omitempty"`
		Section   string `json:"section" validate:"omitempty"`
	}

	// Enrollment links one student to one course; the pair is unique.
	Enrollment struct {
		ID        string           `json:"id"`
		StudentID string           `json:"student_id"`
		Student   *student.Student `json:"student,omitempty"`
		CourseID  string           `json:"course_id"`
		Course    *Course          `json:"course,omitempty"`
		Status    EnrollmentStatus `json:"status"`
		CreatedAt time.Time        `json:"created_at"` // UTC
		UpdatedAt time.Time        `json:"updated_at"` // UTC
	}

	NewEnrollment struct {
		StudentID string `json:"student_id" validate:"required,uuid4"`
		CourseID  string `json:"course_id" validate:"required,uuid4"`
	}

	UpdateEnrollment struct {
		Status EnrollmentStatus `json:"status" validate:"required,enrollmentstatus"`
	}

	QueryFilter struct {
		SubjectID string `query:"subject_id"`
		TeacherID string `query:"teacher_id"`
		Grade     string `query:"grade"`
		Section   string `query:"section"`
	}

	GetFilter struct {
		ID string
	}
)

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = strings.ToUpper(core.CleanString(ns.Code))
	ns.Description = core.CleanString(ns.Description)
	return validate.Struct(ns)
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Grade = core.CleanString(nc.Grade)
	nc.Section = core.CleanString(nc.Section)
	return validate.Struct(nc)
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Grade = core.CleanString(uc.Grade)
	uc.Section = core.CleanString(uc.Section)
	return validate.Struct(uc)
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	return validate.Struct(ne)
}

func (ue *UpdateEnrollment) Validate(validate *validator.Validate) error {
	return validate.Struct(ue)
}

func (f QueryFilter) IsEmpty() bool {
	return f == QueryFilter{}
}
