package attendance

import (
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/student"
)

// Status is a single day's attendance outcome.
type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusLate    Status = "LATE"
)

var AllStatuses = []Status{StatusPresent, StatusAbsent, StatusLate}

func (s Status) Valid() bool {
	for _, status := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type (
	// Record is one student's attendance for one date, taken by the user
	// identified by TakenByID.
	Record struct {
		ID        string           `json:"id"`
		StudentID string           `json:"student_id"`
		Student   *student.Student `json:"student,omitempty"`
		Date      time.Time        `json:"date"` // UTC, date precision
		Status    Status           `json:"status"`
		Remarks   null.String      `json:"remarks"`
		TakenByID string           `json:"taken_by_id"`
		CreatedAt time.Time        `json:"created_at"` // UTC
		UpdatedAt time.Time        `json:"updated_at"` // UTC
	}

	NewRecord struct {
		StudentID string    `json:"student_id" validate:"required,uuid4"`
		Date      time.Time `json:"date" validate:"required"`
		Status    Status    `json:"status" validate:"required,attendancestatus"`
		Remarks   string    `json:"remarks"`
	}

	UpdateRecord struct {
		Status  Status `json:"status" validate:"required,attendancestatus"`
		Remarks string `json:"remarks"`
	}

	QueryFilter struct {
		StudentID string    `query:"student_id"`
		Date      time.Time `query:"date"`
		Status    Status    `query:"status"`
	}

	GetFilter struct {
		ID string
	}
)

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.Remarks = core.CleanString(nr.Remarks)
	return validate.Struct(nr)
}

func (ur *UpdateRecord) Validate(validate *validator.Validate) error {
	ur.Remarks = core.CleanString(ur.Remarks)
	return validate.Struct(ur)
}

func (f QueryFilter) IsEmpty() bool {
	return f == QueryFilter{}
}
