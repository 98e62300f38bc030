package teacher

import (
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/user"
)

type (
	// Teacher is a staff member's profile, linked one-to-one to a login
	// identity via UserID.
	Teacher struct {
		ID            string     `json:"id"`
		UserID        string     `json:"user_id"`
		User          *user.User `json:"user,omitempty"`
		Qualification string     `json:"qualification"`
		Experience    string     `json:"experience"`
		CreatedAt     time.Time  `json:"created_at"` // UTC
		UpdatedAt     time.Time  `json:"updated_at"` // UTC
	}

	NewTeacher struct {
		FirstName     string `json:"first_name" validate:"required"`
		LastName      string `json:"last_name" validate:"required"`
		Qualification string `json:"qualification" validate:"required"`
		Experience    string `json:"experience" validate:"required"`
	}

	UpdateTeacher struct {
		Qualification string `json:"qualification" validate:"omitempty"`
		Experience    string `json:"experience" validate:"omitempty"`
	}

	GetFilter struct {
		ID     string
		UserID string
	}
)

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.Qualification = core.CleanString(nt.Qualification)
	nt.Experience = core.CleanString(nt.Experience)
	return validate.Struct(nt)
}

func (ut *UpdateTeacher) Validate(validate *validator.Validate) error {
	ut.Qualification = core.CleanString(ut.Qualification)
	ut.Experience = core.CleanString(ut.Experience)
	return validate.Struct(ut)
}
