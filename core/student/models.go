package student

import (
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/user"
)

type (
	// Student is an enrolled learner's profile, linked one-to-one to a login
	// identity via UserID.
	Student struct {
		ID         string      `json:"id"`
		UserID     string      `json:"user_id"`
		User       *user.User  `json:"user,omitempty"`
		Grade      string      `json:"grade"`
		Section    string      `json:"section"`
		RollNumber string      `json:"roll_number"`
		ParentID   null.String `json:"parent_id"`
		CreatedAt  time.Time   `json:"created_at"` // UTC
		UpdatedAt  time.Time   `json:"updated_at"` // UTC
	}

	NewStudent struct {
		FirstName  string `json:"first_name" validate:"required"`
		LastName   string `json:"last_name" validate:"required"`
		Grade      string `json:"grade" validate:"required"`
		Section    string `json:"section" validate:"required"`
		RollNumber string `json:"roll_number" validate:"required,alphanum"`
		ParentID   string `json:"parent_id" validate:"omitempty,uuid4"`
	}

	UpdateStudent struct {
		Grade    string `json:"grade" validate:"omitempty"`
		Section  string `json:"section" validate:"omitempty"`
		ParentID string `json:"parent_id" validate:"omitempty,uuid4"`
	}

	QueryFilter struct {
		Grade    string `query:"grade"`
		Section  string `query:"section"`
		ParentID string `query:"parent_id"`
	}

	GetFilter struct {
		ID         string
		UserID     string
		RollNumber string
	}
)

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Grade = core.CleanString(ns.Grade)
	ns.Section = core.CleanString(ns.Section)
	ns.RollNumber = core.CleanString(ns.RollNumber)
	ns.ParentID = core.CleanString(ns.ParentID)
	return validate.Struct(ns)
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Grade = core.CleanString(us.Grade)
	us.Section = core.CleanString(us.Section)
	us.ParentID = core.CleanString(us.ParentID)
	return validate.Struct(us)
}

func (f QueryFilter) IsEmpty() bool {
	return f == QueryFilter{}
}
