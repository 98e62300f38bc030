package parent

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/user"
)

// Parent is the domain profile extending a PARENT-role user.
type Parent struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	User      *user.User `json:"user,omitempty"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	CreatedAt time.Time  `json:"created_at"` // UTC
	UpdatedAt time.Time  `json:"updated_at"` // UTC
}

// NewParent contains information needed to provision a parent account.
// The login identity is derived server-side; no credentials are accepted.
type NewParent struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
}

func (np *NewParent) Validate(validate *validator.Validate) error {
	np.FirstName = core.CleanString(np.FirstName)
	np.LastName = core.CleanString(np.LastName)
	np.Phone = core.CleanString(np.Phone)
	np.Address = core.CleanString(np.Address)
	return validate.Struct(np)
}

type UpdateParent struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (up *UpdateParent) Validate(validate *validator.Validate) error {
	up.Phone = core.CleanString(up.Phone)
	up.Address = core.CleanString(up.Address)
	return validate.Struct(up)
}

// GetFilter selects a single Parent by exactly one of its fields.
type GetFilter struct {
	ID     string
	UserID string
}
