package post

import (
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/user"
)

type (
	// Post is a notice published to the school feed; AuthorID is the user
	// that wrote it.
	Post struct {
		ID        string     `json:"id"`
		Title     string     `json:"title"`
		Content   string     `json:"content"`
		AuthorID  string     `json:"author_id"`
		Author    *user.User `json:"author,omitempty"`
		CreatedAt time.Time  `json:"created_at"` // UTC
		UpdatedAt time.Time  `json:"updated_at"` // UTC
	}

	NewPost struct {
		Title   string `json:"title" validate:"required"`
		Content string `json:"content" validate:"required"`
	}

	UpdatePost struct {
		Title   string `json:"title" validate:"omitempty"`
		Content string `json:"content" validate:"omitempty"`
	}

	// Comment is a reply on a post; AuthorID is the user that wrote it.
	Comment struct {
		ID        string     `json:"id"`
		PostID    string     `json:"post_id"`
		Content   string     `json:"content"`
		AuthorID  string     `json:"author_id"`
		Author    *user.User `json:"author,omitempty"`
		CreatedAt time.Time  `json:"created_at"` // UTC
		UpdatedAt time.Time  `json:"updated_at"` // UTC
	}

	NewComment struct {
		Content string `json:"content" validate:"required"`
	}

	UpdateComment struct {
		Content string `json:"content" validate:"required"`
	}

	GetFilter struct {
		ID string
	}
)

func (np *NewPost) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	return validate.Struct(np)
}

func (up *UpdatePost) Validate(validate *validator.Validate) error {
	up.Title = core.CleanString(up.Title)
	up.Content = core.CleanString(up.Content)
	return validate.Struct(up)
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Content = core.CleanString(nc.Content)
	return validate.Struct(nc)
}

func (uc *UpdateComment) Validate(validate *validator.Validate) error {
	uc.Content = core.CleanString(uc.Content)
	return validate.Struct(uc)
}
