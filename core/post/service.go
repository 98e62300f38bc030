package post

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/user"
)

var (
	ErrNotFound        = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

type (
	Repository interface {
		CreatePost(ctx context.Context, pst Post, exec ...core.DBExecutor) (Post, error)
		GetPost(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Post, error)
		QueryPosts(ctx context.Context, exec ...core.DBExecutor) ([]Post, error)
		UpdatePost(ctx context.Context, pst Post, exec ...core.DBExecutor) (Post, error)
		DeletePostsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error

		CreateComment(ctx context.Context, cmt Comment, exec ...core.DBExecutor) (Comment, error)
		GetComment(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Comment, error)
		QueryCommentsByPost(ctx context.Context, postID string, exec ...core.DBExecutor) ([]Comment, error)
		UpdateComment(ctx context.Context, cmt Comment, exec ...core.DBExecutor) (Comment, error)
		DeleteCommentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(np NewPost, actor user.User) (Post, error)
		QueryAll() ([]Post, error)
		GetByID(id string) (Post, error)
		Update(id string, up UpdatePost, actor user.User) (Post, error)
		Delete(actor user.User, ids ...string) error

		AddComment(postID string, nc NewComment, actor user.User) (Comment, error)
		QueryComments(postID string) ([]Comment, error)
		UpdateComment(id string, uc UpdateComment, actor user.User) (Comment, error)
		DeleteComment(id string, actor user.User) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) ServiceInterface {
	return &service{repo: repo}
}

func (svc *service) Create(np NewPost, actor user.User) (Post, error) {
	now := time.Now().UTC()
	return svc.repo.CreatePost(context.Background(), Post{
		Title:     np.Title,
		Content:   np.Content,
		AuthorID:  actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryAll() ([]Post, error) {
	return svc.repo.QueryPosts(context.Background())
}

func (svc *service) GetByID(id string) (Post, error) {
	return svc.repo.GetPost(context.Background(), GetFilter{ID: id})
}

// Update lets only the post's author change it; admins cannot edit someone
// else's words, they can only remove them.
func (svc *service) Update(id string, up UpdatePost, actor user.User) (Post, error) {
	ctx := context.Background()

	pst, err := svc.repo.GetPost(ctx, GetFilter{ID: id})
	if err != nil {
		return Post{}, err
	}
	if err := user.CheckOwnership(pst.AuthorID, actor); err != nil {
		return Post{}, err
	}
	if up.Title != "" {
		pst.Title = up.Title
	}
	if up.Content != "" {
		pst.Content = up.Content
	}
	pst.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePost(ctx, pst)
}

// Delete lets the posts' author or an admin remove them.
func (svc *service) Delete(actor user.User, ids ...string) error {
	ctx := context.Background()

	for _, id := range ids {
		pst, err := svc.repo.GetPost(ctx, GetFilter{ID: id})
		if err != nil {
			return err
		}
		if err := user.CheckOwnership(pst.AuthorID, actor, user.RoleAdmin); err != nil {
			return err
		}
	}
	return svc.repo.DeletePostsByID(ctx, ids)
}

func (svc *service) AddComment(postID string, nc NewComment, actor user.User) (Comment, error) {
	ctx := context.Background()

	if _, err := svc.repo.GetPost(ctx, GetFilter{ID: postID}); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Comment{}, core.NewNotFoundError("post", postID)
		}
		return Comment{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateComment(ctx, Comment{
		PostID:    postID,
		Content:   nc.Content,
		AuthorID:  actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryComments(postID string) ([]Comment, error) {
	return svc.repo.QueryCommentsByPost(context.Background(), postID)
}

// UpdateComment lets only the comment's author change it.
func (svc *service) UpdateComment(id string, uc UpdateComment, actor user.User) (Comment, error) {
	ctx := context.Background()

	cmt, err := svc.repo.GetComment(ctx, GetFilter{ID: id})
	if err != nil {
		return Comment{}, err
	}
	if err := user.CheckOwnership(cmt.AuthorID, actor); err != nil {
		return Comment{}, err
	}
	cmt.Content = uc.Content
	cmt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateComment(ctx, cmt)
}

// DeleteComment lets the comment's author or an admin remove it.
func (svc *service) DeleteComment(id string, actor user.User) error {
	ctx := context.Background()

	cmt, err := svc.repo.GetComment(ctx, GetFilter{ID: id})
	if err != nil {
		return err
	}
	if err := user.CheckOwnership(cmt.AuthorID, actor, user.RoleAdmin); err != nil {
		return err
	}
	return svc.repo.DeleteCommentsByID(ctx, []string{id})
}
