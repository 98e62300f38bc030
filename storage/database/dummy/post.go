package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/post"
)

type postRepository struct {
	db *DB
}

var _ post.Repository = (*postRepository)(nil) // interface compliance check

func NewPostRepository(db *DB) *postRepository {
	return &postRepository{db: db}
}

func (repo *postRepository) CreatePost(ctx context.Context, pst post.Post, exec ...core.DBExecutor) (post.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	pst.ID = uuid.New().String()
	repo.db.posts[pst.ID] = &pst
	return pst, nil
}

func (repo *postRepository) GetPost(ctx context.Context, filter post.GetFilter, exec ...core.DBExecutor) (post.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if pst, ok := repo.db.posts[filter.ID]; ok {
		return *pst, nil
	}
	return post.Post{}, post.ErrNotFound
}

func (repo *postRepository) QueryPosts(ctx context.Context, exec ...core.DBExecutor) ([]post.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	posts := make([]post.Post, 0, len(repo.db.posts))
	for _, pst := range repo.db.posts {
		posts = append(posts, *pst)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (repo *postRepository) UpdatePost(ctx context.Context, pst post.Post, exec ...core.DBExecutor) (post.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.posts[pst.ID]; !ok {
		return post.Post{}, post.ErrNotFound
	}
	repo.db.posts[pst.ID] = &pst
	return pst, nil
}

func (repo *postRepository) DeletePostsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.posts, id)
	}
	return nil
}

// comments

func (repo *postRepository) CreateComment(ctx context.Context, cmt post.Comment, exec ...core.DBExecutor) (post.Comment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cmt.ID = uuid.New().String()
	repo.db.comments[cmt.ID] = &cmt
	return cmt, nil
}

func (repo *postRepository) GetComment(ctx context.Context, filter post.GetFilter, exec ...core.DBExecutor) (post.Comment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cmt, ok := repo.db.comments[filter.ID]; ok {
		return *cmt, nil
	}
	return post.Comment{}, post.ErrCommentNotFound
}

func (repo *postRepository) QueryCommentsByPost(ctx context.Context, postID string, exec ...core.DBExecutor) ([]post.Comment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var comments []post.Comment
	for _, cmt := range repo.db.comments {
		if cmt.PostID == postID {
			comments = append(comments, *cmt)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

func (repo *postRepository) UpdateComment(ctx context.Context, cmt post.Comment, exec ...core.DBExecutor) (post.Comment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.comments[cmt.ID]; !ok {
		return post.Comment{}, post.ErrCommentNotFound
	}
	repo.db.comments[cmt.ID] = &cmt
	return cmt, nil
}

func (repo *postRepository) DeleteCommentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.comments, id)
	}
	return nil
}
