package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/post"
	"github.com/paathshala/backend/core/user"
)

type postRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	AuthorID  string    `db:"author_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r postRow) toPost() post.Post {
	return post.Post{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		AuthorID:  r.AuthorID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type commentRow struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	Content   string    `db:"content"`
	AuthorID  string    `db:"author_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r commentRow) toComment() post.Comment {
	return post.Comment{
		ID:        r.ID,
		PostID:    r.PostID,
		Content:   r.Content,
		AuthorID:  r.AuthorID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type postRepository struct {
	db      core.DB
	usrRepo *userRepository
}

var _ post.Repository = (*postRepository)(nil) // interface compliance check

func NewPostRepository(db core.DB, usrRepo *userRepository) *postRepository {
	return &postRepository{db: db, usrRepo: usrRepo}
}

func (repo postRepository) CreatePost(ctx context.Context, pst post.Post, exec ...core.DBExecutor) (post.Post, error) {
	pst.ID = uuid.New().String()
	row := postRow{
		ID:        pst.ID,
		Title:     pst.Title,
		Content:   pst.Content,
		AuthorID:  pst.AuthorID,
		CreatedAt: pst.CreatedAt.UTC(),
		UpdatedAt: pst.UpdatedAt.UTC(),
	}

	const query = `
		INSERT INTO post (id, title, content, author_id, created_at, updated_at)
		VALUES (:id, :title, :content, :author_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row); err != nil {
		return post.Post{}, errors.Wrap(err, "inserting post")
	}
	return row.toPost(), nil
}

func (repo postRepository) GetPost(ctx context.Context, filter post.GetFilter, exec ...core.DBExecutor) (post.Post, error) {
	exe := getExec(repo.db, exec)

	if _, err := uuid.Parse(filter.ID); err != nil {
		return post.Post{}, post.ErrNotFound
	}
	var row postRow
	if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM post WHERE id = ?`), filter.ID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, errors.Wrap(err, "finding post by ID")
	}

	pst := row.toPost()
	usr, err := repo.usrRepo.GetUser(ctx, user.GetFilter{ID: pst.AuthorID}, exec...)
	if err == nil {
		pst.Author = &usr
	}
	return pst, nil
}

func (repo postRepository) QueryPosts(ctx context.Context, exec ...core.DBExecutor) ([]post.Post, error) {
	exe := getExec(repo.db, exec)

	var rows []postRow
	if err := exe.SelectContext(ctx, &rows, `SELECT * FROM post ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying posts")
	}
	posts := make([]post.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toPost())
	}
	return posts, nil
}

func (repo postRepository) UpdatePost(ctx context.Context, pst post.Post, exec ...core.DBExecutor) (post.Post, error) {
	row := postRow{
		ID:        pst.ID,
		Title:     pst.Title,
		Content:   pst.Content,
		UpdatedAt: pst.UpdatedAt.UTC(),
	}

	const query = `UPDATE post SET title = :title, content = :content, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row)
	if err != nil {
		return post.Post{}, errors.Wrap(err, "updating post")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return post.Post{}, post.ErrNotFound
	}
	return pst, nil
}

func (repo postRepository) DeletePostsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query, args, err := sqlx.In(`DELETE FROM post WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting posts")
	}
	return nil
}

// comments

func (repo postRepository) CreateComment(ctx context.Context, cmt post.Comment, exec ...core.DBExecutor) (post.Comment, error) {
	cmt.ID = uuid.New().String()
	row := commentRow{
		ID:        cmt.ID,
		PostID:    cmt.PostID,
		Content:   cmt.Content,
		AuthorID:  cmt.AuthorID,
		CreatedAt: cmt.CreatedAt.UTC(),
		UpdatedAt: cmt.UpdatedAt.UTC(),
	}

	const query = `
		INSERT INTO comment (id, post_id, content, author_id, created_at, updated_at)
		VALUES (:id, :post_id, :content, :author_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row); err != nil {
		if constraint, ok := isForeignKeyViolation(err); ok && constraint == "comment_post_id_fkey" {
			return post.Comment{}, core.NewNotFoundError("post", cmt.PostID)
		}
		return post.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return row.toComment(), nil
}

func (repo postRepository) GetComment(ctx context.Context, filter post.GetFilter, exec ...core.DBExecutor) (post.Comment, error) {
	exe := getExec(repo.db, exec)

	if _, err := uuid.Parse(filter.ID); err != nil {
		return post.Comment{}, post.ErrCommentNotFound
	}
	var row commentRow
	if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM comment WHERE id = ?`), filter.ID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return post.Comment{}, post.ErrCommentNotFound
		}
		return post.Comment{}, errors.Wrap(err, "finding comment by ID")
	}
	return row.toComment(), nil
}

func (repo postRepository) QueryCommentsByPost(ctx context.Context, postID string, exec ...core.DBExecutor) ([]post.Comment, error) {
	exe := getExec(repo.db, exec)

	var rows []commentRow
	if err := exe.SelectContext(ctx, &rows, exe.Rebind(`SELECT * FROM comment WHERE post_id = ? ORDER BY created_at`), postID); err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}
	comments := make([]post.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.toComment())
	}
	return comments, nil
}

func (repo postRepository) UpdateComment(ctx context.Context, cmt post.Comment, exec ...core.DBExecutor) (post.Comment, error) {
	row := commentRow{
		ID:        cmt.ID,
		Content:   cmt.Content,
		UpdatedAt: cmt.UpdatedAt.UTC(),
	}

	const query = `UPDATE comment SET content = :content, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row)
	if err != nil {
		return post.Comment{}, errors.Wrap(err, "updating comment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return post.Comment{}, post.ErrCommentNotFound
	}
	return cmt, nil
}

func (repo postRepository) DeleteCommentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query, args, err := sqlx.In(`DELETE FROM comment WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting comments")
	}
	return nil
}
