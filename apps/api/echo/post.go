package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/paathshala/backend/core/post"
	"github.com/paathshala/backend/core/user"
)

type postApi struct {
	svc    post.ServiceInterface
	usrSvc user.ServiceInterface
}

func registerPostAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := postApi{svc: deps.PostSvc, usrSvc: deps.UserSvc}
	staff := roleMiddleware(api.usrSvc, user.RoleAdmin, user.RoleTeacher)

	pg := g.Group("/posts", jwt)
	pg.POST("", api.create, staff)
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update)
	pg.DELETE("/:id", api.destroy)

	pg.GET("/:id/comments", api.queryComments)
	pg.POST("/:id/comments", api.addComment)

	cg := g.Group("/comments", jwt)
	cg.PUT("/:id", api.updateComment)
	cg.DELETE("/:id", api.destroyComment)
}

func (api *postApi) create(ctx echo.Context) error {
	var data post.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	pst, err := api.svc.Create(data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return ctx.JSON(http.StatusCreated, pst)
}

func (api *postApi) query(ctx echo.Context) error {
	posts, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying posts")
	}
	if posts == nil {
		posts = []post.Post{}
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *postApi) retrieve(ctx echo.Context) error {
	pst, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting post")
	}
	return ctx.JSON(http.StatusOK, pst)
}

// update is author-only; the service enforces it. Admins cannot edit someone
// else's words, they can only remove them.
func (api *postApi) update(ctx echo.Context) error {
	var data post.UpdatePost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePost")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	pst, err := api.svc.Update(ctx.Param("id"), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "updating post")
	}
	return ctx.JSON(http.StatusOK, pst)
}

func (api *postApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.Delete(ctxUsr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting post")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Comments

func (api *postApi) queryComments(ctx echo.Context) error {
	comments, err := api.svc.QueryComments(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying comments")
	}
	if comments == nil {
		comments = []post.Comment{}
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *postApi) addComment(ctx echo.Context) error {
	var data post.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	cmt, err := api.svc.AddComment(ctx.Param("id"), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "adding comment")
	}
	return ctx.JSON(http.StatusCreated, cmt)
}

func (api *postApi) updateComment(ctx echo.Context) error {
	var data post.UpdateComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateComment")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	cmt, err := api.svc.UpdateComment(ctx.Param("id"), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "updating comment")
	}
	return ctx.JSON(http.StatusOK, cmt)
}

func (api *postApi) destroyComment(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.DeleteComment(ctx.Param("id"), ctxUsr); err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
