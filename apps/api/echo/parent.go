package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/paathshala/backend/core/parent"
	"github.com/paathshala/backend/core/user"
)

type parentApi struct {
	svc parent.ServiceInterface
}

func registerParentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := parentApi{svc: deps.ParentSvc}

	pg := g.Group("/parents", jwt)
	admin := roleMiddleware(deps.UserSvc, user.RoleAdmin)
	staff := roleMiddleware(deps.UserSvc, user.RoleAdmin, user.RoleTeacher)

	pg.POST("", api.create, admin)
	pg.GET("", api.query, staff)
	pg.GET("/:id", api.retrieve, staff)
	pg.PUT("/:id", api.update, admin)
	pg.DELETE("/:id", api.destroy, admin)
}

func (api *parentApi) create(ctx echo.Context) error {
	var data parent.NewParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewParent")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	par, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating parent")
	}
	return ctx.JSON(http.StatusCreated, par)
}

func (api *parentApi) query(ctx echo.Context) error {
	parents, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying parents")
	}
	if parents == nil {
		parents = []parent.Parent{}
	}
	return ctx.JSON(http.StatusOK, parents)
}

func (api *parentApi) retrieve(ctx echo.Context) error {
	par, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting parent")
	}
	return ctx.JSON(http.StatusOK, par)
}

func (api *parentApi) update(ctx echo.Context) error {
	var data parent.UpdateParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateParent")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	par, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating parent")
	}
	return ctx.JSON(http.StatusOK, par)
}

func (api *parentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting parent")
	}
	return ctx.NoContent(http.StatusNoContent)
}
