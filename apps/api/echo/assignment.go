package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/assignment"
	"github.com/paathshala/backend/core/course"
	"github.com/paathshala/backend/core/user"
)

type assignmentApi struct {
	svc       assignment.ServiceInterface
	courseSvc course.ServiceInterface
	usrSvc    user.ServiceInterface
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := assignmentApi{svc: deps.AssignmentSvc, courseSvc: deps.CourseSvc, usrSvc: deps.UserSvc}
	staff := roleMiddleware(api.usrSvc, user.RoleAdmin, user.RoleTeacher)

	ag := g.Group("/assignments", jwt)
	ag.POST("", api.create, staff)
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update, staff)
	ag.DELETE("/:id", api.destroy, staff)

	ag.POST("/:id/grades", api.gradeStudent, staff)
	ag.GET("/:id/grades", api.queryGrades, staff)

	gg := g.Group("/grades", jwt)
	gg.DELETE("/:id", api.destroyGrade, staff)
}

// create requires the acting teacher to own the target course; admins may
// post to any course.
func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.courseSvc.CheckCourseOwnership(data.CourseID, ctxUsr); err != nil {
		return errors.Wrap(err, "checking course ownership")
	}

	asg, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *assignmentApi) query(ctx echo.Context) error {
	courseID := ctx.QueryParam("course_id")
	if courseID == "" {
		return core.NewValidationError(errors.New("course_id query parameter is required"))
	}

	assignments, err := api.svc.QueryByCourse(courseID)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assignments == nil {
		assignments = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	asg, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.CheckOwnership(ctx.Param("id"), ctxUsr); err != nil {
		return errors.Wrap(err, "checking assignment ownership")
	}

	var data assignment.UpdateAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err = data.Validate(validate); err != nil {
		return err
	}

	asg, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.CheckOwnership(ctx.Param("id"), ctxUsr); err != nil {
		return errors.Wrap(err, "checking assignment ownership")
	}

	if err = api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Grades

func (api *assignmentApi) gradeStudent(ctx echo.Context) error {
	var data assignment.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	data.AssignmentID = ctx.Param("id")
	if err := data.Validate(validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.CheckOwnership(data.AssignmentID, ctxUsr); err != nil {
		return errors.Wrap(err, "checking assignment ownership")
	}

	grd, err := api.svc.GradeStudent(data)
	if err != nil {
		return errors.Wrap(err, "grading student")
	}
	return ctx.JSON(http.StatusCreated, grd)
}

func (api *assignmentApi) queryGrades(ctx echo.Context) error {
	grades, err := api.svc.QueryGradesByAssignment(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	if grades == nil {
		grades = []assignment.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *assignmentApi) destroyGrade(ctx echo.Context) error {
	if err := api.svc.DeleteGrades(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}
