package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/paathshala/backend/core/assignment"
	"github.com/paathshala/backend/core/course"
	"github.com/paathshala/backend/core/parent"
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/user"
)

type studentApi struct {
	svc           student.ServiceInterface
	usrSvc        user.ServiceInterface
	parentSvc     parent.ServiceInterface
	courseSvc     course.ServiceInterface
	assignmentSvc assignment.ServiceInterface
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := studentApi{
		svc:           deps.StudentSvc,
		usrSvc:        deps.UserSvc,
		parentSvc:     deps.ParentSvc,
		courseSvc:     deps.CourseSvc,
		assignmentSvc: deps.AssignmentSvc,
	}

	sg := g.Group("/students", jwt)
	admin := roleMiddleware(api.usrSvc, user.RoleAdmin)
	staff := roleMiddleware(api.usrSvc, user.RoleAdmin, user.RoleTeacher)

	sg.POST("", api.create, admin)
	sg.GET("", api.query, staff)
	sg.GET("/:id", api.retrieve, staff)
	sg.PUT("/:id", api.update, admin)
	sg.DELETE("/:id", api.destroy, admin)

	// a student or their parent may read their own record's related data
	selfOrStaff := api.selfOrStaffMiddleware()
	sg.GET("/:id/enrollments", api.queryEnrollments, selfOrStaff)
	sg.GET("/:id/grades", api.queryGrades, selfOrStaff)
}

// selfOrStaffMiddleware lets ADMIN and TEACHER through unconditionally, and
// otherwise requires the target student record to belong to the acting user or
// to one of their children.
func (api *studentApi) selfOrStaffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx, api.usrSvc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if ctxUsr.IsAdmin() || ctxUsr.IsTeacher() {
				return next(ctx)
			}

			std, err := api.svc.GetByID(ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "getting student")
			}
			if ctxUsr.IsStudent() && std.UserID == ctxUsr.ID {
				return next(ctx)
			}
			if ctxUsr.IsParent() && std.ParentID.Valid {
				par, perr := api.parentSvc.GetByUserID(ctxUsr.ID)
				if perr == nil && par.ID == std.ParentID.String {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	std, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}

	students, err := api.svc.Query(filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	std, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) queryEnrollments(ctx echo.Context) error {
	enrollments, err := api.courseSvc.QueryEnrollmentsByStudent(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrollments == nil {
		enrollments = []course.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *studentApi) queryGrades(ctx echo.Context) error {
	grades, err := api.assignmentSvc.QueryGradesByStudent(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	if grades == nil {
		grades = []assignment.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}
