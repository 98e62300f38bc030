package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/paathshala/backend/core/course"
	"github.com/paathshala/backend/core/teacher"
	"github.com/paathshala/backend/core/user"
)

type courseApi struct {
	svc        course.ServiceInterface
	usrSvc     user.ServiceInterface
	teacherSvc teacher.ServiceInterface
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := courseApi{svc: deps.CourseSvc, usrSvc: deps.UserSvc, teacherSvc: deps.TeacherSvc}
	admin := roleMiddleware(api.usrSvc, user.RoleAdmin)
	staff := roleMiddleware(api.usrSvc, user.RoleAdmin, user.RoleTeacher)

	// subjects are the catalog; any authed user may browse it
	subg := g.Group("/subjects", jwt)
	subg.POST("", api.createSubject, admin)
	subg.GET("", api.querySubjects)
	subg.GET("/:id", api.retrieveSubject)
	subg.DELETE("/:id", api.destroySubject, admin)

	cg := g.Group("/courses", jwt)
	cg.POST("", api.createCourse, staff)
	cg.GET("", api.queryCourses)
	cg.GET("/:id", api.retrieveCourse)
	cg.PUT("/:id", api.updateCourse, staff)
	cg.DELETE("/:id", api.destroyCourse, admin)
	cg.GET("/:id/enrollments", api.queryCourseEnrollments, staff)

	eg := g.Group("/enrollments", jwt)
	eg.POST("", api.enroll, staff)
	eg.PUT("/:id", api.updateEnrollment, staff)
	eg.DELETE("/:id", api.destroyEnrollment, admin)
}

// Subjects

func (api *courseApi) createSubject(ctx echo.Context) error {
	var data course.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *courseApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.QuerySubjects()
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []course.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *courseApi) retrieveSubject(ctx echo.Context) error {
	sub, err := api.svc.GetSubject(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *courseApi) destroySubject(ctx echo.Context) error {
	if err := api.svc.DeleteSubjects(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Courses

// createCourse lets an admin assign any teacher; a teacher may only create a
// course assigned to themselves.
func (api *courseApi) createCourse(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}
	if !ctxUsr.IsAdmin() {
		tch, err := api.teacherSvc.GetByUserID(ctxUsr.ID)
		if err != nil || data.TeacherID != tch.ID {
			return errHttpForbidden
		}
	}

	crs, err := api.svc.CreateCourse(data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) queryCourses(ctx echo.Context) error {
	var filter course.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}

	courses, err := api.svc.QueryCourses(filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieveCourse(ctx echo.Context) error {
	crs, err := api.svc.GetCourse(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

// updateCourse lets an admin touch any course; a teacher only their own
// assigned one.
func (api *courseApi) updateCourse(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.CheckCourseOwnership(ctx.Param("id"), ctxUsr); err != nil {
		return errors.Wrap(err, "checking course ownership")
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(validate); err != nil {
		return err
	}

	crs, err := api.svc.UpdateCourse(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroyCourse(ctx echo.Context) error {
	if err := api.svc.DeleteCourses(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Enrollments

func (api *courseApi) enroll(ctx echo.Context) error {
	var data course.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	enr, err := api.svc.Enroll(data)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *courseApi) queryCourseEnrollments(ctx echo.Context) error {
	enrollments, err := api.svc.QueryEnrollmentsByCourse(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrollments == nil {
		enrollments = []course.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *courseApi) updateEnrollment(ctx echo.Context) error {
	var data course.UpdateEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEnrollment")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	enr, err := api.svc.UpdateEnrollment(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *courseApi) destroyEnrollment(ctx echo.Context) error {
	if err := api.svc.DeleteEnrollments(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
