package course

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/teacher"
	"github.com/paathshala/backend/core/user"
)

var (
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrCodeExists         = errors.New("a subject with this code already exists")
	ErrAlreadyEnrolled    = errors.New("student is already enrolled in this course")
)

type (
	Repository interface {
		CheckSubjectCodeUniqueness(ctx context.Context, code string, exec ...core.DBExecutor) error
		CreateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		GetSubject(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Subject, error)
		QuerySubjects(ctx context.Context, exec ...core.DBExecutor) ([]Subject, error)
		DeleteSubjectsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error

		CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		GetCourse(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Course, error)
		QueryCourses(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error

		CreateEnrollment(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
		GetEnrollment(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Enrollment, error)
		QueryEnrollmentsByCourse(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]Enrollment, error)
		QueryEnrollmentsByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]Enrollment, error)
		UpdateEnrollment(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
		DeleteEnrollmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		CreateSubject(ns NewSubject) (Subject, error)
		QuerySubjects() ([]Subject, error)
		GetSubject(id string) (Subject, error)
		DeleteSubjects(ids ...string) error

		CreateCourse(nc NewCourse) (Course, error)
		QueryCourses(filter QueryFilter) ([]Course, error)
		GetCourse(id string) (Course, error)
		UpdateCourse(id string, uc UpdateCourse) (Course, error)
		DeleteCourses(ids ...string) error
		CheckCourseOwnership(courseID string, actor user.User) error

		Enroll(ne NewEnrollment) (Enrollment, error)
		QueryEnrollmentsByCourse(courseID string) ([]Enrollment, error)
		QueryEnrollmentsByStudent(studentID string) ([]Enrollment, error)
		UpdateEnrollment(id string, ue UpdateEnrollment) (Enrollment, error)
		DeleteEnrollments(ids ...string) error
	}

	service struct {
		repo       Repository
		teacherSvc teacher.ServiceInterface
		studentSvc student.ServiceInterface
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, teacherSvc teacher.ServiceInterface, studentSvc student.ServiceInterface) ServiceInterface {
	return &service{
		repo:       repo,
		teacherSvc: teacherSvc,
		studentSvc: studentSvc,
	}
}

// subjects

func (svc *service) CreateSubject(ns NewSubject) (Subject, error) {
	ctx := context.Background()

	if err := svc.repo.CheckSubjectCodeUniqueness(ctx, ns.Code); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return Subject{}, core.NewConflictError("code", ns.Code)
		}
		return Subject{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateSubject(ctx, Subject{
		Name:        ns.Name,
		Code:        ns.Code,
		Description: null.NewString(ns.Description, ns.Description != ""),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) QuerySubjects() ([]Subject, error) {
	return svc.repo.QuerySubjects(context.Background())
}

func (svc *service) GetSubject(id string) (Subject, error) {
	return svc.repo.GetSubject(context.Background(), GetFilter{ID: id})
}

func (svc *service) DeleteSubjects(ids ...string) error {
	return svc.repo.DeleteSubjectsByID(context.Background(), ids)
}

// courses

func (svc *service) CreateCourse(nc NewCourse) (Course, error) {
	ctx := context.Background()

	if _, err := svc.repo.GetSubject(ctx, GetFilter{ID: nc.SubjectID}); err != nil {
		if errors.Cause(err) == ErrSubjectNotFound {
			return Course{}, core.NewNotFoundError("subject", nc.SubjectID)
		}
		return Course{}, err
	}
	if _, err := svc.teacherSvc.GetByID(nc.TeacherID); err != nil {
		if errors.Cause(err) == teacher.ErrNotFound {
			return Course{}, core.NewNotFoundError("teacher", nc.TeacherID)
		}
		return Course{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateCourse(ctx, Course{
		Name:      nc.Name,
		SubjectID: nc.SubjectID,
		TeacherID: nc.TeacherID,
		Grade:     nc.Grade,
		Section:   nc.Section,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryCourses(filter QueryFilter) ([]Course, error) {
	return svc.repo.QueryCourses(context.Background(), filter)
}

func (svc *service) GetCourse(id string) (Course, error) {
	return svc.repo.GetCourse(context.Background(), GetFilter{ID: id})
}

func (svc *service) UpdateCourse(id string, uc UpdateCourse) (Course, error) {
	ctx := context.Background()

	crs, err := svc.repo.GetCourse(ctx, GetFilter{ID: id})
	if err != nil {
		return Course{}, err
	}
	if uc.Name != "" {
		crs.Name = uc.Name
	}
	if uc.TeacherID != "" {
		if _, err := svc.teacherSvc.GetByID(uc.TeacherID); err != nil {
			if errors.Cause(err) == teacher.ErrNotFound {
				return Course{}, core.NewNotFoundError("teacher", uc.TeacherID)
			}
			return Course{}, err
		}
		crs.TeacherID = uc.TeacherID
	}
	if uc.Grade != "" {
		crs.Grade = uc.Grade
	}
	if uc.Section != "" {
		crs.Section = uc.Section
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) DeleteCourses(ids ...string) error {
	return svc.repo.DeleteCoursesByID(context.Background(), ids)
}

// CheckCourseOwnership allows the course's assigned teacher and admins through;
// everyone else gets user.ErrPermissionDenied.
func (svc *service) CheckCourseOwnership(courseID string, actor user.User) error {
	crs, err := svc.repo.GetCourse(context.Background(), GetFilter{ID: courseID})
	if err != nil {
		return err
	}
	if actor.IsAdmin() {
		return nil
	}
	tch, err := svc.teacherSvc.GetByUserID(actor.ID)
	if err != nil {
		if errors.Cause(err) == teacher.ErrNotFound {
			return user.ErrPermissionDenied
		}
		return err
	}
	if crs.TeacherID != tch.ID {
		return user.ErrPermissionDenied
	}
	return nil
}

// enrollments

func (svc *service) Enroll(ne NewEnrollment) (Enrollment, error) {
	ctx := context.Background()

	if _, err := svc.studentSvc.GetByID(ne.StudentID); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return Enrollment{}, core.NewNotFoundError("student", ne.StudentID)
		}
		return Enrollment{}, err
	}
	if _, err := svc.repo.GetCourse(ctx, GetFilter{ID: ne.CourseID}); err != nil {
		if errors.Cause(err) == ErrCourseNotFound {
			return Enrollment{}, core.NewNotFoundError("course", ne.CourseID)
		}
		return Enrollment{}, err
	}

	now := time.Now().UTC()
	enr, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		StudentID: ne.StudentID,
		CourseID:  ne.CourseID,
		Status:    EnrollmentActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyEnrolled {
			return Enrollment{}, core.NewConflictError("enrollment", ne.StudentID+"/"+ne.CourseID)
		}
		return Enrollment{}, err
	}
	return enr, nil
}

func (svc *service) QueryEnrollmentsByCourse(courseID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByCourse(context.Background(), courseID)
}

func (svc *service) QueryEnrollmentsByStudent(studentID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByStudent(context.Background(), studentID)
}

func (svc *service) UpdateEnrollment(id string, ue UpdateEnrollment) (Enrollment, error) {
	ctx := context.Background()

	enr, err := svc.repo.GetEnrollment(ctx, GetFilter{ID: id})
	if err != nil {
		return Enrollment{}, err
	}
	enr.Status = ue.Status
	enr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEnrollment(ctx, enr)
}

func (svc *service) DeleteEnrollments(ids ...string) error {
	return svc.repo.DeleteEnrollmentsByID(context.Background(), ids)
}
