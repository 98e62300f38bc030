package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/course"
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/user"
)

var (
	ErrNotFound      = errors.New("assignment not found")
	ErrGradeNotFound = errors.New("grade not found")
	ErrAlreadyGraded = errors.New("student already has a grade for this assignment")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) (Assignment, error)
		GetAssignment(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Assignment, error)
		QueryAssignmentsByCourse(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) (Assignment, error)
		DeleteAssignmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error

		CreateGrade(ctx context.Context, grd Grade, exec ...core.DBExecutor) (Grade, error)
		GetGrade(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Grade, error)
		QueryGradesByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]Grade, error)
		QueryGradesByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]Grade, error)
		DeleteGradesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(na NewAssignment) (Assignment, error)
		QueryByCourse(courseID string) ([]Assignment, error)
		GetByID(id string) (Assignment, error)
		Update(id string, ua UpdateAssignment) (Assignment, error)
		Delete(ids ...string) error
		CheckOwnership(assignmentID string, actor user.User) error

		GradeStudent(ng NewGrade) (Grade, error)
		QueryGradesByAssignment(assignmentID string) ([]Grade, error)
		QueryGradesByStudent(studentID string) ([]Grade, error)
		DeleteGrades(ids ...string) error
	}

	service struct {
		repo       Repository
		courseSvc  course.ServiceInterface
		studentSvc student.ServiceInterface
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, courseSvc course.ServiceInterface, studentSvc student.ServiceInterface) ServiceInterface {
	return &service{
		repo:       repo,
		courseSvc:  courseSvc,
		studentSvc: studentSvc,
	}
}

func (svc *service) Create(na NewAssignment) (Assignment, error) {
	ctx := context.Background()

	if _, err := svc.courseSvc.GetCourse(na.CourseID); err != nil {
		if errors.Cause(err) == course.ErrCourseNotFound {
			return Assignment{}, core.NewNotFoundError("course", na.CourseID)
		}
		return Assignment{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateAssignment(ctx, Assignment{
		CourseID:    na.CourseID,
		Title:       na.Title,
		Description: null.NewString(na.Description, na.Description != ""),
		DueDate:     na.DueDate.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) QueryByCourse(courseID string) ([]Assignment, error) {
	return svc.repo.QueryAssignmentsByCourse(context.Background(), courseID)
}

func (svc *service) GetByID(id string) (Assignment, error) {
	return svc.repo.GetAssignment(context.Background(), GetFilter{ID: id})
}

func (svc *service) Update(id string, ua UpdateAssignment) (Assignment, error) {
	ctx := context.Background()

	asg, err := svc.repo.GetAssignment(ctx, GetFilter{ID: id})
	if err != nil {
		return Assignment{}, err
	}
	if ua.Title != "" {
		asg.Title = ua.Title
	}
	if ua.Description != "" {
		asg.Description = null.StringFrom(ua.Description)
	}
	if !ua.DueDate.IsZero() {
		asg.DueDate = ua.DueDate.UTC()
	}
	asg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAssignment(ctx, asg)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteAssignmentsByID(context.Background(), ids)
}

// CheckOwnership defers to the parent course: the assignment belongs to
// whoever teaches the course it was set for.
func (svc *service) CheckOwnership(assignmentID string, actor user.User) error {
	asg, err := svc.repo.GetAssignment(context.Background(), GetFilter{ID: assignmentID})
	if err != nil {
		return err
	}
	return svc.courseSvc.CheckCourseOwnership(asg.CourseID, actor)
}

func (svc *service) GradeStudent(ng NewGrade) (Grade, error) {
	ctx := context.Background()

	if _, err := svc.studentSvc.GetByID(ng.StudentID); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return Grade{}, core.NewNotFoundError("student", ng.StudentID)
		}
		return Grade{}, err
	}
	if _, err := svc.repo.GetAssignment(ctx, GetFilter{ID: ng.AssignmentID}); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Grade{}, core.NewNotFoundError("assignment", ng.AssignmentID)
		}
		return Grade{}, err
	}

	now := time.Now().UTC()
	grd, err := svc.repo.CreateGrade(ctx, Grade{
		StudentID:    ng.StudentID,
		AssignmentID: ng.AssignmentID,
		Score:        ng.Score,
		Remarks:      null.NewString(ng.Remarks, ng.Remarks != ""),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyGraded {
			return Grade{}, core.NewConflictError("grade", ng.StudentID+"/"+ng.AssignmentID)
		}
		return Grade{}, err
	}
	return grd, nil
}

func (svc *service) QueryGradesByAssignment(assignmentID string) ([]Grade, error) {
	return svc.repo.QueryGradesByAssignment(context.Background(), assignmentID)
}

func (svc *service) QueryGradesByStudent(studentID string) ([]Grade, error) {
	return svc.repo.QueryGradesByStudent(context.Background(), studentID)
}

func (svc *service) DeleteGrades(ids ...string) error {
	return svc.repo.DeleteGradesByID(context.Background(), ids)
}
