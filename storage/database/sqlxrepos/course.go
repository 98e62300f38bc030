package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/course"
)

type subjectRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Code        string      `db:"code"`
	Description null.String `db:"description"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r subjectRow) toSubject() course.Subject {
	return course.Subject{
		ID:          r.ID,
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type courseRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	SubjectID string    `db:"subject_id"`
	TeacherID string    `db:"teacher_id"`
	Grade     string    `db:"grade"`
	Section   string    `db:"section"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r courseRow) toCourse() course.Course {
	return course.Course{
		ID:        r.ID,
		Name:      r.Name,
		SubjectID: r.SubjectID,
		TeacherID: r.TeacherID,
		Grade:     r.Grade,
		Section:   r.Section,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type enrollmentRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	CourseID  string    `db:"course_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r enrollmentRow) toEnrollment() course.Enrollment {
	return course.Enrollment{
		ID:        r.ID,
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
		Status:    course.EnrollmentStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type courseRepository struct {
	db core.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db core.DB) *courseRepository {
	return &courseRepository{db: db}
}

// subjects

func (repo courseRepository) CheckSubjectCodeUniqueness(ctx context.Context, code string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	var exists bool
	if err := exe.GetContext(ctx, &exists, exe.Rebind(`SELECT EXISTS(SELECT 1 FROM subject WHERE code = ?)`), code); err != nil {
		return errors.Wrap(err, "checking subject code uniqueness")
	}
	if exists {
		return course.ErrCodeExists
	}
	return nil
}

func (repo courseRepository) CreateSubject(ctx context.Context, sub course.Subject, exec ...core.DBExecutor) (course.Subject, error) {
	sub.ID = uuid.New().String()
	row := subjectRow{
		ID:          sub.ID,
		Name:        sub.Name,
		Code:        sub.Code,
		Description: sub.Description,
		CreatedAt:   sub.CreatedAt.UTC(),
		UpdatedAt:   sub.UpdatedAt.UTC(),
	}

	const query = `
		INSERT INTO subject (id, name, code, description, created_at, updated_at)
		VALUES (:id, :name, :code, :description, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row); err != nil {
		if isUniqueViolation(err, "subject_code_key") {
			return course.Subject{}, course.ErrCodeExists
		}
		return course.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return row.toSubject(), nil
}

func (repo courseRepository) GetSubject(ctx context.Context, filter course.GetFilter, exec ...core.DBExecutor) (course.Subject, error) {
	exe := getExec(repo.db, exec)

	if _, err := uuid.Parse(filter.ID); err != nil {
		return course.Subject{}, course.ErrSubjectNotFound
	}
	var row subjectRow
	if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM subject WHERE id = ?`), filter.ID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return course.Subject{}, course.ErrSubjectNotFound
		}
		return course.Subject{}, errors.Wrap(err, "finding subject by ID")
	}
	return row.toSubject(), nil
}

func (repo courseRepository) QuerySubjects(ctx context.Context, exec ...core.DBExecutor) ([]course.Subject, error) {
	exe := getExec(repo.db, exec)

	var rows []subjectRow
	if err := exe.SelectContext(ctx, &rows, `SELECT * FROM subject ORDER BY code`); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]course.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.toSubject())
	}
	return subjects, nil
}

func (repo courseRepository) DeleteSubjectsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query, args, err := sqlx.In(`DELETE FROM subject WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting subjects")
	}
	return nil
}

// courses

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	crs.ID = uuid.New().String()
	row := courseRow{
		ID:        crs.ID,
		Name:      crs.Name,
		SubjectID: crs.SubjectID,
		TeacherID: crs.TeacherID,
		Grade:     crs.Grade,
		Section:   crs.Section,
		CreatedAt: crs.CreatedAt.UTC(),
		UpdatedAt: crs.UpdatedAt.UTC(),
	}

	const query = `
		INSERT INTO course (id, name, subject_id, teacher_id, grade, section, created_at, updated_at)
		VALUES (:id, :name, :subject_id, :teacher_id, :grade, :section, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row); err != nil {
		if constraint, ok := isForeignKeyViolation(err); ok {
			switch constraint {
			case "course_subject_id_fkey":
				return course.Course{}, core.NewNotFoundError("subject", crs.SubjectID)
			case "course_teacher_id_fkey":
				return course.Course{}, core.NewNotFoundError("teacher", crs.TeacherID)
			}
		}
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return row.toCourse(), nil
}

func (repo courseRepository) GetCourse(ctx context.Context, filter course.GetFilter, exec ...core.DBExecutor) (course.Course, error) {
	exe := getExec(repo.db, exec)

	if _, err := uuid.Parse(filter.ID); err != nil {
		return course.Course{}, course.ErrCourseNotFound
	}
	var row courseRow
	if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM course WHERE id = ?`), filter.ID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return course.Course{}, course.ErrCourseNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course by ID")
	}
	return row.toCourse(), nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter, exec ...core.DBExecutor) ([]course.Course, error) {
	exe := getExec(repo.db, exec)

	query := `SELECT * FROM course`
	var conds []string
	var args []interface{}

	if filter.SubjectID != "" {
		conds = append(conds, `subject_id = ?`)
		args = append(args, filter.SubjectID)
	}
	if filter.TeacherID != "" {
		conds = append(conds, `teacher_id = ?`)
		args = append(args, filter.TeacherID)
	}
	if filter.Grade != "" {
		conds = append(conds, `grade = ?`)
		args = append(args, filter.Grade)
	}
	if filter.Section != "" {
		conds = append(conds, `section = ?`)
		args = append(args, filter.Section)
	}
	if len(conds) > 0 {
		query += " WHERE " + joinConds(conds)
	}
	query += ` ORDER BY created_at DESC`

	var rows []courseRow
	if err := exe.SelectContext(ctx, &rows, exe.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	row := courseRow{
		ID:        crs.ID,
		Name:      crs.Name,
		SubjectID: crs.SubjectID,
		TeacherID: crs.TeacherID,
		Grade:     crs.Grade,
		Section:   crs.Section,
		UpdatedAt: crs.UpdatedAt.UTC(),
	}

	const query = `
		UPDATE course SET name = :name, teacher_id = :teacher_id, grade = :grade, section = :section, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row)
	if err != nil {
		if constraint, ok := isForeignKeyViolation(err); ok && constraint == "course_teacher_id_fkey" {
			return course.Course{}, core.NewNotFoundError("teacher", crs.TeacherID)
		}
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrCourseNotFound
	}
	return crs, nil
}

func (repo courseRepository) DeleteCoursesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query, args, err := sqlx.In(`DELETE FROM course WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}

// enrollments

func (repo courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment, exec ...core.DBExecutor) (course.Enrollment, error) {
	enr.ID = uuid.New().String()
	row := enrollmentRow{
		ID:        enr.ID,
		StudentID: enr.StudentID,
		CourseID:  enr.CourseID,
		Status:    string(enr.Status),
		CreatedAt: enr.CreatedAt.UTC(),
		UpdatedAt: enr.UpdatedAt.UTC(),
	}

	const query = `
		INSERT INTO enrollment (id, student_id, course_id, status, created_at, updated_at)
		VALUES (:id, :student_id, :course_id, :status, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row); err != nil {
		if isUniqueViolation(err, "enrollment_student_id_course_id_key") {
			return course.Enrollment{}, course.ErrAlreadyEnrolled
		}
		if constraint, ok := isForeignKeyViolation(err); ok {
			switch constraint {
			case "enrollment_student_id_fkey":
				return course.Enrollment{}, core.NewNotFoundError("student", enr.StudentID)
			case "enrollment_course_id_fkey":
				return course.Enrollment{}, core.NewNotFoundError("course", enr.CourseID)
			}
		}
		return course.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return row.toEnrollment(), nil
}

func (repo courseRepository) GetEnrollment(ctx context.Context, filter course.GetFilter, exec ...core.DBExecutor) (course.Enrollment, error) {
	exe := getExec(repo.db, exec)

	if _, err := uuid.Parse(filter.ID); err != nil {
		return course.Enrollment{}, course.ErrEnrollmentNotFound
	}
	var row enrollmentRow
	if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM enrollment WHERE id = ?`), filter.ID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return course.Enrollment{}, course.ErrEnrollmentNotFound
		}
		return course.Enrollment{}, errors.Wrap(err, "finding enrollment by ID")
	}
	return row.toEnrollment(), nil
}

func (repo courseRepository) QueryEnrollmentsByCourse(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]course.Enrollment, error) {
	return repo.queryEnrollments(ctx, `course_id`, courseID, exec...)
}

func (repo courseRepository) QueryEnrollmentsByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]course.Enrollment, error) {
	return repo.queryEnrollments(ctx, `student_id`, studentID, exec...)
}

func (repo courseRepository) queryEnrollments(ctx context.Context, col, val string, exec ...core.DBExecutor) ([]course.Enrollment, error) {
	exe := getExec(repo.db, exec)

	var rows []enrollmentRow
	query := `SELECT * FROM enrollment WHERE ` + col + ` = ? ORDER BY created_at DESC`
	if err := exe.SelectContext(ctx, &rows, exe.Rebind(query), val); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrollments := make([]course.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.toEnrollment())
	}
	return enrollments, nil
}

func (repo courseRepository) UpdateEnrollment(ctx context.Context, enr course.Enrollment, exec ...core.DBExecutor) (course.Enrollment, error) {
	row := enrollmentRow{
		ID:        enr.ID,
		Status:    string(enr.Status),
		UpdatedAt: enr.UpdatedAt.UTC(),
	}

	const query = `UPDATE enrollment SET status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row)
	if err != nil {
		return course.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Enrollment{}, course.ErrEnrollmentNotFound
	}
	return enr, nil
}

func (repo courseRepository) DeleteEnrollmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query, args, err := sqlx.In(`DELETE FROM enrollment WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting enrollments")
	}
	return nil
}
