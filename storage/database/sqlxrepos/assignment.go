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
	"github.com/paathshala/backend/core/assignment"
)

type assignmentRow struct {
	ID          string      `db:"id"`
	CourseID    string      `db:"course_id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	DueDate     time.Time   `db:"due_date"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r assignmentRow) toAssignment() assignment.Assignment {
	return assignment.Assignment{
		ID:          r.ID,
		CourseID:    r.CourseID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type gradeRow struct {
	ID           string      `db:"id"`
	StudentID    string      `db:"student_id"`
	AssignmentID string      `db:"assignment_id"`
	Score        float64     `db:"score"`
	Remarks      null.String `db:"remarks"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (r gradeRow) toGrade() assignment.Grade {
	return assignment.Grade{
		ID:           r.ID,
		StudentID:    r.StudentID,
		AssignmentID: r.AssignmentID,
		Score:        r.Score,
		Remarks:      r.Remarks,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type assignmentRepository struct {
	db core.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db core.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	asg.ID = uuid.New().String()
	row := assignmentRow{
		ID:          asg.ID,
		CourseID:    asg.CourseID,
		Title:       asg.Title,
		Description: asg.Description,
		DueDate:     asg.DueDate.UTC(),
		CreatedAt:   asg.CreatedAt.UTC(),
		UpdatedAt:   asg.UpdatedAt.UTC(),
	}

	const query = `
		INSERT INTO assignment (id, course_id, title, description, due_date, created_at, updated_at)
		VALUES (:id, :course_id, :title, :description, :due_date, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row); err != nil {
		if constraint, ok := isForeignKeyViolation(err); ok && constraint == "assignment_course_id_fkey" {
			return assignment.Assignment{}, core.NewNotFoundError("course", asg.CourseID)
		}
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return row.toAssignment(), nil
}

func (repo assignmentRepository) GetAssignment(ctx context.Context, filter assignment.GetFilter, exec ...core.DBExecutor) (assignment.Assignment, error) {
	exe := getExec(repo.db, exec)

	if _, err := uuid.Parse(filter.ID); err != nil {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	var row assignmentRow
	if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM assignment WHERE id = ?`), filter.ID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "finding assignment by ID")
	}
	return row.toAssignment(), nil
}

func (repo assignmentRepository) QueryAssignmentsByCourse(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	exe := getExec(repo.db, exec)

	var rows []assignmentRow
	if err := exe.SelectContext(ctx, &rows, exe.Rebind(`SELECT * FROM assignment WHERE course_id = ? ORDER BY due_date`), courseID); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.toAssignment())
	}
	return assignments, nil
}

func (repo assignmentRepository) UpdateAssignment(ctx context.Context, asg assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	row := assignmentRow{
		ID:          asg.ID,
		Title:       asg.Title,
		Description: asg.Description,
		DueDate:     asg.DueDate.UTC(),
		UpdatedAt:   asg.UpdatedAt.UTC(),
	}

	const query = `
		UPDATE assignment SET title = :title, description = :description, due_date = :due_date, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return asg, nil
}

func (repo assignmentRepository) DeleteAssignmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query, args, err := sqlx.In(`DELETE FROM assignment WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting assignments")
	}
	return nil
}

// grades

func (repo assignmentRepository) CreateGrade(ctx context.Context, grd assignment.Grade, exec ...core.DBExecutor) (assignment.Grade, error) {
	grd.ID = uuid.New().String()
	row := gradeRow{
		ID:           grd.ID,
		StudentID:    grd.StudentID,
		AssignmentID: grd.AssignmentID,
		Score:        grd.Score,
		Remarks:      grd.Remarks,
		CreatedAt:    grd.CreatedAt.UTC(),
		UpdatedAt:    grd.UpdatedAt.UTC(),
	}

	const query = `
		INSERT INTO grade (id, student_id, assignment_id, score, remarks, created_at, updated_at)
		VALUES (:id, :student_id, :assignment_id, :score, :remarks, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row); err != nil {
		if isUniqueViolation(err, "grade_student_id_assignment_id_key") {
			return assignment.Grade{}, assignment.ErrAlreadyGraded
		}
		if constraint, ok := isForeignKeyViolation(err); ok {
			switch constraint {
			case "grade_student_id_fkey":
				return assignment.Grade{}, core.NewNotFoundError("student", grd.StudentID)
			case "grade_assignment_id_fkey":
				return assignment.Grade{}, core.NewNotFoundError("assignment", grd.AssignmentID)
			}
		}
		return assignment.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return row.toGrade(), nil
}

func (repo assignmentRepository) GetGrade(ctx context.Context, filter assignment.GetFilter, exec ...core.DBExecutor) (assignment.Grade, error) {
	exe := getExec(repo.db, exec)

	if _, err := uuid.Parse(filter.ID); err != nil {
		return assignment.Grade{}, assignment.ErrGradeNotFound
	}
	var row gradeRow
	if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM grade WHERE id = ?`), filter.ID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return assignment.Grade{}, assignment.ErrGradeNotFound
		}
		return assignment.Grade{}, errors.Wrap(err, "finding grade by ID")
	}
	return row.toGrade(), nil
}

func (repo assignmentRepository) QueryGradesByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]assignment.Grade, error) {
	return repo.queryGrades(ctx, `assignment_id`, assignmentID, exec...)
}

func (repo assignmentRepository) QueryGradesByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]assignment.Grade, error) {
	return repo.queryGrades(ctx, `student_id`, studentID, exec...)
}

func (repo assignmentRepository) queryGrades(ctx context.Context, col, val string, exec ...core.DBExecutor) ([]assignment.Grade, error) {
	exe := getExec(repo.db, exec)

	var rows []gradeRow
	query := `SELECT * FROM grade WHERE ` + col + ` = ? ORDER BY created_at DESC`
	if err := exe.SelectContext(ctx, &rows, exe.Rebind(query), val); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]assignment.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.toGrade())
	}
	return grades, nil
}

func (repo assignmentRepository) DeleteGradesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query, args, err := sqlx.In(`DELETE FROM grade WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting grades")
	}
	return nil
}
