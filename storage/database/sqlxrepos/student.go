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
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/user"
)

type studentRow struct {
	ID         string      `db:"id"`
	UserID     string      `db:"user_id"`
	Grade      string      `db:"grade"`
	Section    string      `db:"section"`
	RollNumber string      `db:"roll_number"`
	ParentID   null.String `db:"parent_id"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

func (r studentRow) toStudent() student.Student {
	return student.Student{
		ID:         r.ID,
		UserID:     r.UserID,
		Grade:      r.Grade,
		Section:    r.Section,
		RollNumber: r.RollNumber,
		ParentID:   r.ParentID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func newStudentRow(std student.Student) studentRow {
	return studentRow{
		ID:         std.ID,
		UserID:     std.UserID,
		Grade:      std.Grade,
		Section:    std.Section,
		RollNumber: std.RollNumber,
		ParentID:   std.ParentID,
		CreatedAt:  std.CreatedAt.UTC(),
		UpdatedAt:  std.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db      core.DB
	usrRepo *userRepository
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db core.DB, usrRepo *userRepository) *studentRepository {
	return &studentRepository{db: db, usrRepo: usrRepo}
}

func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CheckRollNumberUniqueness(ctx context.Context, rollNumber string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	var exists bool
	if err := exe.GetContext(ctx, &exists, exe.Rebind(`SELECT EXISTS(SELECT 1 FROM student WHERE roll_number = ?)`), rollNumber); err != nil {
		return errors.Wrap(err, "checking roll number uniqueness")
	}
	if exists {
		return student.ErrRollNumberExists
	}
	return nil
}

func (repo studentRepository) CreateWithUser(ctx context.Context, usr user.User, std student.Student) (student.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	created, err := repo.usrRepo.CreateUser(ctx, usr, tx)
	if err != nil {
		return student.Student{}, err
	}

	std.ID = uuid.New().String()
	std.UserID = created.ID
	row := newStudentRow(std)

	const query = `
		INSERT INTO student (id, user_id, grade, section, roll_number, parent_id, created_at, updated_at)
		VALUES (:id, :user_id, :grade, :section, :roll_number, :parent_id, :created_at, :updated_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, query, row); err != nil {
		if isUniqueViolation(err, "student_roll_number_key") {
			return student.Student{}, student.ErrRollNumberExists
		}
		if constraint, ok := isForeignKeyViolation(err); ok && constraint == "student_parent_id_fkey" {
			return student.Student{}, core.NewNotFoundError("parent", std.ParentID.String)
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}

	if err = tx.Commit(); err != nil {
		return student.Student{}, errors.Wrap(err, "committing transaction")
	}
	std = row.toStudent()
	std.User = &created
	return std, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, filter student.GetFilter, exec ...core.DBExecutor) (student.Student, error) {
	exe := getExec(repo.db, exec)

	var row studentRow
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return student.Student{}, student.ErrNotFound
		}
		if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM student WHERE id = ?`), filter.ID); err != nil {
			return student.Student{}, repo.trapNoRowsErr(err, "finding student by ID")
		}
	case filter.UserID != "":
		if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM student WHERE user_id = ?`), filter.UserID); err != nil {
			return student.Student{}, repo.trapNoRowsErr(err, "finding student by user ID")
		}
	default:
		if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM student WHERE roll_number = ?`), filter.RollNumber); err != nil {
			return student.Student{}, repo.trapNoRowsErr(err, "finding student by roll number")
		}
	}

	std := row.toStudent()
	usr, err := repo.usrRepo.GetUser(ctx, user.GetFilter{ID: std.UserID}, exec...)
	if err == nil {
		std.User = &usr
	}
	return std, nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, exec ...core.DBExecutor) ([]student.Student, error) {
	exe := getExec(repo.db, exec)

	query := `SELECT * FROM student`
	var conds []string
	var args []interface{}

	if filter.Grade != "" {
		conds = append(conds, `grade = ?`)
		args = append(args, filter.Grade)
	}
	if filter.Section != "" {
		conds = append(conds, `section = ?`)
		args = append(args, filter.Section)
	}
	if filter.ParentID != "" {
		conds = append(conds, `parent_id = ?`)
		args = append(args, filter.ParentID)
	}
	if len(conds) > 0 {
		query += " WHERE " + joinConds(conds)
	}
	query += ` ORDER BY roll_number`

	var rows []studentRow
	if err := exe.SelectContext(ctx, &rows, exe.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	row := newStudentRow(std)

	const query = `
		UPDATE student SET grade = :grade, section = :section, parent_id = :parent_id, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row)
	if err != nil {
		if constraint, ok := isForeignKeyViolation(err); ok && constraint == "student_parent_id_fkey" {
			return student.Student{}, core.NewNotFoundError("parent", std.ParentID.String)
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query, args, err := sqlx.In(`DELETE FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}
