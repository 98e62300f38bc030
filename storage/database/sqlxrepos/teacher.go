package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/teacher"
	"github.com/paathshala/backend/core/user"
)

type teacherRow struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	Qualification string    `db:"qualification"`
	Experience    string    `db:"experience"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r teacherRow) toTeacher() teacher.Teacher {
	return teacher.Teacher{
		ID:            r.ID,
		UserID:        r.UserID,
		Qualification: r.Qualification,
		Experience:    r.Experience,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func newTeacherRow(tch teacher.Teacher) teacherRow {
	return teacherRow{
		ID:            tch.ID,
		UserID:        tch.UserID,
		Qualification: tch.Qualification,
		Experience:    tch.Experience,
		CreatedAt:     tch.CreatedAt.UTC(),
		UpdatedAt:     tch.UpdatedAt.UTC(),
	}
}

type teacherRepository struct {
	db      core.DB
	usrRepo *userRepository
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db core.DB, usrRepo *userRepository) *teacherRepository {
	return &teacherRepository{db: db, usrRepo: usrRepo}
}

func (repo teacherRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return teacher.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo teacherRepository) CreateWithUser(ctx context.Context, usr user.User, tch teacher.Teacher) (teacher.Teacher, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	created, err := repo.usrRepo.CreateUser(ctx, usr, tx)
	if err != nil {
		return teacher.Teacher{}, err
	}

	tch.ID = uuid.New().String()
	tch.UserID = created.ID
	row := newTeacherRow(tch)

	const query = `
		INSERT INTO teacher (id, user_id, qualification, experience, created_at, updated_at)
		VALUES (:id, :user_id, :qualification, :experience, :created_at, :updated_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, query, row); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}

	if err = tx.Commit(); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "committing transaction")
	}
	tch = row.toTeacher()
	tch.User = &created
	return tch, nil
}

func (repo teacherRepository) GetTeacher(ctx context.Context, filter teacher.GetFilter, exec ...core.DBExecutor) (teacher.Teacher, error) {
	exe := getExec(repo.db, exec)

	var row teacherRow
	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM teacher WHERE id = ?`), filter.ID); err != nil {
			return teacher.Teacher{}, repo.trapNoRowsErr(err, "finding teacher by ID")
		}
	} else {
		if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM teacher WHERE user_id = ?`), filter.UserID); err != nil {
			return teacher.Teacher{}, repo.trapNoRowsErr(err, "finding teacher by user ID")
		}
	}

	tch := row.toTeacher()
	usr, err := repo.usrRepo.GetUser(ctx, user.GetFilter{ID: tch.UserID}, exec...)
	if err == nil {
		tch.User = &usr
	}
	return tch, nil
}

func (repo teacherRepository) QueryTeachers(ctx context.Context, exec ...core.DBExecutor) ([]teacher.Teacher, error) {
	exe := getExec(repo.db, exec)

	var rows []teacherRow
	if err := exe.SelectContext(ctx, &rows, `SELECT * FROM teacher ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.toTeacher())
	}
	return teachers, nil
}

func (repo teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	row := newTeacherRow(tch)

	const query = `
		UPDATE teacher SET qualification = :qualification, experience = :experience, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return tch, nil
}

func (repo teacherRepository) DeleteTeachersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query, args, err := sqlx.In(`DELETE FROM teacher WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting teachers")
	}
	return nil
}
