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
	"github.com/paathshala/backend/core/attendance"
)

type attendanceRow struct {
	ID        string      `db:"id"`
	StudentID string      `db:"student_id"`
	Date      time.Time   `db:"date"`
	Status    string      `db:"status"`
	Remarks   null.String `db:"remarks"`
	TakenByID string      `db:"taken_by_id"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (r attendanceRow) toRecord() attendance.Record {
	return attendance.Record{
		ID:        r.ID,
		StudentID: r.StudentID,
		Date:      r.Date,
		Status:    attendance.Status(r.Status),
		Remarks:   r.Remarks,
		TakenByID: r.TakenByID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type attendanceRepository struct {
	db core.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db core.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	rec.ID = uuid.New().String()
	row := attendanceRow{
		ID:        rec.ID,
		StudentID: rec.StudentID,
		Date:      rec.Date.UTC(),
		Status:    string(rec.Status),
		Remarks:   rec.Remarks,
		TakenByID: rec.TakenByID,
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}

	const query = `
		INSERT INTO attendance (id, student_id, date, status, remarks, taken_by_id, created_at, updated_at)
		VALUES (:id, :student_id, :date, :status, :remarks, :taken_by_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row); err != nil {
		if isUniqueViolation(err, "attendance_student_id_date_key") {
			return attendance.Record{}, attendance.ErrAlreadyMarked
		}
		if constraint, ok := isForeignKeyViolation(err); ok && constraint == "attendance_student_id_fkey" {
			return attendance.Record{}, core.NewNotFoundError("student", rec.StudentID)
		}
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return row.toRecord(), nil
}

func (repo attendanceRepository) GetRecord(ctx context.Context, filter attendance.GetFilter, exec ...core.DBExecutor) (attendance.Record, error) {
	exe := getExec(repo.db, exec)

	if _, err := uuid.Parse(filter.ID); err != nil {
		return attendance.Record{}, attendance.ErrNotFound
	}
	var row attendanceRow
	if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM attendance WHERE id = ?`), filter.ID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "finding attendance record by ID")
	}
	return row.toRecord(), nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter, exec ...core.DBExecutor) ([]attendance.Record, error) {
	exe := getExec(repo.db, exec)

	query := `SELECT * FROM attendance`
	var conds []string
	var args []interface{}

	if filter.StudentID != "" {
		conds = append(conds, `student_id = ?`)
		args = append(args, filter.StudentID)
	}
	if !filter.Date.IsZero() {
		conds = append(conds, `date = ?`)
		args = append(args, filter.Date.UTC().Truncate(24*time.Hour))
	}
	if filter.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, string(filter.Status))
	}
	if len(conds) > 0 {
		query += " WHERE " + joinConds(conds)
	}
	query += ` ORDER BY date DESC`

	var rows []attendanceRow
	if err := exe.SelectContext(ctx, &rows, exe.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	records := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

func (repo attendanceRepository) UpdateRecord(ctx context.Context, rec attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	row := attendanceRow{
		ID:        rec.ID,
		Status:    string(rec.Status),
		Remarks:   rec.Remarks,
		UpdatedAt: rec.UpdatedAt.UTC(),
	}

	const query = `UPDATE attendance SET status = :status, remarks = :remarks, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "updating attendance record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return rec, nil
}

func (repo attendanceRepository) DeleteRecordsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query, args, err := sqlx.In(`DELETE FROM attendance WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting attendance records")
	}
	return nil
}
