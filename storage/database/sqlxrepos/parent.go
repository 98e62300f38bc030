package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/parent"
	"github.com/paathshala/backend/core/user"
)

type parentRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Phone     string    `db:"phone"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r parentRow) toParent() parent.Parent {
	return parent.Parent{
		ID:        r.ID,
		UserID:    r.UserID,
		Phone:     r.Phone,
		Address:   r.Address,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newParentRow(par parent.Parent) parentRow {
	return parentRow{
		ID:        par.ID,
		UserID:    par.UserID,
		Phone:     par.Phone,
		Address:   par.Address,
		CreatedAt: par.CreatedAt.UTC(),
		UpdatedAt: par.UpdatedAt.UTC(),
	}
}

type parentRepository struct {
	db      core.DB
	usrRepo *userRepository
}

var _ parent.Repository = (*parentRepository)(nil) // interface compliance check

func NewParentRepository(db core.DB, usrRepo *userRepository) *parentRepository {
	return &parentRepository{db: db, usrRepo: usrRepo}
}

func (repo parentRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return parent.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo parentRepository) CreateWithUser(ctx context.Context, usr user.User, par parent.Parent) (parent.Parent, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return parent.Parent{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	created, err := repo.usrRepo.CreateUser(ctx, usr, tx)
	if err != nil {
		return parent.Parent{}, err
	}

	par.ID = uuid.New().String()
	par.UserID = created.ID
	row := newParentRow(par)

	const query = `
		INSERT INTO parent (id, user_id, phone, address, created_at, updated_at)
		VALUES (:id, :user_id, :phone, :address, :created_at, :updated_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, query, row); err != nil {
		return parent.Parent{}, errors.Wrap(err, "inserting parent")
	}

	if err = tx.Commit(); err != nil {
		return parent.Parent{}, errors.Wrap(err, "committing transaction")
	}
	par = row.toParent()
	par.User = &created
	return par, nil
}

func (repo parentRepository) GetParent(ctx context.Context, filter parent.GetFilter, exec ...core.DBExecutor) (parent.Parent, error) {
	exe := getExec(repo.db, exec)

	var row parentRow
	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return parent.Parent{}, parent.ErrNotFound
		}
		if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM parent WHERE id = ?`), filter.ID); err != nil {
			return parent.Parent{}, repo.trapNoRowsErr(err, "finding parent by ID")
		}
	} else {
		if err := exe.GetContext(ctx, &row, exe.Rebind(`SELECT * FROM parent WHERE user_id = ?`), filter.UserID); err != nil {
			return parent.Parent{}, repo.trapNoRowsErr(err, "finding parent by user ID")
		}
	}

	par := row.toParent()
	usr, err := repo.usrRepo.GetUser(ctx, user.GetFilter{ID: par.UserID}, exec...)
	if err == nil {
		par.User = &usr
	}
	return par, nil
}

func (repo parentRepository) QueryParents(ctx context.Context, exec ...core.DBExecutor) ([]parent.Parent, error) {
	exe := getExec(repo.db, exec)

	var rows []parentRow
	if err := exe.SelectContext(ctx, &rows, `SELECT * FROM parent ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying parents")
	}
	parents := make([]parent.Parent, 0, len(rows))
	for _, row := range rows {
		parents = append(parents, row.toParent())
	}
	return parents, nil
}

func (repo parentRepository) UpdateParent(ctx context.Context, par parent.Parent, exec ...core.DBExecutor) (parent.Parent, error) {
	exe := getExec(repo.db, exec)

	cur, err := repo.GetParent(ctx, parent.GetFilter{ID: par.ID}, exec...)
	if err != nil {
		return parent.Parent{}, err
	}
	if par.Phone != "" {
		cur.Phone = par.Phone
	}
	if par.Address != "" {
		cur.Address = par.Address
	}
	cur.UpdatedAt = par.UpdatedAt

	row := newParentRow(cur)
	const query = `
		UPDATE parent SET phone = :phone, address = :address, updated_at = :updated_at
		WHERE id = :id`
	if _, err = sqlx.NamedExecContext(ctx, exe, query, row); err != nil {
		return parent.Parent{}, errors.Wrap(err, "updating parent")
	}
	return cur, nil
}

func (repo parentRepository) DeleteParentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	query, args, err := sqlx.In(`DELETE FROM parent WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting parents")
	}
	return nil
}
