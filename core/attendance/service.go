package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/user"
)

var (
	ErrNotFound      = errors.New("attendance record not found")
	ErrAlreadyMarked = errors.New("attendance already marked for this student and date")
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
		GetRecord(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Record, error)
		QueryRecords(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Record, error)
		UpdateRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
		DeleteRecordsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Mark(nr NewRecord, actor user.User) (Record, error)
		Query(filter QueryFilter) ([]Record, error)
		GetByID(id string) (Record, error)
		Update(id string, ur UpdateRecord, actor user.User) (Record, error)
		Delete(actor user.User, ids ...string) error
	}

	service struct {
		repo       Repository
		studentSvc student.ServiceInterface
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, studentSvc student.ServiceInterface) ServiceInterface {
	return &service{
		repo:       repo,
		studentSvc: studentSvc,
	}
}

// Mark records a student's attendance for a date; the acting user becomes the
// record's author.
func (svc *service) Mark(nr NewRecord, actor user.User) (Record, error) {
	ctx := context.Background()

	if _, err := svc.studentSvc.GetByID(nr.StudentID); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return Record{}, core.NewNotFoundError("student", nr.StudentID)
		}
		return Record{}, err
	}

	now := time.Now().UTC()
	rec, err := svc.repo.CreateRecord(ctx, Record{
		StudentID: nr.StudentID,
		Date:      nr.Date.UTC().Truncate(24 * time.Hour),
		Status:    nr.Status,
		Remarks:   null.NewString(nr.Remarks, nr.Remarks != ""),
		TakenByID: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyMarked {
			return Record{}, core.NewConflictError("attendance", nr.StudentID)
		}
		return Record{}, err
	}
	return rec, nil
}

func (svc *service) Query(filter QueryFilter) ([]Record, error) {
	return svc.repo.QueryRecords(context.Background(), filter)
}

func (svc *service) GetByID(id string) (Record, error) {
	return svc.repo.GetRecord(context.Background(), GetFilter{ID: id})
}

// Update lets only the record's author (or an admin) change it.
func (svc *service) Update(id string, ur UpdateRecord, actor user.User) (Record, error) {
	ctx := context.Background()

	rec, err := svc.repo.GetRecord(ctx, GetFilter{ID: id})
	if err != nil {
		return Record{}, err
	}
	if err := user.CheckOwnership(rec.TakenByID, actor, user.RoleAdmin); err != nil {
		return Record{}, err
	}
	rec.Status = ur.Status
	rec.Remarks = null.NewString(ur.Remarks, ur.Remarks != "")
	rec.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRecord(ctx, rec)
}

// Delete lets only the records' author (or an admin) remove them.
func (svc *service) Delete(actor user.User, ids ...string) error {
	ctx := context.Background()

	for _, id := range ids {
		rec, err := svc.repo.GetRecord(ctx, GetFilter{ID: id})
		if err != nil {
			return err
		}
		if err := user.CheckOwnership(rec.TakenByID, actor, user.RoleAdmin); err != nil {
			return err
		}
	}
	return svc.repo.DeleteRecordsByID(ctx, ids)
}
