package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/user"
)

type studentRepository struct {
	db      *DB
	usrRepo *userRepository
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db, usrRepo: NewUserRepository(db)}
}

func (repo *studentRepository) CheckRollNumberUniqueness(ctx context.Context, rollNumber string, exec ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, std := range repo.db.students {
		if strings.EqualFold(std.RollNumber, rollNumber) {
			return student.ErrRollNumberExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateWithUser(ctx context.Context, usr user.User, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.students {
		if strings.EqualFold(existing.RollNumber, std.RollNumber) {
			return student.Student{}, student.ErrRollNumberExists
		}
	}

	created, err := repo.usrRepo.createUser(usr)
	if err != nil {
		return student.Student{}, err
	}
	if err = repo.db.FailProfileWrite; err != nil {
		delete(repo.db.users, created.ID) // rollback
		return student.Student{}, err
	}

	std.ID = uuid.New().String()
	std.UserID = created.ID
	std.User = &created
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	switch {
	case filter.ID != "":
		if std, ok := repo.db.students[filter.ID]; ok {
			return *std, nil
		}
	case filter.UserID != "":
		for _, std := range repo.db.students {
			if std.UserID == filter.UserID {
				return *std, nil
			}
		}
	default:
		for _, std := range repo.db.students {
			if strings.EqualFold(std.RollNumber, filter.RollNumber) {
				return *std, nil
			}
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, exec ...core.DBExecutor) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		if filter.Grade != "" && std.Grade != filter.Grade {
			continue
		}
		if filter.Section != "" && std.Section != filter.Section {
			continue
		}
		if filter.ParentID != "" && std.ParentID.String != filter.ParentID {
			continue
		}
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].RollNumber < students[j].RollNumber })
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[std.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.students, id)
	}
	return nil
}
