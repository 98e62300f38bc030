package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/teacher"
	"github.com/paathshala/backend/core/user"
)

type teacherRepository struct {
	db      *DB
	usrRepo *userRepository
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db, usrRepo: NewUserRepository(db)}
}

func (repo *teacherRepository) CreateWithUser(ctx context.Context, usr user.User, tch teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	created, err := repo.usrRepo.createUser(usr)
	if err != nil {
		return teacher.Teacher{}, err
	}
	if err = repo.db.FailProfileWrite; err != nil {
		delete(repo.db.users, created.ID) // rollback
		return teacher.Teacher{}, err
	}

	tch.ID = uuid.New().String()
	tch.UserID = created.ID
	tch.User = &created
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *teacherRepository) GetTeacher(ctx context.Context, filter teacher.GetFilter, exec ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if tch, ok := repo.db.teachers[filter.ID]; ok {
			return *tch, nil
		}
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	for _, tch := range repo.db.teachers {
		if tch.UserID == filter.UserID {
			return *tch, nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) QueryTeachers(ctx context.Context, exec ...core.DBExecutor) ([]teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teachers := make([]teacher.Teacher, 0, len(repo.db.teachers))
	for _, tch := range repo.db.teachers {
		teachers = append(teachers, *tch)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].CreatedAt.After(teachers[j].CreatedAt) })
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.teachers[tch.ID]; !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *teacherRepository) DeleteTeachersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.teachers, id)
	}
	return nil
}
