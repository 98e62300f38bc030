package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/parent"
	"github.com/paathshala/backend/core/user"
)

type parentRepository struct {
	db      *DB
	usrRepo *userRepository
}

var _ parent.Repository = (*parentRepository)(nil) // interface compliance check

func NewParentRepository(db *DB) *parentRepository {
	return &parentRepository{db: db, usrRepo: NewUserRepository(db)}
}

func (repo *parentRepository) CreateWithUser(ctx context.Context, usr user.User, par parent.Parent) (parent.Parent, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	created, err := repo.usrRepo.createUser(usr)
	if err != nil {
		return parent.Parent{}, err
	}
	if err = repo.db.FailProfileWrite; err != nil {
		delete(repo.db.users, created.ID) // rollback
		return parent.Parent{}, err
	}

	par.ID = uuid.New().String()
	par.UserID = created.ID
	par.User = &created
	repo.db.parents[par.ID] = &par
	return par, nil
}

func (repo *parentRepository) GetParent(ctx context.Context, filter parent.GetFilter, exec ...core.DBExecutor) (parent.Parent, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if par, ok := repo.db.parents[filter.ID]; ok {
			return *par, nil
		}
		return parent.Parent{}, parent.ErrNotFound
	}
	for _, par := range repo.db.parents {
		if par.UserID == filter.UserID {
			return *par, nil
		}
	}
	return parent.Parent{}, parent.ErrNotFound
}

func (repo *parentRepository) QueryParents(ctx context.Context, exec ...core.DBExecutor) ([]parent.Parent, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	parents := make([]parent.Parent, 0, len(repo.db.parents))
	for _, par := range repo.db.parents {
		parents = append(parents, *par)
	}
	sort.Slice(parents, func(i, j int) bool { return parents[i].CreatedAt.After(parents[j].CreatedAt) })
	return parents, nil
}

func (repo *parentRepository) UpdateParent(ctx context.Context, par parent.Parent, exec ...core.DBExecutor) (parent.Parent, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cur, ok := repo.db.parents[par.ID]
	if !ok {
		return parent.Parent{}, parent.ErrNotFound
	}
	if par.Phone != "" {
		cur.Phone = par.Phone
	}
	if par.Address != "" {
		cur.Address = par.Address
	}
	cur.UpdatedAt = par.UpdatedAt
	return *cur, nil
}

func (repo *parentRepository) DeleteParentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.parents, id)
	}
	return nil
}
