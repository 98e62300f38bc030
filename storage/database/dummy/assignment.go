package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	asg.ID = uuid.New().String()
	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, filter assignment.GetFilter, exec ...core.DBExecutor) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if asg, ok := repo.db.assignments[filter.ID]; ok {
		return *asg, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignmentsByCourse(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var assignments []assignment.Assignment
	for _, asg := range repo.db.assignments {
		if asg.CourseID == courseID {
			assignments = append(assignments, *asg)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].DueDate.Before(assignments[j].DueDate) })
	return assignments, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, asg assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.assignments[asg.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *assignmentRepository) DeleteAssignmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.assignments, id)
	}
	return nil
}

// grades

func (repo *assignmentRepository) CreateGrade(ctx context.Context, grd assignment.Grade, exec ...core.DBExecutor) (assignment.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.grades {
		if existing.StudentID == grd.StudentID && existing.AssignmentID == grd.AssignmentID {
			return assignment.Grade{}, assignment.ErrAlreadyGraded
		}
	}
	grd.ID = uuid.New().String()
	repo.db.grades[grd.ID] = &grd
	return grd, nil
}

func (repo *assignmentRepository) GetGrade(ctx context.Context, filter assignment.GetFilter, exec ...core.DBExecutor) (assignment.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if grd, ok := repo.db.grades[filter.ID]; ok {
		return *grd, nil
	}
	return assignment.Grade{}, assignment.ErrGradeNotFound
}

func (repo *assignmentRepository) QueryGradesByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]assignment.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var grades []assignment.Grade
	for _, grd := range repo.db.grades {
		if grd.AssignmentID == assignmentID {
			grades = append(grades, *grd)
		}
	}
	return grades, nil
}

func (repo *assignmentRepository) QueryGradesByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]assignment.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var grades []assignment.Grade
	for _, grd := range repo.db.grades {
		if grd.StudentID == studentID {
			grades = append(grades, *grd)
		}
	}
	return grades, nil
}

func (repo *assignmentRepository) DeleteGradesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.grades, id)
	}
	return nil
}
