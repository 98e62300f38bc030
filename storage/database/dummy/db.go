// Package dummydb provides in-memory repositories for tests.
package dummydb

import (
	"sync"

	"github.com/paathshala/backend/core/assignment"
	"github.com/paathshala/backend/core/attendance"
	"github.com/paathshala/backend/core/course"
	"github.com/paathshala/backend/core/parent"
	"github.com/paathshala/backend/core/post"
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/teacher"
	"github.com/paathshala/backend/core/user"
)

type (
	DB struct {
		sync.RWMutex

		users       map[string]*user.User
		parents     map[string]*parent.Parent
		students    map[string]*student.Student
		teachers    map[string]*teacher.Teacher
		subjects    map[string]*course.Subject
		courses     map[string]*course.Course
		enrollments map[string]*course.Enrollment
		assignments map[string]*assignment.Assignment
		grades      map[string]*assignment.Grade
		attendance  map[string]*attendance.Record
		posts       map[string]*post.Post
		comments    map[string]*post.Comment

		// FailProfileWrite makes the next linked user+profile create fail
		// after the identity write, so tests can assert the rollback.
		FailProfileWrite error
	}
)

func Open() (*DB, error) {
	db := &DB{
		users:       make(map[string]*user.User),
		parents:     make(map[string]*parent.Parent),
		students:    make(map[string]*student.Student),
		teachers:    make(map[string]*teacher.Teacher),
		subjects:    make(map[string]*course.Subject),
		courses:     make(map[string]*course.Course),
		enrollments: make(map[string]*course.Enrollment),
		assignments: make(map[string]*assignment.Assignment),
		grades:      make(map[string]*assignment.Grade),
		attendance:  make(map[string]*attendance.Record),
		posts:       make(map[string]*post.Post),
		comments:    make(map[string]*post.Comment),
	}
	return db, nil
}

// Reset empties the store between tests.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()

	db.users = make(map[string]*user.User)
	db.parents = make(map[string]*parent.Parent)
	db.students = make(map[string]*student.Student)
	db.teachers = make(map[string]*teacher.Teacher)
	db.subjects = make(map[string]*course.Subject)
	db.courses = make(map[string]*course.Course)
	db.enrollments = make(map[string]*course.Enrollment)
	db.assignments = make(map[string]*assignment.Assignment)
	db.grades = make(map[string]*assignment.Grade)
	db.attendance = make(map[string]*attendance.Record)
	db.posts = make(map[string]*post.Post)
	db.comments = make(map[string]*post.Comment)
	db.FailProfileWrite = nil
}
