package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paathshala/backend/core/course"
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/teacher"
	"github.com/paathshala/backend/core/user"
	testutil "github.com/paathshala/backend/tests"
)

func Test_courseApi_ownershipAndConflicts(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Head", "Master", "head@paathshala.edu.np", "", user.RoleAdmin, true)
	adminToken := getToken(t, admin)

	owner, err := teacherSvc.Create(teacher.NewTeacher{
		FirstName: "Miss", LastName: "Moneypenny", Qualification: "MSc", Experience: "8 years",
	})
	require.NoError(t, err)
	rival, err := teacherSvc.Create(teacher.NewTeacher{
		FirstName: "Other", LastName: "Teacher", Qualification: "BSc", Experience: "2 years",
	})
	require.NoError(t, err)

	ownerUsr, err := usrSvc.GetByID(owner.UserID)
	require.NoError(t, err)
	rivalUsr, err := usrSvc.GetByID(rival.UserID)
	require.NoError(t, err)

	sub, err := courseSvc.CreateSubject(course.NewSubject{Name: "Mathematics", Code: "MATH101"})
	require.NoError(t, err)

	crs, err := courseSvc.CreateCourse(course.NewCourse{
		Name: "Maths 10A", SubjectID: sub.ID, TeacherID: owner.ID, Grade: "10", Section: "A",
	})
	require.NoError(t, err)

	t.Run("duplicate subject code conflicts", func(t *testing.T) {
		body := []byte(`{"name": "Math again", "code": "math101"}`) // codes are case-insensitive
		req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", adminToken, body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("course against unknown subject is a 404", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"name": "Ghost", "subject_id": "3b241101-e2bb-4255-8caf-4136c566a962", "teacher_id": %q, "grade": "9", "section": "A"}`, owner.ID))
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", adminToken, body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("teacher creates a course assigned to themselves", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"name": "Maths 9B", "subject_id": %q, "teacher_id": %q, "grade": "9", "section": "B"}`, sub.ID, owner.ID))
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", getToken(t, ownerUsr), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})
	t.Run("teacher cannot assign a course to someone else", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"name": "Maths 9C", "subject_id": %q, "teacher_id": %q, "grade": "9", "section": "C"}`, sub.ID, rival.ID))
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", getToken(t, ownerUsr), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	update := []byte(`{"section": "B"}`)

	t.Run("assigned teacher updates own course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID, getToken(t, ownerUsr), update)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
	t.Run("another teacher cannot update it", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID, getToken(t, rivalUsr), update)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("admin updates any course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID, adminToken, update)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_courseApi_enrollments(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Head", "Master", "head@paathshala.edu.np", "", user.RoleAdmin, true)
	adminToken := getToken(t, admin)

	tchr, err := teacherSvc.Create(teacher.NewTeacher{
		FirstName: "Miss", LastName: "Moneypenny", Qualification: "MSc", Experience: "8 years",
	})
	require.NoError(t, err)
	sub, err := courseSvc.CreateSubject(course.NewSubject{Name: "Mathematics", Code: "MATH101"})
	require.NoError(t, err)
	crs, err := courseSvc.CreateCourse(course.NewCourse{
		Name: "Maths 10A", SubjectID: sub.ID, TeacherID: tchr.ID, Grade: "10", Section: "A",
	})
	require.NoError(t, err)
	std, err := studentSvc.Create(student.NewStudent{
		FirstName: "Asim", LastName: "Shrestha", Grade: "10", Section: "A", RollNumber: "RN101",
	})
	require.NoError(t, err)

	tchrUsr, err := usrSvc.GetByID(tchr.UserID)
	require.NoError(t, err)

	body := []byte(fmt.Sprintf(`{"student_id": %q, "course_id": %q}`, std.ID, crs.ID))

	t.Run("teacher enrolls a student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments", getToken(t, tchrUsr), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), string(course.EnrollmentActive))
	})
	t.Run("enrolling twice conflicts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments", adminToken, body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
	t.Run("enrolling an unknown student is a 404", func(t *testing.T) {
		ghost := []byte(fmt.Sprintf(`{"student_id": "3b241101-e2bb-4255-8caf-4136c566a962", "course_id": %q}`, crs.ID))
		req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments", adminToken, ghost)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
	t.Run("course roster lists the enrollment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/enrollments", adminToken)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), std.ID)
	})
}
