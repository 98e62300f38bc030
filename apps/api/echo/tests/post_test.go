package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paathshala/backend/core/attendance"
	"github.com/paathshala/backend/core/post"
	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/user"
	testutil "github.com/paathshala/backend/tests"
)

func Test_postApi_ownership(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Head", "Master", "head@paathshala.edu.np", "", user.RoleAdmin, true)
	author := testutil.CreateUser(t, usrRepo, "Miss", "Moneypenny", "mp@paathshala.edu.np", "", user.RoleTeacher, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "Teacher", "other@paathshala.edu.np", "", user.RoleTeacher, true)
	std := testutil.CreateUser(t, usrRepo, "Hero", "Kid", "hero@paathshala.edu.np", "", user.RoleStudent, true)

	pst, err := postSvc.Create(post.NewPost{Title: "Sports day", Content: "Friday, on the field."}, author)
	require.NoError(t, err)

	update := []byte(`{"title": "Sports day (moved)"}`)

	t.Run("students cannot publish", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/posts", getToken(t, std),
			[]byte(`{"title": "Party", "content": "My place."}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("any authed user can read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/posts/"+pst.ID, getToken(t, std))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("author updates own post", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/posts/"+pst.ID, getToken(t, author), update)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("another teacher cannot update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/posts/"+pst.ID, getToken(t, other), update)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("admin cannot update someone else's post", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/posts/"+pst.ID, getToken(t, admin), update)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("another teacher cannot delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/posts/"+pst.ID, getToken(t, other))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("admin can delete any post", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/posts/"+pst.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func Test_postApi_comments(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Head", "Master", "head@paathshala.edu.np", "", user.RoleAdmin, true)
	author := testutil.CreateUser(t, usrRepo, "Miss", "Moneypenny", "mp@paathshala.edu.np", "", user.RoleTeacher, true)
	std := testutil.CreateUser(t, usrRepo, "Hero", "Kid", "hero@paathshala.edu.np", "", user.RoleStudent, true)

	pst, err := postSvc.Create(post.NewPost{Title: "Sports day", Content: "Friday, on the field."}, author)
	require.NoError(t, err)

	t.Run("comment on unknown post is a 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/posts/3b241101-e2bb-4255-8caf-4136c566a962/comments",
			getToken(t, std), []byte(`{"content": "Can't wait!"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	cmt, err := postSvc.AddComment(pst.ID, post.NewComment{Content: "Can't wait!"}, std)
	require.NoError(t, err)

	t.Run("author edits own comment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/comments/"+cmt.ID, getToken(t, std),
			[]byte(`{"content": "So excited!"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("post author cannot edit another's comment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/comments/"+cmt.ID, getToken(t, author),
			[]byte(`{"content": "hijacked"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("admin can remove any comment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/comments/"+cmt.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func Test_attendanceApi_ownership(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Head", "Master", "head@paathshala.edu.np", "", user.RoleAdmin, true)
	taker := testutil.CreateUser(t, usrRepo, "Miss", "Moneypenny", "mp@paathshala.edu.np", "", user.RoleTeacher, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "Teacher", "other@paathshala.edu.np", "", user.RoleTeacher, true)

	std, err := studentSvc.Create(student.NewStudent{
		FirstName: "Asim", LastName: "Shrestha", Grade: "10", Section: "A", RollNumber: "RN101",
	})
	require.NoError(t, err)

	day := time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)
	rec0, err := attendanceSvc.Mark(attendance.NewRecord{
		StudentID: std.ID, Date: day, Status: attendance.StatusPresent,
	}, taker)
	require.NoError(t, err)
	assert.Equal(t, taker.ID, rec0.TakenByID)

	t.Run("marking the same day twice conflicts", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"student_id": %q, "date": %q, "status": "ABSENT"}`,
			std.ID, day.Format(time.RFC3339)))
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, other), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
	t.Run("another teacher cannot amend the record", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/attendance/"+rec0.ID, getToken(t, other),
			[]byte(`{"status": "LATE"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("the taker can amend it", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/attendance/"+rec0.ID, getToken(t, taker),
			[]byte(`{"status": "LATE"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("admin override applies", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/attendance/"+rec0.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
