package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paathshala/backend/core/student"
	"github.com/paathshala/backend/core/user"
	emailsvc "github.com/paathshala/backend/services/email"
	testutil "github.com/paathshala/backend/tests"
)

func Test_studentApi_provisioning(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Head", "Master", "head@paathshala.edu.np", "", user.RoleAdmin, true)
	adminToken := getToken(t, admin)

	body := []byte(`{
		"first_name": "Asim",
		"last_name":  "Shrestha",
		"grade":      "10",
		"section":    "A",
		"roll_number": "RN101"
	}`)

	req, rec := newAuthRequest(http.MethodPost, "/v1/students", adminToken, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var std student.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &std))
	require.NotNil(t, std.User)

	t.Run("identity is derived and linked", func(t *testing.T) {
		assert.Equal(t, "asim.rn101@paathshala.edu.np", std.User.Email)
		assert.Equal(t, user.RoleStudent, std.User.Role)
		assert.Equal(t, std.UserID, std.User.ID)
		assert.True(t, std.User.Active())
	})

	t.Run("credentials never appear in the response", func(t *testing.T) {
		assert.NotContains(t, rec.Body.String(), "password")
		assert.NotContains(t, rec.Body.String(), "shrestha.rn101")
	})

	t.Run("welcome email carries the one-time password", func(t *testing.T) {
		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, "Welcome to Paathshala", msg.Subject)
		assert.Contains(t, msg.TextContent, "asim.rn101@paathshala.edu.np")
		assert.Contains(t, msg.TextContent, "shrestha.rn101")
	})

	t.Run("derived identity can log in", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login",
			[]byte(`{"email": "asim.rn101@paathshala.edu.np", "password": "shrestha.rn101"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("duplicate roll number conflicts", func(t *testing.T) {
		dup := []byte(`{
			"first_name": "Bina",
			"last_name":  "Thapa",
			"grade":      "10",
			"section":    "B",
			"roll_number": "RN101"
		}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", adminToken, dup)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "roll_number")
	})

	t.Run("unknown parent reference is a 404", func(t *testing.T) {
		orphan := []byte(`{
			"first_name": "Chij",
			"last_name":  "Rai",
			"grade":      "9",
			"section":    "A",
			"roll_number": "RN102",
			"parent_id":  "3b241101-e2bb-4255-8caf-4136c566a962"
		}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", adminToken, orphan)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "parent not found")
	})
}

func Test_studentApi_failedProfileWriteRollsBack(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Head", "Master", "head@paathshala.edu.np", "", user.RoleAdmin, true)
	db.FailProfileWrite = assert.AnError

	body := []byte(`{
		"first_name": "Asim",
		"last_name":  "Shrestha",
		"grade":      "10",
		"section":    "A",
		"roll_number": "RN101"
	}`)
	req, rec := newAuthRequest(http.MethodPost, "/v1/students", getToken(t, admin), body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	db.FailProfileWrite = nil

	// the identity write must have been rolled back: the same student can be
	// provisioned again without an email conflict
	req, rec = newAuthRequest(http.MethodPost, "/v1/students", getToken(t, admin), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func Test_studentApi_relatedDataAccess(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Head", "Master", "head@paathshala.edu.np", "", user.RoleAdmin, true)

	std1, err := studentSvc.Create(student.NewStudent{
		FirstName: "Asim", LastName: "Shrestha", Grade: "10", Section: "A", RollNumber: "RN101",
	})
	require.NoError(t, err)
	std2, err := studentSvc.Create(student.NewStudent{
		FirstName: "Bina", LastName: "Thapa", Grade: "10", Section: "B", RollNumber: "RN102",
	})
	require.NoError(t, err)

	usr1, err := usrSvc.GetByID(std1.UserID)
	require.NoError(t, err)
	usr2, err := usrSvc.GetByID(std2.UserID)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "own grades", path: "/v1/students/" + std1.ID + "/grades", token: getToken(t, usr1), wantCode: http.StatusOK},
		{name: "other student's grades", path: "/v1/students/" + std1.ID + "/grades", token: getToken(t, usr2), wantCode: http.StatusForbidden},
		{name: "admin reads any grades", path: "/v1/students/" + std1.ID + "/grades", token: getToken(t, admin), wantCode: http.StatusOK},
		{name: "own enrollments", path: "/v1/students/" + std2.ID + "/enrollments", token: getToken(t, usr2), wantCode: http.StatusOK},
		{name: "other student's enrollments", path: "/v1/students/" + std2.ID + "/enrollments", token: getToken(t, usr1), wantCode: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
