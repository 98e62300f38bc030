package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/paathshala/backend/apps/api/echo"
	"github.com/paathshala/backend/core/user"
	testutil "github.com/paathshala/backend/tests"
)

func Test_userApi_login(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "King", "Awe", "awe@paathshala.edu.np", "Str0ng-pwd!", user.RoleTeacher, true)
	naughty := testutil.CreateUser(t, usrRepo, "N", "Dog", "ndog@paathshala.edu.np", "Str0ng-pwd!", user.RoleStudent, false)

	tests := []httpTest{
		{
			name: "empty body", body: []byte("{}"), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown email", body: []byte(`{"email": "lol@paathshala.edu.np", "password": "lol"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "wrong password", body: []byte(fmt.Sprintf(`{"email": %q, "password": "lol"}`, usr.Email)),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: []byte(fmt.Sprintf(`{"email": %q, "password": "Str0ng-pwd!"}`, naughty.Email)),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "ok", body: []byte(fmt.Sprintf(`{"email": %q, "password": "Str0ng-pwd!"}`, usr.Email)),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil && tt.wantCode == http.StatusOK {
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Contains(t, rec.Body.String(), "token")
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_authentication(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "King", "Awe", "awe@paathshala.edu.np", "", user.RoleAdmin, true)
	ghost := testutil.CreateUser(t, usrRepo, "Gone", "Ghost", "ghost@paathshala.edu.np", "", user.RoleAdmin, true)
	sleeper := testutil.CreateUser(t, usrRepo, "Sleepy", "Head", "sleeper@paathshala.edu.np", "", user.RoleAdmin, true)

	ghostToken := getToken(t, ghost)
	sleeperToken := getToken(t, sleeper)

	// the account vanishes (or is deactivated) after the token was minted
	if err := usrRepo.DeleteUsersByID(context.Background(), []string{ghost.ID}); err != nil {
		t.Fatalf("DeleteUsersByID() failed, %v", err)
	}
	sleeper.SetActive(false)
	if _, err := usrRepo.UpdateUser(context.Background(), sleeper); err != nil {
		t.Fatalf("UpdateUser() failed, %v", err)
	}

	expiredClaims := echoapi.GetUserClaims(usr)
	expiredClaims.StandardClaims.ExpiresAt = time.Now().Add(-time.Hour).Unix()
	expiredToken, err := echoapi.GenerateToken(expiredClaims)
	if err != nil {
		t.Fatalf("GenerateToken() failed, %v", err)
	}

	badSigClaims := echoapi.GetUserClaims(usr)
	badSigToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, badSigClaims).SignedString([]byte("wrong-key"))
	if err != nil {
		t.Fatalf("SignedString() failed, %v", err)
	}

	tests := []httpTest{
		{
			name: "missing token", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "garbage token", token: "lol.lmao.rofl", wantCode: http.StatusUnauthorized,
		},
		{
			name: "wrong signing key", token: badSigToken, wantCode: http.StatusUnauthorized,
		},
		{
			name: "expired token", token: expiredToken, wantCode: http.StatusUnauthorized,
		},
		{
			name: "valid token but deleted account", token: ghostToken, wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "account no longer exists"}),
		},
		{
			name: "valid token but deactivated account", token: sleeperToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "valid token", token: getToken(t, usr), wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", tt.token)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

// Roles are a flat set: no role implies another, an admin passes a gate only
// when ADMIN is listed on it.
func Test_userApi_roleGate(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Head", "Master", "head@paathshala.edu.np", "", user.RoleAdmin, true)
	tchr := testutil.CreateUser(t, usrRepo, "Miss", "Moneypenny", "mp@paathshala.edu.np", "", user.RoleTeacher, true)
	std := testutil.CreateUser(t, usrRepo, "Hero", "Kid", "hero@paathshala.edu.np", "", user.RoleStudent, true)
	par := testutil.CreateUser(t, usrRepo, "Pa", "Rent", "pa@paathshala.edu.np", "", user.RoleParent, true)

	forbidden := marchallObj(t, errForbidden)

	tests := []httpTest{
		// /v1/users is ADMIN-only
		{name: "users: student forbidden", path: "/v1/users", token: getToken(t, std), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "users: teacher forbidden", path: "/v1/users", token: getToken(t, tchr), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "users: parent forbidden", path: "/v1/users", token: getToken(t, par), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "users: admin ok", path: "/v1/users", token: getToken(t, admin), wantCode: http.StatusOK},
		// /v1/students admits ADMIN and TEACHER, each named explicitly
		{name: "students: student forbidden", path: "/v1/students", token: getToken(t, std), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "students: parent forbidden", path: "/v1/students", token: getToken(t, par), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "students: teacher ok", path: "/v1/students", token: getToken(t, tchr), wantCode: http.StatusOK},
		{name: "students: admin ok", path: "/v1/students", token: getToken(t, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_selfUpdateRestrictions(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Head", "Master", "head@paathshala.edu.np", "", user.RoleAdmin, true)
	tchr := testutil.CreateUser(t, usrRepo, "Miss", "Moneypenny", "mp@paathshala.edu.np", "", user.RoleTeacher, true)

	t.Run("non-admin cannot change own role", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+tchr.ID, getToken(t, tchr), []byte(`{"role": "ADMIN"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("non-admin can change own name", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+tchr.ID, getToken(t, tchr), []byte(`{"first_name": "Jane"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Jane")
	})
	t.Run("non-admin cannot read another user", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+admin.ID, getToken(t, tchr))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
	t.Run("admin cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

// a partial update must merge into the stored row: fields the payload omits
// (password hash, active flag) keep their values.
func Test_userApi_updatePreservesCredentials(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Miss", "Moneypenny", "mp@paathshala.edu.np", "Str0ng-pwd!", user.RoleTeacher, true)
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID, token, []byte(`{"first_name": "Jane"}`))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane")

	t.Run("session stays alive", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Jane")
	})
	t.Run("original password still logs in", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login",
			[]byte(fmt.Sprintf(`{"email": %q, "password": "Str0ng-pwd!"}`, usr.Email)))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "token")
	})
	t.Run("stored identity is intact", func(t *testing.T) {
		updated, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
		assert.NoError(t, err)
		assert.True(t, updated.Active())
		assert.NoError(t, updated.CheckPassword("Str0ng-pwd!"))
		assert.Equal(t, usr.Email, updated.Email)
	})
}

func Test_userApi_tokenRefresh(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "King", "Awe", "awe@paathshala.edu.np", "", user.RoleAdmin, true)

	t.Run("fresh token refreshes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, usr))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "token")
	})
	t.Run("stale origin is rejected", func(t *testing.T) {
		staleIat := time.Now().Add(-5 * time.Hour).Unix() // beyond JWTRefreshExpirationDelta
		claims := echoapi.GetUserClaims(usr, staleIat)
		token, err := echoapi.GenerateToken(claims)
		if err != nil {
			t.Fatalf("GenerateToken() failed, %v", err)
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
