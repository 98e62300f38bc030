package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckOwnership(t *testing.T) {
	owner := User{ID: "owner-id", Role: RoleTeacher}
	admin := User{ID: "admin-id", Role: RoleAdmin}
	other := User{ID: "other-id", Role: RoleTeacher}

	tests := []struct {
		name      string
		actor     User
		overrides []Role
		wantErr   error
	}{
		{name: "owner passes", actor: owner},
		{name: "other user denied", actor: other, wantErr: ErrPermissionDenied},
		{name: "admin denied without override", actor: admin, wantErr: ErrPermissionDenied},
		{name: "admin passes with override", actor: admin, overrides: []Role{RoleAdmin}},
		{name: "other role not covered by override", actor: other, overrides: []Role{RoleAdmin}, wantErr: ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOwnership(owner.ID, tt.actor, tt.overrides...)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range AllRoles {
		assert.True(t, role.Valid(), role)
	}
	assert.False(t, Role("PRINCIPAL").Valid())
	assert.False(t, Role("").Valid())
}

func TestUserPassword(t *testing.T) {
	var usr User
	assert.NoError(t, usr.SetPassword("s3cr3t"))
	assert.NoError(t, usr.CheckPassword("s3cr3t"))
	assert.Error(t, usr.CheckPassword("wrong"))
}
