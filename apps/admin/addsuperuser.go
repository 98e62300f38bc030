package main

import (
	"context"

	"github.com/paathshala/backend/core"
	"github.com/paathshala/backend/core/user"
)

// addSuperUser updates or creates an active ADMIN user.
func (cli *commandLine) addSuperUser(email, first, last, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:     email,
			FirstName: core.CleanString(first),
			LastName:  core.CleanString(last),
		}
	}
	usr.Role = user.RoleAdmin
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
