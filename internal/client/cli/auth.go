package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medimate/internal/common"
)

// getSimpleText and getPassword are swapped out in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// Register prompts for name, email and password and creates an account.
// The new session is active on success.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Register(ctx, name, email, string(password))
	if err != nil {
		return err
	}

	a.printf("Registered and logged in as %s <%s>\n", u.Name, u.Email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	a.printf("Logged in as %s\n", u.Name)
	return nil
}

func (a *App) Logout(context.Context) error {
	a.api.Logout()
	a.printf("Logged out\n")
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	u, err := a.api.Profile(ctx)
	if err != nil {
		return err
	}
	a.printf("ID:    %s\nName:  %s\nEmail: %s\n", u.ID, u.Name, u.Email)
	return nil
}
