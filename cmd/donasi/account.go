package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"donasi/internal/validation"
)

func (e *env) login(c *cli.Context) error {
	password, err := e.valueOrAsk(c.String("password"), "Password")
	if err != nil {
		return err
	}

	user, err := e.session.SignIn(c.Context, c.String("email"), password)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Signed in as %s (%s). Balance: %s\n", user.Name, user.Email, rupiah(user.Balance))
	return nil
}

func (e *env) logout(c *cli.Context) error {
	e.session.Logout(c.Context)
	fmt.Fprintln(e.out, "Signed out.")
	return nil
}

func (e *env) whoami(*cli.Context) error {
	if _, err := e.session.RequireUser(); err != nil {
		return err
	}

	s := e.session.Snapshot()
	fmt.Fprintf(e.out, "%s <%s>\n", s.DisplayName, s.Email)
	fmt.Fprintf(e.out, "Balance: %s\n", rupiah(s.Balance))
	if s.AvatarRef != "" {
		fmt.Fprintf(e.out, "Avatar: %s\n", s.AvatarRef)
	}
	fmt.Fprintf(e.out, "Access token valid until %s\n", timestamp(s.ExpiresAt))
	return nil
}

func (e *env) register(c *cli.Context) error {
	password, err := e.valueOrAsk(c.String("password"), "Password")
	if err != nil {
		return err
	}
	confirm, err := e.valueOrAsk(c.String("confirm-password"), "Confirm password")
	if err != nil {
		return err
	}

	form := validation.RegisterForm{
		Name:            c.String("name"),
		Email:           c.String("email"),
		Password:        password,
		ConfirmPassword: confirm,
	}
	if path := c.Path("avatar"); path != "" {
		if form.Avatar, err = validation.LoadUpload(path); err != nil {
			return err
		}
	}

	user, err := e.account.Register(c.Context, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Account created for %s.\n", user.Email)

	if !c.Bool("login") {
		return nil
	}
	signedIn, err := e.session.SignIn(c.Context, form.Email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Signed in as %s.\n", signedIn.Name)
	return nil
}

func (e *env) editProfile(c *cli.Context) error {
	form := validation.ProfileForm{
		ClearAvatar:   c.Bool("clear-avatar"),
		CurrentPIN:    c.String("current-pin"),
		NewPIN:        c.String("new-pin"),
		ConfirmNewPIN: c.String("confirm-pin"),
	}
	if c.IsSet("name") {
		name := c.String("name")
		form.Name = &name
	}
	if path := c.Path("avatar"); path != "" {
		upload, err := validation.LoadUpload(path)
		if err != nil {
			return err
		}
		form.Avatar = upload
	}

	user, err := e.profile.Submit(c.Context, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Profile updated: %s <%s>\n", user.Name, user.Email)
	if form.NewPIN != "" {
		fmt.Fprintln(e.out, "PIN changed.")
	}
	return nil
}
