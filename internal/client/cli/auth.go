package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postplanner/internal/client/client"
	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/spf13/cobra"
)

// getPassword is swapped in tests.
var getPassword = GetPassword

func (a *App) registerCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.register(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (a *App) loginCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.login(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			if err := a.deps.Auth.SignOut(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("Signed out."))
			return nil
		},
	}
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			user, err := a.deps.Auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s\n", user.Email, mutedStyle.Render(user.UserID))
			return nil
		},
	}
}

// credentials prompts for whatever was not given on the command line.
func (a *App) credentials(email string) (string, []byte, error) {
	if email == "" {
		var err error
		email, err = GetSimpleText(a.in, "Enter email:", a.out)
		if err != nil {
			return "", nil, err
		}
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

func (a *App) register(ctx context.Context, email string) error {
	email, password, err := a.credentials(email)
	if err != nil {
		return err
	}
	// Register wipes the password it is given.
	login := append([]byte(nil), password...)
	defer common.WipeByteArray(login)

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.deps.Auth.Register(ctx, email, password); err != nil {
		if errors.Is(err, client.ErrAlreadyExists) {
			return fmt.Errorf("an account for %s already exists", email)
		}
		return err
	}
	fmt.Fprintln(a.out, successStyle.Render("Account created."))

	if err := a.deps.Auth.Login(ctx, email, login); err != nil {
		return err
	}
	fmt.Fprintln(a.out, successStyle.Render("Signed in as "+email))
	return nil
}

func (a *App) login(ctx context.Context, email string) error {
	email, password, err := a.credentials(email)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.deps.Auth.Login(ctx, email, password); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errors.New("invalid email or password")
		}
		return err
	}
	fmt.Fprintln(a.out, successStyle.Render("Signed in as "+email))
	return nil
}
