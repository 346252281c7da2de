package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/partygames/truthordare/internal/app"
	"github.com/partygames/truthordare/internal/service"
)

func passwordFrom(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("TOD_PASSWORD"); env != "" {
		return env, nil
	}
	return "", errors.New("password is required (--password or TOD_PASSWORD)")
}

func newLoginCommand(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordFrom(password)
			if err != nil {
				return err
			}
			return opts.run(cmd, "login", func(ctx context.Context, a *app.App) ([]string, error) {
				if err := a.Auth.Login(ctx, email, pw); err != nil {
					return nil, err
				}
				return []string{"signed in as " + email}, nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCommand(opts *options) *cobra.Command {
	var in service.RegisterInput
	var password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordFrom(password)
			if err != nil {
				return err
			}
			in.Password = pw
			in.Phone = optionalString(cmd, "phone")
			return opts.run(cmd, "register", func(ctx context.Context, a *app.App) ([]string, error) {
				if err := a.Auth.Register(ctx, in); err != nil {
					return nil, err
				}
				return []string{fmt.Sprintf("welcome, %s %s", in.Name, in.Surname)}, nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "first name")
	cmd.Flags().StringVar(&in.Surname, "surname", "", "last name")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().String("phone", "", "phone number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session and cached profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, "logout", func(ctx context.Context, a *app.App) ([]string, error) {
				if err := a.Auth.Logout(ctx); err != nil {
					return nil, err
				}
				return []string{"signed out"}, nil
			})
		},
	}
}

func newRefreshCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, "refresh", func(ctx context.Context, a *app.App) ([]string, error) {
				if err := a.Auth.RefreshTokens(ctx); err != nil {
					return []string{"session cleared, sign in again"}, err
				}
				return []string{"session refreshed, expires " + formatExpiry(a)}, nil
			})
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the local session state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, "status", func(_ context.Context, a *app.App) ([]string, error) {
				lines := []string{
					"state: " + a.Auth.State().String(),
					"expires: " + formatExpiry(a),
				}
				if p, ok := a.Users.CachedProfile(); ok {
					lines = append(lines, "profile: "+p.User().FullName()+" <"+p.Email+">")
				}
				return lines, nil
			})
		},
	}
}

func formatExpiry(a *app.App) string {
	exp := a.Session.ExpiresAt()
	if exp == nil {
		return "unknown"
	}
	return exp.Local().Format("2006-01-02 15:04:05")
}
