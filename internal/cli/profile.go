package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partygames/truthordare/internal/app"
	"github.com/partygames/truthordare/internal/domain"
)

func newProfileCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "profile", Short: "Your profile"}
	cmd.AddCommand(newProfileShowCommand(opts), newProfileUpdateCommand(opts))
	return cmd
}

func profileLines(u domain.User) []string {
	lines := []string{
		fmt.Sprintf("%s <%s>", u.FullName(), u.Email),
	}
	if u.Phone != nil {
		lines = append(lines, "phone: "+*u.Phone)
	}
	if u.Description != nil {
		lines = append(lines, *u.Description)
	}
	if !u.CreatedAt.IsZero() {
		lines = append(lines, "member since "+u.CreatedAt.Format("02.01.2006"))
	}
	return lines
}

func newProfileShowCommand(opts *options) *cobra.Command {
	var cached bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show your profile, falling back to the cached copy offline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, "profile", func(ctx context.Context, a *app.App) ([]string, error) {
				if cached {
					p, ok := a.Users.CachedProfile()
					if !ok {
						return []string{"no cached profile"}, nil
					}
					return profileLines(p.User()), nil
				}
				u, err := a.Users.Profile(ctx)
				if err != nil {
					return nil, err
				}
				return profileLines(u), nil
			})
		},
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "read only the local copy")
	return cmd
}

func newProfileUpdateCommand(opts *options) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit profile fields",
		RunE: func(cmd *cobra.Command, _ []string) error {
			upd := domain.ProfileUpdate{
				Name:        optionalString(cmd, "name"),
				Surname:     optionalString(cmd, "surname"),
				Email:       optionalString(cmd, "email"),
				Phone:       optionalString(cmd, "phone"),
				AvatarURL:   optionalString(cmd, "avatar-url"),
				Description: optionalString(cmd, "description"),
			}
			if upd.IsEmpty() {
				return fmt.Errorf("nothing to update")
			}
			return opts.run(cmd, "update profile", func(ctx context.Context, a *app.App) ([]string, error) {
				if local {
					p, err := a.Users.UpdateLocalProfile(ctx, upd)
					if err != nil {
						return nil, err
					}
					return append([]string{"saved on this device only"}, profileLines(p.User())...), nil
				}
				if err := a.Users.UpdateProfile(ctx, upd); err != nil {
					return nil, err
				}
				return []string{"profile updated"}, nil
			})
		},
	}
	for _, f := range []string{"name", "surname", "email", "phone", "avatar-url", "description"} {
		cmd.Flags().String(f, "", "new "+f)
	}
	cmd.Flags().BoolVar(&local, "local", false, "edit the cached copy without contacting the server")
	return cmd
}

func newUserCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Other players"}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a player's public name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args, 0)
			if err != nil {
				return err
			}
			return opts.run(cmd, "user", func(ctx context.Context, a *app.App) ([]string, error) {
				u, err := a.Users.PublicUser(ctx, id)
				if err != nil {
					return nil, err
				}
				return []string{fmt.Sprintf("#%d %s", u.ID, u.FullName())}, nil
			})
		},
	})
	return cmd
}
