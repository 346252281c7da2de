package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partygames/truthordare/internal/app"
)

func newPingCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the API is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, "ping", func(ctx context.Context, a *app.App) ([]string, error) {
				if err := a.Connectivity.Ping(ctx); err != nil {
					return nil, err
				}
				return []string{"api reachable at " + a.Config.APIBaseURL}, nil
			})
		},
	}
}

func newHomeCommand(opts *options) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Trending collections plus your own",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, "home", func(ctx context.Context, a *app.App) ([]string, error) {
				if refresh {
					if err := a.Auth.EnsureFreshToken(ctx); err != nil {
						return nil, err
					}
				}
				home, err := a.Feed.Home(ctx)
				if err != nil {
					return nil, err
				}
				var lines []string
				if home.Profile != nil {
					lines = append(lines, "hi, "+home.Profile.Name)
				}
				lines = append(lines, "trending:")
				lines = append(lines, collectionLines(home.Trending)...)
				if home.Mine != nil {
					lines = append(lines, fmt.Sprintf("yours (%d):", len(home.Mine)))
					lines = append(lines, collectionLines(home.Mine)...)
				}
				return lines, nil
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", true, "refresh an expired session first")
	return cmd
}
