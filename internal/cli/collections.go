package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/partygames/truthordare/internal/app"
	"github.com/partygames/truthordare/internal/domain"
	"github.com/partygames/truthordare/internal/service"
)

func newCollectionsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "collections", Aliases: []string{"c"}, Short: "Browse and edit question collections"}
	cmd.AddCommand(
		newTrendingCommand(opts),
		newListCommand(opts),
		newGetCommand(opts),
		newActionsCommand(opts),
		newMineCommand(opts),
		newCreateCommand(opts),
		newUpdateCommand(opts),
		newDeleteCommand(opts),
		newAddActionCommand(opts),
		newRemoveActionCommand(opts),
	)
	return cmd
}

func collectionLine(c domain.Collection) string {
	return fmt.Sprintf("#%d %s  (%s, %s)", c.ID, c.Name, c.PlayCountText(), c.CreatedAtText())
}

func collectionLines(items []domain.Collection) []string {
	if len(items) == 0 {
		return []string{"no collections"}
	}
	lines := make([]string, 0, len(items))
	for _, c := range items {
		lines = append(lines, collectionLine(c))
	}
	return lines
}

func actionLine(a domain.Action) string {
	return fmt.Sprintf("%d. [%s] %s (id %d)", a.Order, a.Type, a.Text, a.ID)
}

func idArg(args []string, i int) (int, error) {
	id, err := strconv.Atoi(args[i])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[i])
	}
	return id, nil
}

func newTrendingCommand(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Most played collections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, "trending collections", func(ctx context.Context, a *app.App) ([]string, error) {
				items, err := a.Collections.Trending(ctx, limit)
				if err != nil {
					return nil, err
				}
				return collectionLines(items), nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", service.DefaultTrendingLimit, "number of collections")
	return cmd
}

func newListCommand(opts *options) *cobra.Command {
	var p service.PageRequest
	cmd := &cobra.Command{
		Use:   "list",
		Short: "All collections, one page at a time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, "collections", func(ctx context.Context, a *app.App) ([]string, error) {
				page, err := a.Collections.List(ctx, p)
				if err != nil {
					return nil, err
				}
				lines := collectionLines(page.Items)
				lines = append(lines, fmt.Sprintf("page %d of %d (%d total)", page.Page, service.TotalPages(page.Total, page.Size), page.Total))
				return lines, nil
			})
		},
	}
	cmd.Flags().IntVar(&p.Page, "page", service.DefaultPage, "page number")
	cmd.Flags().IntVar(&p.PageSize, "size", service.DefaultPageSize, "page size")
	return cmd
}

func newGetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a collection with its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args, 0)
			if err != nil {
				return err
			}
			return opts.run(cmd, "collection", func(ctx context.Context, a *app.App) ([]string, error) {
				c, err := a.Collections.WithActions(ctx, id)
				if err != nil {
					return nil, err
				}
				author, _ := a.Users.PublicUser(ctx, c.UserID)
				lines := []string{
					collectionLine(c),
					c.Description,
					"by " + author.FullName(),
					c.CardsCountText() + ": " + c.BreakdownText(),
				}
				for _, act := range c.SortedActions() {
					lines = append(lines, actionLine(act))
				}
				return lines, nil
			})
		},
	}
}

func newActionsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "actions <id>",
		Short: "List the cards of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args, 0)
			if err != nil {
				return err
			}
			return opts.run(cmd, "cards", func(ctx context.Context, a *app.App) ([]string, error) {
				actions, err := a.Collections.Actions(ctx, id)
				if err != nil {
					return nil, err
				}
				lines := make([]string, 0, len(actions))
				for _, act := range (domain.Collection{Actions: actions}).SortedActions() {
					lines = append(lines, actionLine(act))
				}
				return lines, nil
			})
		},
	}
}

func newMineCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Collections you created",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, "my collections", func(ctx context.Context, a *app.App) ([]string, error) {
				items, err := a.Collections.Mine(ctx)
				if err != nil {
					return nil, err
				}
				return collectionLines(items), nil
			})
		},
	}
}

func collectionInputFlags(cmd *cobra.Command, in *domain.CollectionInput) {
	cmd.Flags().StringVar(&in.Name, "name", "", "collection name")
	cmd.Flags().StringVar(&in.Description, "description", "", "collection description")
	cmd.Flags().String("image-url", "", "cover image URL")
}

func newCreateCommand(opts *options) *cobra.Command {
	var in domain.CollectionInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.ImageURL = optionalString(cmd, "image-url")
			return opts.run(cmd, "create collection", func(ctx context.Context, a *app.App) ([]string, error) {
				return message(a.Collections.Create(ctx, in))
			})
		},
	}
	collectionInputFlags(cmd, &in)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUpdateCommand(opts *options) *cobra.Command {
	var in domain.CollectionInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or describe a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args, 0)
			if err != nil {
				return err
			}
			in.ImageURL = optionalString(cmd, "image-url")
			return opts.run(cmd, "update collection", func(ctx context.Context, a *app.App) ([]string, error) {
				return message(a.Collections.Update(ctx, id, in))
			})
		},
	}
	collectionInputFlags(cmd, &in)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a collection you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args, 0)
			if err != nil {
				return err
			}
			return opts.run(cmd, "delete collection", func(ctx context.Context, a *app.App) ([]string, error) {
				return message(a.Collections.Delete(ctx, id))
			})
		},
	}
}

func newAddActionCommand(opts *options) *cobra.Command {
	var in domain.ActionInput
	var kind string
	cmd := &cobra.Command{
		Use:   "add-action <collection-id>",
		Short: "Add a truth or dare card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args, 0)
			if err != nil {
				return err
			}
			in.Type = domain.ActionType(kind)
			if !in.Type.Valid() {
				return fmt.Errorf("--type must be truth or dare, got %q", kind)
			}
			return opts.run(cmd, "add card", func(ctx context.Context, a *app.App) ([]string, error) {
				return message(a.Collections.AddAction(ctx, id, in))
			})
		},
	}
	cmd.Flags().StringVar(&in.Text, "text", "", "card text")
	cmd.Flags().StringVar(&kind, "type", string(domain.ActionTruth), "truth or dare")
	cmd.Flags().IntVar(&in.Order, "order", 0, "position in the collection")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newRemoveActionCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-action <action-id>",
		Short: "Remove a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args, 0)
			if err != nil {
				return err
			}
			return opts.run(cmd, "remove card", func(ctx context.Context, a *app.App) ([]string, error) {
				return message(a.Collections.RemoveAction(ctx, id))
			})
		},
	}
}

func message(msg string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return []string{msg}, nil
}
