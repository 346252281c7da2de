package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/partygames/truthordare/internal/apiclient"
	"github.com/partygames/truthordare/internal/app"
	"github.com/partygames/truthordare/internal/config"
	"github.com/partygames/truthordare/internal/dispatch"
	"github.com/partygames/truthordare/internal/tools/ui"
)

type options struct {
	configPath string
	ci         bool
	timeout    time.Duration

	app     *app.App
	cleanup func()
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "tod",
		Short:         "Truth or Dare command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (YAML or .env); defaults to $TOD_CONFIG")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive plain output")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall command timeout")

	cmd.AddCommand(
		newLoginCommand(opts),
		newRegisterCommand(opts),
		newLogoutCommand(opts),
		newRefreshCommand(opts),
		newStatusCommand(opts),
		newCollectionsCommand(opts),
		newProfileCommand(opts),
		newUserCommand(opts),
		newPingCommand(opts),
		newHomeCommand(opts),
		newDevServerCommand(opts),
	)
	return cmd
}

// Execute runs the root command and renders the error for humans.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", apiclient.Message(err))
		return 1
	}
	return 0
}

func (o *options) loadConfig() (*config.Config, error) {
	return config.Load(o.configPath)
}

// application builds the App on first use so commands that fail flag
// validation never open device storage.
func (o *options) application(ctx context.Context) (*app.App, error) {
	if o.app != nil {
		return o.app, nil
	}
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logOut := io.Writer(os.Stderr)
	if !o.ci {
		logOut = io.Discard
	}
	a, cleanup, err := app.Initialize(ctx, cfg, logOut)
	if err != nil {
		return nil, err
	}
	o.app, o.cleanup = a, cleanup
	return a, nil
}

func (o *options) close(ctx context.Context) error {
	if o.app == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := o.app.Shutdown(shutdownCtx)
	o.cleanup()
	o.app = nil
	return err
}

// run executes fn behind the progress view, or directly with --ci. The App
// is released when fn returns.
func (o *options) run(cmd *cobra.Command, title string, fn func(ctx context.Context, a *app.App) ([]string, error)) (err error) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	a, err := o.application(base)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := o.close(base); cerr != nil && err == nil {
			err = cerr
		}
	}()
	// Results come back on the app loop, which owns command output.
	deliver := func([]string, error) {}
	if o.ci {
		out := cmd.OutOrStdout()
		deliver = func(lines []string, _ error) {
			for _, l := range lines {
				fmt.Fprintln(out, l)
			}
		}
	}
	task := func(ctx context.Context) ([]string, error) {
		ctx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		return dispatch.Call(a.Loop, ctx, func(ctx context.Context) ([]string, error) {
			return fn(ctx, a)
		}, deliver)
	}
	if o.ci {
		_, err = task(base)
		return err
	}
	_, err = ui.Run(base, title, task)
	return err
}

func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	v = strings.TrimSpace(v)
	return &v
}
