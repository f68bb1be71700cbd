package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/app"
	"github.com/tradercopilot/swingdash/internal/config"
	"github.com/tradercopilot/swingdash/internal/logger"
	"github.com/tradercopilot/swingdash/internal/profile"
)

// loadApp reads and validates the configuration and wires the application.
func loadApp(ctx context.Context) (*app.App, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	log, err := logger.Build(debug, level)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, log, nil
}

// withState runs fn against the CLI session. The profile is restored
// first unless restore is false.
func withState(cmd *cobra.Command, restore bool, fn func(ctx context.Context, a *app.App, st *app.State) error) error {
	ctx := cmd.Context()
	a, log, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	st, err := a.CLIState(&printNavigator{out: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	if restore {
		if err := st.Restore(ctx, nil); err != nil {
			return err
		}
		if st.User() == nil {
			return errNotSignedIn
		}
	}
	return fn(ctx, a, st)
}

var errNotSignedIn = errors.New("not signed in, run `swingdash login` first")

// printNavigator reports the views a browser would have been sent to.
type printNavigator struct {
	out io.Writer
}

func (n *printNavigator) Push(path string)    { n.show(path) }
func (n *printNavigator) Replace(path string) { n.show(path) }

func (n *printNavigator) show(path string) {
	switch path {
	case profile.PathTrialExpired:
		fmt.Fprintln(n.out, "Your trial has expired. Run `swingdash billing checkout --plan TRADER` to upgrade.")
	case profile.PathLogin:
		fmt.Fprintln(n.out, "Session expired. Run `swingdash login` to sign in again.")
	}
}
