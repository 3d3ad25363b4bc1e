package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/remnant/pkg/bundle"
	"github.com/arthur-debert/remnant/pkg/discovery"
	"github.com/arthur-debert/remnant/pkg/output"
	"github.com/arthur-debert/remnant/pkg/types"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type findOptions struct {
	bundleID string
	name     string
	webApp   bool
}

func newFindCmd(global *globalOptions) *cobra.Command {
	opts := &findOptions{}

	cmd := &cobra.Command{
		Use:   "find <application>",
		Short: MsgFindShort,
		Long: `Find lists every file and directory that belongs to an application:
the bundle itself, its sandbox and group containers, and entries in the
configured search locations whose names match the application's bundle
identifier or name. Spotlight results and recorded orphan files are merged
in, nested paths are collapsed and each item is measured.

The application is read from its bundle. For an application that has
already been deleted, pass --bundle-id and --name instead.`,
		Example: `  # Leftovers of an installed application
  remnant find /Applications/Notes.app

  # Leftovers of an application that is already gone
  remnant find "/Applications/Old App.app" --bundle-id com.example.oldapp --name "Old App"

  # Machine readable output
  remnant find /Applications/Notes.app --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(global)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			app, err := e.resolveApp(ctx, args[0], opts)
			if err != nil {
				return err
			}

			deps, release, err := e.deps()
			if err != nil {
				return err
			}
			defer release()

			renderer, err := e.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			finder := discovery.NewFinder(app, deps)
			var result types.Result
			if renderer.Format() == output.FormatTerminal {
				result = findWithProgress(ctx, finder, app, cmd.ErrOrStderr())
			} else {
				result = finder.Find(ctx)
			}
			return renderer.Render(result)
		},
	}

	cmd.Flags().StringVar(&opts.bundleID, "bundle-id", "", "Bundle identifier, overrides the bundle's Info.plist")
	cmd.Flags().StringVar(&opts.name, "name", "", "Application name, overrides the bundle's Info.plist")
	cmd.Flags().BoolVar(&opts.webApp, "web-app", false, "Treat the application as a browser web-app wrapper")

	return cmd
}

// resolveApp reads the bundle at path, falling back to the flags when the
// bundle is gone or unreadable and enough was given to identify it
func (e *env) resolveApp(ctx context.Context, path string, opts *findOptions) (types.App, error) {
	abs, err := absPath(path)
	if err != nil {
		return types.App{}, err
	}

	app, err := bundle.NewReader(e.fs, e.decoder).Read(ctx, abs)
	if err != nil {
		if opts.bundleID == "" && opts.name == "" {
			return types.App{}, err
		}
		e.logger.Info().Err(err).Msg("Using application details from flags")
		app = types.App{
			Path:   abs,
			Name:   strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
			WebApp: bundle.InWrapper(abs),
		}
	}

	if opts.bundleID != "" {
		app.BundleID = opts.bundleID
	}
	if opts.name != "" {
		app.Name = opts.name
	}
	if opts.webApp {
		app.WebApp = true
	}
	return app, nil
}

// findWithProgress runs the search in the background and shows a spinner
// that follows the run's progress step
func findWithProgress(ctx context.Context, finder *discovery.Finder, app types.App, w io.Writer) types.Result {
	state := discovery.NewState()
	done := make(chan types.Result, 1)

	spinner, err := pterm.DefaultSpinner.
		WithWriter(w).
		WithRemoveWhenDone(true).
		Start(fmt.Sprintf(MsgSearching, app.Name))
	if err != nil {
		spinner = nil
	}

	finder.FindAsync(ctx, discovery.Interactive{
		State:      state,
		OnComplete: func(r types.Result) { done <- r },
	})

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	step := 0
	for {
		select {
		case result := <-done:
			if spinner != nil {
				spinner.Success(fmt.Sprintf(MsgFoundFormat, len(result.Items)))
			}
			return result
		case <-ticker.C:
			if s := state.Step(); s != step && spinner != nil {
				step = s
				if s == discovery.StepIndex {
					spinner.UpdateText(fmt.Sprintf(MsgQueryingIndex, app.Name))
				}
			}
		}
	}
}
