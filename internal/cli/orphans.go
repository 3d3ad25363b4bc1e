package cli

import (
	"fmt"

	"github.com/arthur-debert/remnant/pkg/output"
	"github.com/arthur-debert/remnant/pkg/zombies"
	"github.com/spf13/cobra"
)

func newOrphansCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orphans",
		Short: MsgOrphansShort,
		Long: `Orphans manages the registry of files recorded for an application. Recorded
files are always reported by find for that application, even when their
names give no hint of where they came from.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <application> <file>...",
		Short: MsgOrphansAdd,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(global)
			if err != nil {
				return err
			}
			app, err := absPath(args[0])
			if err != nil {
				return err
			}
			files := make([]string, 0, len(args)-1)
			for _, f := range args[1:] {
				abs, err := absPath(f)
				if err != nil {
					return err
				}
				files = append(files, abs)
			}

			store, err := e.openRegistry()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Associate(app, files...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgRecordedFormat, len(files), app)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: MsgOrphansList,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(global)
			if err != nil {
				return err
			}
			store, err := e.readRegistry()
			if err != nil {
				return err
			}
			list := []output.Association{}
			if store != nil {
				defer func() { _ = store.Close() }()
				if list, err = associations(store); err != nil {
					return err
				}
			}

			renderer, err := e.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return renderer.RenderAssociations(list)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <application>",
		Short: MsgOrphansRemove,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(global)
			if err != nil {
				return err
			}
			app, err := absPath(args[0])
			if err != nil {
				return err
			}
			store, err := e.openRegistry()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Remove(app); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgRemovedFormat, app)
			return nil
		},
	})

	return cmd
}

func associations(store *zombies.Store) ([]output.Association, error) {
	apps, err := store.Apps()
	if err != nil {
		return nil, err
	}
	list := make([]output.Association, 0, len(apps))
	for _, app := range apps {
		files, err := store.AssociatedFiles(app)
		if err != nil {
			return nil, err
		}
		list = append(list, output.Association{App: app, Files: files})
	}
	return list, nil
}
