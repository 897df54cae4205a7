// Workspace commands for the workbench CLI.
package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/internal/views"
	"github.com/mesh-intelligence/workbench/pkg/types"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

var wsFolder string

var wsCmd = &cobra.Command{
	Use:   "ws",
	Short: "Manage the workspaces list",
}

func init() {
	wsListCmd.Flags().StringVar(&wsFolder, "folder", "", "only workspaces holding files of this folder")

	wsCmd.AddCommand(wsListCmd)
	wsCmd.AddCommand(wsShowCmd)
	wsCmd.AddCommand(wsPinCmd)
	wsCmd.AddCommand(wsRenameCmd)
	wsCmd.AddCommand(wsUseCmd)
	wsCmd.AddCommand(wsImportCmd)
	wsCmd.AddCommand(wsExportCmd)
	wsCmd.AddCommand(wsRemoveCmd)
}

// wsRow is one line of "ws list".
type wsRow struct {
	Index      int       `json:"index"`
	Name       string    `json:"name"`
	Current    bool      `json:"current"`
	Paths      int       `json:"paths"`
	Files      int       `json:"files"`
	Refs       int       `json:"refs"`
	Links      int       `json:"links"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

var wsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the workspaces, Blank first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(a *app) error {
			keep := map[string]bool{}
			if wsFolder != "" {
				abs, err := filepath.Abs(wsFolder)
				if err != nil {
					return err
				}
				names, err := a.catalog.Registry().WithFolder(abs)
				if err != nil {
					return sysErr(err)
				}
				for _, n := range names {
					keep[n] = true
				}
			}

			bar := views.NewWorkspacesBar(a.session)
			var rows []wsRow
			for i, name := range bar.List() {
				if wsFolder != "" && !keep[name] {
					continue
				}
				row := wsRow{Index: i, Name: name, Current: i == bar.Index()}
				if i > 0 {
					e, err := a.catalog.Registry().Get(name)
					if err != nil {
						return sysErr(err)
					}
					row.Paths, row.Files, row.Refs, row.Links = e.Paths, e.Files, e.Refs, e.Links
					row.ModifiedAt = e.ModifiedAt
				}
				rows = append(rows, row)
			}

			out := cmd.OutOrStdout()
			if flagJSON {
				return printJSON(out, rows)
			}
			for _, r := range rows {
				mark := " "
				if r.Current {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %2d  %-20s  %d paths  %d files  %d refs  %d links\n",
					mark, r.Index, r.Name, r.Paths, r.Files, r.Refs, r.Links)
			}
			return nil
		})
	},
}

var wsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current workspace as a document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(a *app) error {
			return printJSON(cmd.OutOrStdout(), a.session.Workspace().Document())
		})
	},
}

var wsPinCmd = &cobra.Command{
	Use:   "pin <name>",
	Short: "Save the current workspace under a new name",
	Long: `Pin saves the current workspace (Blank unless --workspace is given)
as a new entry of the workspaces list.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(a *app) error {
			i, err := views.NewWorkspacesBar(a.session).Pin(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pinned %s at %d\n", args[0], i)
			return nil
		})
	},
}

var wsRenameCmd = &cobra.Command{
	Use:   "rename <new-name>",
	Short: "Rename the current workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			return views.NewWorkspacesBar(a.session).Rename(args[0])
		})
	},
}

var wsUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a workspace the default of later commands",
	Long: `Use records the workspace in config.yaml so that commands run
without --workspace operate on it. "Blank" clears the default.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if name == workspace.BlankID {
			name = ""
		}
		if name != "" {
			err := withApp(false, func(a *app) error { return a.use(name) })
			if err != nil {
				return err
			}
		}
		settings.Set(cfgKeyWorkspace, name)
		if err := settings.WriteConfigAs(filepath.Join(configDir, configFileExt)); err != nil {
			return sysErr(fmt.Errorf("write config: %w", err))
		}
		return nil
	},
}

var wsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Copy a workspace file into the workspaces list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(a *app) error {
			bar := views.NewWorkspacesBar(a.session)
			i, err := bar.Import(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s at %d\n", bar.List()[i], i)
			return nil
		})
	},
}

var wsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the current workspace to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			return views.NewWorkspacesBar(a.session).Export(args[0])
		})
	},
}

var wsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a workspace and its file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(a *app) error {
			bar := views.NewWorkspacesBar(a.session)
			for i, n := range bar.List() {
				if n == args[0] {
					return bar.Remove(i)
				}
			}
			return fmt.Errorf("%w: workspace %s", types.ErrNotFound, args[0])
		})
	},
}
