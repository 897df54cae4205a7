// File commands for the workbench CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/internal/views"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

var errNoFileAdded = errors.New("no file added")

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage the files of the current workspace",
}

func init() {
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesAddCmd)
	filesCmd.AddCommand(filesRemoveCmd)
	filesCmd.AddCommand(filesDeleteCmd)
	filesCmd.AddCommand(filesUpdateCmd)
}

// fileNode is the JSON form of the path tree.
type fileNode struct {
	ID       string     `json:"id"`
	State    string     `json:"state"`
	Refs     []string   `json:"refs,omitempty"`
	Children []fileNode `json:"children,omitempty"`
}

func fileTree(ws *workspace.Workspace) []fileNode {
	var out []fileNode
	for _, p := range ws.Paths() {
		pn := fileNode{ID: p.ID(), State: p.State().String()}
		for _, r := range p.Roots() {
			rn := fileNode{ID: r.ID(), State: r.State().String()}
			for _, ref := range ws.RefsOf(r.ID()) {
				rn.Refs = append(rn.Refs, ref.ID())
			}
			for _, f := range r.Files() {
				rn.Children = append(rn.Children, fileNode{ID: f.ID(), State: f.State().String()})
			}
			pn.Children = append(pn.Children, rn)
		}
		out = append(out, pn)
	}
	return out
}

func printTree(w io.Writer, nodes []fileNode, depth int) {
	for _, n := range nodes {
		line := fmt.Sprintf("%s%s [%s]", strings.Repeat("  ", depth), n.ID, n.State)
		if len(n.Refs) > 0 {
			line += " -> " + strings.Join(n.Refs, ", ")
		}
		fmt.Fprintln(w, line)
		printTree(w, n.Children, depth+1)
	}
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the path tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(a *app) error {
			tree := fileTree(a.session.Workspace())
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), tree)
			}
			printTree(cmd.OutOrStdout(), tree, 0)
			return nil
		})
	},
}

var filesAddCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Add files or the files of folders",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			added := views.NewFiles(a.session).Add(args...)
			for _, id := range added {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			if len(added) == 0 {
				return errNoFileAdded
			}
			return nil
		})
	},
}

var filesRemoveCmd = &cobra.Command{
	Use:   "remove <target>...",
	Short: "Remove files, roots or folders from the workspace, keeping them on disk",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			v := views.NewFiles(a.session)
			v.Check(args...)
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d files\n", v.RemoveChecked())
			return nil
		})
	},
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete <target>...",
	Short: "Move files to the trash folder and remove them from the workspace",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			v := views.NewFiles(a.session)
			v.Check(args...)
			moved, err := v.DeleteChecked()
			for _, m := range moved {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return err
		})
	},
}

var filesUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Probe the files on disk and mark the vanished ones missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%d objects changed\n", views.NewFiles(a.session).Update())
			return nil
		})
	},
}
