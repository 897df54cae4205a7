// Reference commands for the workbench CLI.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/internal/views"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

var (
	attrType        string
	attrDescription string
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Manage the references of the current workspace",
}

func init() {
	refsSetCmd.Flags().StringVar(&attrType, "type", "str", "value type: str, int, float or bool")
	refsSetCmd.Flags().StringVar(&attrDescription, "description", "", "attribute description")

	refsCmd.AddCommand(refsListCmd)
	refsCmd.AddCommand(refsCreateCmd)
	refsCmd.AddCommand(refsSetCmd)
	refsCmd.AddCommand(refsUnsetCmd)
	refsCmd.AddCommand(refsRemoveCmd)
}

// refRow is the JSON form of a reference.
type refRow struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	State      string    `json:"state"`
	Roots      []string  `json:"roots,omitempty"`
	Attributes []attrRow `json:"attributes,omitempty"`
}

type attrRow struct {
	ID          string `json:"id"`
	Value       string `json:"value"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

func refRows(ws *workspace.Workspace) []refRow {
	var rows []refRow
	for _, r := range ws.Refs() {
		row := refRow{ID: r.ID(), Type: r.Type(), State: r.State().String(), Roots: ws.RootsOf(r.ID())}
		for _, a := range r.Attributes() {
			row.Attributes = append(row.Attributes, attrRow{
				ID: a.ID(), Value: a.Value(), Type: a.ValueType(), Description: a.Description(),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

var refsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the references with their attributes and linked roots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(a *app) error {
			rows := refRows(a.session.Workspace())
			out := cmd.OutOrStdout()
			if flagJSON {
				return printJSON(out, rows)
			}
			for _, r := range rows {
				fmt.Fprintf(out, "%s (%s) [%s]\n", r.ID, r.Type, r.State)
				for _, at := range r.Attributes {
					fmt.Fprintf(out, "  %s = %s (%s)\n", at.ID, at.Value, at.Type)
				}
				for _, root := range r.Roots {
					fmt.Fprintf(out, "  -> %s\n", root)
				}
			}
			return nil
		})
	},
}

var refsCreateCmd = &cobra.Command{
	Use:   "create <id> <type>",
	Short: "Create a reference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			_, err := views.NewReferences(a.session).CreateRef(args[0], args[1])
			return err
		})
	},
}

var refsSetCmd = &cobra.Command{
	Use:   "set <ref> <attribute> <value>",
	Short: "Create or overwrite an attribute",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			return views.NewReferences(a.session).EditAttribute(args[0], args[1], args[2], attrType, attrDescription)
		})
	},
}

var refsUnsetCmd = &cobra.Command{
	Use:   "unset <ref> <attribute>",
	Short: "Remove an attribute",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			return views.NewReferences(a.session).RemoveAttribute(args[0], args[1])
		})
	},
}

var refsRemoveCmd = &cobra.Command{
	Use:   "remove <ref>...",
	Short: "Remove references and their links",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			v := views.NewReferences(a.session)
			var errs []error
			for _, id := range args {
				if err := v.CheckRef(id, true); err != nil {
					errs = append(errs, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d references\n", v.RemoveCheckedRefs())
			return errors.Join(errs...)
		})
	},
}
