// Filter and association commands for the workbench CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/internal/filter"
	"github.com/mesh-intelligence/workbench/internal/views"
)

var (
	filterScope string
	filterMode  string

	linkFiles    []string
	linkRefs     []string
	linkFileMode string
	linkRefMode  string
)

func init() {
	filterCmd.Flags().StringVar(&filterScope, "scope", "files", "candidates: files or refs")
	filterCmd.Flags().StringVar(&filterMode, "mode", "all", "combine triples with all (intersection) or any (union)")

	for _, c := range []*cobra.Command{linkCmd, unlinkCmd} {
		c.Flags().StringArrayVar(&linkFiles, "file", nil, "file filter triple field:predicate:pattern (repeatable; none selects every file)")
		c.Flags().StringArrayVar(&linkRefs, "ref", nil, "reference filter triple (repeatable; none selects every reference)")
		c.Flags().StringVar(&linkFileMode, "file-mode", "all", "combination mode of the file triples")
		c.Flags().StringVar(&linkRefMode, "ref-mode", "all", "combination mode of the reference triples")
	}
}

func parseTriples(args []string) ([]filter.Triple, error) {
	triples := make([]filter.Triple, 0, len(args))
	for _, a := range args {
		t, err := filter.ParseTriple(a)
		if err != nil {
			return nil, err
		}
		triples = append(triples, t)
	}
	return triples, nil
}

// selectScope checks the candidates of scope matched by the raw triples,
// or all of them when there is none.
func selectScope(cmd *cobra.Command, bar *views.AssociationBar, scope views.Scope, raw []string, mode string) ([]string, error) {
	if len(raw) == 0 {
		bar.CheckAll(scope)
		return nil, nil
	}
	triples, err := parseTriples(raw)
	if err != nil {
		return nil, err
	}
	m, err := filter.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	res, err := bar.CheckByFilter(scope, triples, m)
	if err != nil {
		return nil, err
	}
	for _, s := range res.Skipped {
		fmt.Fprintln(cmd.ErrOrStderr(), "skipped:", s)
	}
	return res.IDs, nil
}

var filterCmd = &cobra.Command{
	Use:   "filter <field:predicate:pattern>...",
	Short: "Print the files or references selected by filter triples",
	Long: `Filter evaluates triples against the current workspace.

Fields: path, name, extension, reference, attribute.
Text predicates: exact, contains, startswith, endswith, regexp, with a
"not_" prefix for negation and an "i" prefix to ignore case.
Numeric predicates on attributes: equal, gt, ge, lt, le.
Attribute patterns take the form "id:value"; commas separate alternatives.

Example:
  workbench filter name:contains:speaker extension:exact:.wav
  workbench filter --scope refs attribute:gt:year:2000`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := views.ParseScope(filterScope)
		if err != nil {
			return err
		}
		return withApp(false, func(a *app) error {
			ids, err := selectScope(cmd, views.NewAssociationBar(a.session), scope, args, filterMode)
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), ids)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link the selected file roots to the selected references",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return associate(cmd, (*views.AssociationBar).Link, "linked")
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Remove the links between the selected file roots and references",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return associate(cmd, (*views.AssociationBar).Unlink, "unlinked")
	},
}

func associate(cmd *cobra.Command, op func(*views.AssociationBar) int, verb string) error {
	return withApp(true, func(a *app) error {
		bar := views.NewAssociationBar(a.session)
		if _, err := selectScope(cmd, bar, views.ScopeFiles, linkFiles, linkFileMode); err != nil {
			return err
		}
		if _, err := selectScope(cmd, bar, views.ScopeRefs, linkRefs, linkRefMode); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d pairs\n", verb, op(bar))
		return nil
	})
}
