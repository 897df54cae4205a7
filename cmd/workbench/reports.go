// Report commands for the workbench CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/internal/report"
)

var reportsKeep bool

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse the annotation reports of the logs folder",
}

func init() {
	reportsRemoveCmd.Flags().BoolVar(&reportsKeep, "keep", false, "remove every report except the named ones")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsRemoveCmd)
	reportsCmd.AddCommand(reportsWatchCmd)
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(a *app) error {
			names := a.session.Reports().Names()
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		})
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print a report, the newest one by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(a *app) error {
			m := a.session.Reports()
			names := m.Names()
			if len(args) == 1 {
				if err := m.Select(args[0]); err != nil {
					return err
				}
			} else if len(names) > 0 {
				m.Select(names[0])
			}
			content, err := m.Content(m.Selected())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		})
	},
}

var reportsRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Delete reports from the logs folder",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(a *app) error {
			m := a.session.Reports()
			var errs []error
			for _, n := range args {
				if err := m.Check(n, true); err != nil {
					errs = append(errs, err)
				}
			}
			if len(errs) > 0 {
				return errors.Join(errs...)
			}
			var removed []string
			var err error
			if reportsKeep {
				removed, err = m.RemoveUnchecked()
			} else {
				removed, err = m.RemoveChecked()
			}
			for _, n := range removed {
				fmt.Fprintln(cmd.OutOrStdout(), "removed", n)
			}
			return sysErr(err)
		})
	},
}

var reportsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print reports as they appear in or vanish from the logs folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(a *app) error {
			w, err := report.NewWatcher(a.session.Reports())
			if err != nil {
				return sysErr(err)
			}
			if err := w.Start(); err != nil {
				w.Stop()
				return sysErr(err)
			}
			defer w.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchReports(ctx, cmd, w.Changes)
		})
	},
}

func watchReports(ctx context.Context, cmd *cobra.Command, changes <-chan report.Change) error {
	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			switch c.Kind {
			case report.ChangeAdded:
				fmt.Fprintln(out, "+", c.Name)
			case report.ChangeRemoved:
				fmt.Fprintln(out, "-", c.Name)
			}
		}
	}
}
