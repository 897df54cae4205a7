// Step, annotation and conversion commands for the workbench CLI.
package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/internal/param"
	"github.com/mesh-intelligence/workbench/internal/views"
	"github.com/mesh-intelligence/workbench/pkg/types"
)

var (
	runSteps   []string
	runLang    string
	runOptions []string
	runOutputs []string
	runProgram string
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the annotation steps of the steps folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(a *app) error {
			v := views.NewAnnotate(a.session)
			steps := v.Steps()
			out := cmd.OutOrStdout()
			if flagJSON {
				return printJSON(out, steps)
			}
			for i, s := range steps {
				mark := " "
				if s.Enabled {
					mark = "x"
				}
				fmt.Fprintf(out, "[%s] %d %-12s %s", mark, i, s.Key, s.Name)
				if s.NeedsLang() {
					lang := s.Lang
					if lang == "" {
						lang = "-"
					}
					fmt.Fprintf(out, "  lang=%s of %s", lang, strings.Join(s.Langs, ","))
				}
				fmt.Fprintln(out)
				for _, o := range s.Options {
					fmt.Fprintf(out, "      %s.%s = %s (%s)\n", s.Key, o.ID, o.Value, o.Type)
				}
			}
			if summary := v.LangSummary(); summary != "" {
				fmt.Fprintln(out, "languages:", summary)
			}
			outputs := v.Outputs()
			families := make([]string, 0, len(outputs))
			for f := range outputs {
				families = append(families, f)
			}
			sort.Strings(families)
			for _, f := range families {
				fmt.Fprintf(out, "output: %s=%s\n", f, outputs[f])
			}
			return nil
		})
	},
}

var annotateCmd = &cobra.Command{
	Use:   "annotate [target...]",
	Short: "Run an external annotation program on files of the current workspace",
	Long: `Annotate locks the target files (every file when none is given), runs
the program with the file names as arguments and records its output as a
report of the logs folder. The selected steps and languages, the step
options and the output extension of each format family are passed in the
WORKBENCH_STEPS, WORKBENCH_OPTIONS and WORKBENCH_OUTPUTS environment
variables.

Example:
  workbench annotate --cmd ./annotate.sh --step ipus --step align --lang fra --output transcription=.TextGrid`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			v := views.NewAnnotate(a.session)
			if err := configureSteps(v); err != nil {
				return err
			}
			selectTargets(a.session, args)

			report, err := v.Run(cmd.Context(), newCommandRunner(runProgram, a.cfg.LogsDir))
			if report != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "report:", report)
			}
			return err
		})
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <extension> [target...]",
	Short: "Convert files of the current workspace with an external program",
	Long: `Convert runs "program <input> <output>" for every target file (every
file when none is given), where output has the same stem and the given
extension, then adds the outputs to the workspace.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			selectTargets(a.session, args[1:])
			added, err := views.NewConvert(a.session).Run(cmd.Context(), newCommandConverter(runProgram), args[0])
			for _, f := range added {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return err
		})
	},
}

func init() {
	annotateCmd.Flags().StringArrayVar(&runSteps, "step", nil, "enable only these steps (repeatable; default: steps enabled by their descriptor)")
	annotateCmd.Flags().StringVar(&runLang, "lang", "", "language of every step that supports it ("+param.Mix+" keeps per-step languages)")
	annotateCmd.Flags().StringArrayVar(&runOptions, "set", nil, "step option step.option=value (repeatable)")
	annotateCmd.Flags().StringArrayVar(&runOutputs, "output", nil, "output extension family=ext (repeatable; default: the steps' defaults)")
	for _, c := range []*cobra.Command{annotateCmd, convertCmd} {
		c.Flags().StringVar(&runProgram, "cmd", "", "program to run")
		c.MarkFlagRequired("cmd")
	}
}

// selectTargets checks the targets, or every file when there is none.
func selectTargets(s *views.Session, targets []string) {
	if len(targets) == 0 {
		views.NewAssociationBar(s).CheckAll(views.ScopeFiles)
		return
	}
	views.NewFiles(s).Check(targets...)
}

// configureSteps applies the --step, --lang, --set and --output flags.
func configureSteps(v *views.Annotate) error {
	index := make(map[string]int)
	for i, s := range v.Steps() {
		index[s.Key] = i
	}
	lookup := func(key string) (int, error) {
		i, ok := index[key]
		if !ok {
			return 0, fmt.Errorf("%w: step %s", types.ErrNotFound, key)
		}
		return i, nil
	}

	if len(runSteps) > 0 {
		want := make(map[string]bool)
		for _, key := range runSteps {
			if _, err := lookup(key); err != nil {
				return err
			}
			want[key] = true
		}
		for key, i := range index {
			if err := v.Enable(i, want[key]); err != nil {
				return err
			}
		}
	}
	if runLang != "" {
		v.SetGlobalLang(runLang)
	}
	for _, kv := range runOptions {
		name, value, ok := strings.Cut(kv, "=")
		step, opt, dotted := strings.Cut(name, ".")
		if !ok || !dotted {
			return fmt.Errorf("%w: %q is not step.option=value", types.ErrInvalidOption, kv)
		}
		i, err := lookup(step)
		if err != nil {
			return err
		}
		if err := v.SetOption(i, opt, value); err != nil {
			return err
		}
	}
	for _, kv := range runOutputs {
		family, ext, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("%w: %q is not family=ext", types.ErrUnsupportedExtension, kv)
		}
		if err := v.SetOutputExtension(family, ext); err != nil {
			return err
		}
	}
	return nil
}
