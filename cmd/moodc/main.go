// moodc is the Mood compiler front end: it builds .mood sources into .wasm
// binaries, runs them in an embedded wazero runtime, and checks the
// fixture corpus.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/moodlang/mood"
	"github.com/moodlang/mood/diag"
	"github.com/moodlang/mood/internal/fixture"
)

var log = logrus.New()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose, noColor bool

	root := &cobra.Command{
		Use:           "moodc",
		Short:         "Compile Mood programs to WebAssembly",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			if noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostics")

	root.AddCommand(newBuildCmd(), newRunCmd(), newFixCmd())
	return root
}

// compileFile reads and compiles one source file, printing the code frame
// on a diagnostic.
func compileFile(path string) ([]byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	log.Debugf("compiling %s (%d bytes)", path, len(source))

	bin, err := mood.Compile(string(source))
	if err != nil {
		var d *diag.Diagnostic
		if errors.As(err, &d) {
			fmt.Fprint(os.Stderr, d.Render(string(source), path))
			return nil, fmt.Errorf("compile failed: %s", d.Message)
		}
		return nil, err
	}
	log.Debugf("compiled %s: %d bytes of wasm", path, len(bin))
	return bin, nil
}

func newBuildCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build <file.mood>",
		Short: "Compile a source file to a .wasm binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := compileFile(args[0])
			if err != nil {
				return err
			}
			out := output
			if out == "" {
				out = strings.TrimSuffix(args[0], ".mood") + ".wasm"
			}
			if err := os.WriteFile(out, bin, 0o644); err != nil {
				return err
			}
			log.Infof("wrote %s", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: source with .wasm)")
	return cmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file.mood>",
		Short: `Compile a source file and call its exported "test" function`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := compileFile(args[0])
			if err != nil {
				return err
			}
			value, err := fixture.Execute(cmd.Context(), bin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newFixCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fix <dir>",
		Short: "Run the fixture corpus under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := fixture.Run(cmd.Context(), afero.NewOsFs(), args[0], write)
			if err != nil {
				return err
			}

			pass := color.New(color.FgGreen).SprintFunc()
			fail := color.New(color.FgRed).SprintFunc()
			failed := 0
			for _, r := range results {
				switch {
				case r.Written:
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", pass("wrote"), r.Name)
				case r.Passed:
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", pass("pass"), r.Name)
				default:
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", fail("FAIL"), r.Name)
					fmt.Fprintf(cmd.OutOrStdout(), "  expected: %s\n  actual:   %s\n",
						indent(r.Expected), indent(r.Outcome))
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d fixtures failed", failed, len(results))
			}
			log.Infof("%d fixtures passed", len(results))
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "rewrite .expected files with fresh outcomes")
	return cmd
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}
