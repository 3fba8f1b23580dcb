package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pkgdep/pkg/deps"
	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/version"
)

var (
	depsMin          string
	depsMax          string
	depsMinInclusive bool
	depsMaxInclusive bool
)

func init() {
	cmd := newDepsCmd()
	cmd.Flags().StringVar(&depsMin, "min", "", "Minimum provider version")
	cmd.Flags().StringVar(&depsMax, "max", "", "Maximum provider version")
	cmd.Flags().BoolVar(&depsMinInclusive, "min-inclusive", false, "Accept a version equal to --min")
	cmd.Flags().BoolVar(&depsMaxInclusive, "max-inclusive", false, "Accept a version equal to --max")
	rootCmd.AddCommand(cmd)
}

func newDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <key>...",
		Short: "Check that providers are registered within a version range",
		Long: `The deps command checks each provider key against the ledger. A provider
violates the requirement when it is not registered, has no readable version,
or its version falls outside --min/--max. Bounds are exclusive unless
--min-inclusive or --max-inclusive is given.

Violating providers are printed one per line and the exit status is 1.

Example:
  chkdeps deps Foo Bar --min 1.0 --min-inclusive
  chkdeps deps Foo --max 2.0.0.0 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(args)
		},
	}
}

// depsRange builds the version range from the deps flags.
func depsRange() (deps.Range, error) {
	var r deps.Range
	if depsMin != "" {
		v, err := version.Parse(depsMin)
		if err != nil {
			return deps.Range{}, fmt.Errorf("--min: %w", err)
		}
		r.Min = &v
	}
	if depsMax != "" {
		v, err := version.Parse(depsMax)
		if err != nil {
			return deps.Range{}, fmt.Errorf("--max: %w", err)
		}
		r.Max = &v
	}
	if depsMinInclusive {
		r.Attributes = r.Attributes.With(types.AttrMinVersionInclusive)
	}
	if depsMaxInclusive {
		r.Attributes = r.Attributes.With(types.AttrMaxVersionInclusive)
	}
	return r, nil
}

type depsReport struct {
	Scope      string          `json:"scope"`
	Checked    int             `json:"checked"`
	Violations []deps.Provider `json:"violations"`
}

func runDeps(keys []string) error {
	r, err := depsRange()
	if err != nil {
		return err
	}

	violations := deps.NewSet()
	for _, key := range keys {
		err := sess.checker.CheckDependency(key, scope, r, violations)
		switch {
		case err == nil:
			printVerbose("%s: satisfied\n", key)
		case errors.Is(err, types.ErrNotFound):
			printVerbose("%v\n", err)
		default:
			return fmt.Errorf("failed to check %s: %w", key, err)
		}
	}
	if violations.Len() > 0 {
		exitCode = exitFound
	}

	if jsonOut {
		return printJSON(depsReport{
			Scope:      scope.String(),
			Checked:    len(keys),
			Violations: violations.Items(),
		})
	}
	for p := range violations.All() {
		printInfo("%s\n", p)
	}
	return nil
}
