package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pkgdep/pkg/deps"
)

func init() {
	rootCmd.AddCommand(newShowCmd())
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <key>",
		Short: "Show a provider's registration and dependents",
		Long: `The show command prints everything the ledger records for one provider:
its identifier, display name, version, attributes and registered dependents.

Example:
  chkdeps show Foo
  chkdeps show Foo --scope user --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args)
		},
	}
}

type showReport struct {
	deps.Provider
	Scope      string          `json:"scope"`
	Dependents []deps.Provider `json:"dependents"`
}

func runShow(args []string) error {
	key := args[0]

	p, err := sess.checker.GetProvider(key, scope)
	if err != nil {
		return fmt.Errorf("failed to read provider: %w", err)
	}
	dependents, err := sess.checker.CheckDependents(key, scope, deps.DependentsOptions{})
	if err != nil {
		return fmt.Errorf("failed to list dependents: %w", err)
	}
	if dependents == nil {
		dependents = []deps.Provider{}
	}

	if jsonOut {
		return printJSON(showReport{Provider: p, Scope: scope.String(), Dependents: dependents})
	}

	printInfo("Key:         %s\n", p.Key)
	if p.Name != "" {
		printInfo("Name:        %s\n", p.Name)
	}
	if p.Version != nil {
		printInfo("Version:     %s\n", p.Version)
	}
	if p.ID != "" {
		printInfo("ID:          %s\n", p.ID)
	}
	printInfo("Attributes:  %s\n", p.Attributes)
	printInfo("Dependents:  %d\n", len(dependents))
	for _, d := range dependents {
		printInfo("  %s\n", d)
	}
	return nil
}
