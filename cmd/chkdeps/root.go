package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pkgdep/pkg/deps"
	"github.com/joshuapare/pkgdep/pkg/types"
)

// Exit codes.
const (
	exitOK    = 0
	exitFound = 1 // dependents exist, or dependencies are violated
	exitError = 2
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	cfgFile string
	scope   types.Scope

	// Root command flags
	providerKey string
	ignoreKeys  []string
	exactIgnore bool

	exitCode = exitOK
)

var rootCmd = &cobra.Command{
	Use:   "chkdeps -k KEY [--scope machine|user] [--ignore KEY ...]",
	Short: "Check and maintain the installer dependency ledger",
	Long: `chkdeps reads the provider registrations kept under
Software\Classes\Installer\Dependencies and reports which other components
still depend on a provider.

With -k it lists the dependents of KEY, one per line, and exits with status 1
when any remain after --ignore is applied. Status 2 means the check itself
failed.

Examples:
  chkdeps -k Foo
  chkdeps -k Foo --scope user --ignore Bar --ignore Baz
  chkdeps deps Foo --min 1.0 --max 2.0 --min-inclusive`,
	Version:       appVersion,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		return openSession(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return commitSession()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if providerKey == "" {
			return fmt.Errorf("--key is required\nUsage: %s", cmd.UseLine())
		}
		return runDependents(providerKey)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ./.chkdeps.yaml or ~/.config/chkdeps/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	pf.BoolVar(&jsonOut, "json", false, "Output in JSON format")
	pf.Var(&scope, "scope", "Ledger scope: machine or user")
	pf.String("store", "", "Store backend: registry, yaml, sqlite or memory")
	pf.String("store-path", "", "Ledger file for the yaml and sqlite backends")
	pf.String("root-path", "", "Ledger root below the scope root")
	pf.String("metrics-textfile", "", "Write Prometheus metrics to this file on exit")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.Flags().StringVarP(&providerKey, "key", "k", "", "Provider key to check for dependents")
	rootCmd.Flags().StringArrayVar(&ignoreKeys, "ignore", nil, "Dependent key to ignore (repeatable)")
	rootCmd.Flags().BoolVar(&exactIgnore, "exact-ignore", false, "Match --ignore keys exactly instead of ignoring case")
}

// execute runs the command line and returns the process exit status.
func execute() int {
	exitCode = exitOK
	err := rootCmd.Execute()
	if cerr := closeSession(); err == nil {
		err = cerr
	}
	if err != nil {
		printError("%v\n", err)
		return exitError
	}
	return exitCode
}

// ignoreMatch resolves --exact-ignore against the ignore_case setting.
func ignoreMatch() deps.IgnoreMatch {
	if exactIgnore || (sess != nil && !sess.cfg.IgnoreCase) {
		return deps.IgnoreExact
	}
	return deps.IgnoreFold
}

type dependentsReport struct {
	Key        string          `json:"key"`
	Scope      string          `json:"scope"`
	Dependents []deps.Provider `json:"dependents"`
}

func runDependents(key string) error {
	printVerbose("Checking dependents of %s (%s)\n", key, scope)

	list, err := sess.checker.CheckDependents(key, scope, deps.DependentsOptions{
		Ignore: ignoreKeys,
		Match:  ignoreMatch(),
	})
	if err != nil {
		return fmt.Errorf("failed to check dependents: %w", err)
	}
	if len(list) > 0 {
		exitCode = exitFound
	}

	if jsonOut {
		if list == nil {
			list = []deps.Provider{}
		}
		return printJSON(dependentsReport{Key: key, Scope: scope.String(), Dependents: list})
	}
	for _, p := range list {
		printInfo("%s\n", p)
	}
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
