package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pkgdep/internal/regtext"
)

var importEncoding string

func init() {
	cmd := newImportCmd()
	cmd.Flags().StringVar(&importEncoding, "encoding", "", "Encoding of files without a byte order mark (UTF-8, UTF-16LE, WINDOWS-1252)")
	rootCmd.AddCommand(cmd)
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <reg-file>",
		Short: "Apply a .reg file to the ledger store",
		Long: `Apply a Windows .reg file (Registry Editor format) to the configured store.

Key paths must start with HKEY_LOCAL_MACHINE or HKEY_CURRENT_USER (or HKLM,
HKCU, HKCR). Key and value deletions are supported; deleting something that
does not exist is not an error.

Example:
  chkdeps import ledger.reg --store yaml --store-path ledger.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args)
		},
	}
}

func runImport(args []string) error {
	regPath := args[0]

	f, err := os.Open(regPath)
	if err != nil {
		return fmt.Errorf("failed to open .reg file: %w", err)
	}
	defer f.Close()

	printVerbose("Importing %s\n", regPath)
	st, err := regtext.Import(f, sess.store.backend, regtext.ParseOptions{InputEncoding: importEncoding})
	if st != (regtext.Stats{}) {
		markDirty()
	}
	if err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}

	if jsonOut {
		return printJSON(st)
	}
	printInfo("Imported %s: %d keys created, %d keys deleted, %d values set, %d values deleted\n",
		regPath, st.KeysCreated, st.KeysDeleted, st.ValuesSet, st.ValuesDeleted)
	return nil
}
